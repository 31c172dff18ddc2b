package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SeasonStatus is the lifecycle state of a crop season.
type SeasonStatus string

// Season states. A season starts active and may be harvested once.
const (
	SeasonActive    SeasonStatus = "active"
	SeasonHarvested SeasonStatus = "harvested"
)

// ParseSeasonStatus converts a string to a SeasonStatus.
func ParseSeasonStatus(s string) (SeasonStatus, error) {
	switch st := SeasonStatus(s); st {
	case SeasonActive, SeasonHarvested:
		return st, nil
	}
	return "", fmt.Errorf("%w: season status %q", ErrInvalidStatus, s)
}

// SackKg is the weight of one bag of grain, the unit yields are reported in.
const SackKg = 60.0

// Season is one crop cycle on one plot.
type Season struct {
	SeasonID     string       `json:"season_id"`
	Crop         string       `json:"crop"`
	StartYear    int          `json:"start_year"`
	PlotID       string       `json:"plot_id"`
	Status       SeasonStatus `json:"status"`
	TotalYieldKg float64      `json:"total_yield_kg"`
	HarvestedOn  Date         `json:"harvested_on"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Validate checks required fields. An empty status defaults to active.
func (s *Season) Validate() error {
	if strings.TrimSpace(s.Crop) == "" {
		return fmt.Errorf("%w: crop", ErrMissingField)
	}
	if s.StartYear < 1900 || s.StartYear > 9999 {
		return fmt.Errorf("%w: start_year %d", ErrInvalidData, s.StartYear)
	}
	if s.PlotID == "" {
		return fmt.Errorf("%w: plot_id", ErrMissingField)
	}
	if s.Status == "" {
		s.Status = SeasonActive
	}
	if _, err := ParseSeasonStatus(string(s.Status)); err != nil {
		return err
	}
	if s.TotalYieldKg < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Harvest closes the season with its total yield. Only an active season can
// be harvested.
func (s *Season) Harvest(totalYieldKg float64, on Date) error {
	if s.Status != SeasonActive {
		return ErrInvalidTransition
	}
	if totalYieldKg < 0 {
		return ErrInvalidQuantity
	}
	if on.IsZero() {
		return ErrInvalidDate
	}
	s.Status = SeasonHarvested
	s.TotalYieldKg = totalYieldKg
	s.HarvestedOn = on
	return nil
}

// YieldSacks returns the total yield in sacks.
func (s *Season) YieldSacks() float64 {
	return s.TotalYieldKg / SackKg
}

// SeasonActivity is a dated piece of field work charged to a season. When
// StockItemID is set, QuantityUsed is drawn from that stock item.
type SeasonActivity struct {
	ActivityID   string          `json:"activity_id"`
	SeasonID     string          `json:"season_id"`
	Description  string          `json:"description"`
	Date         Date            `json:"date"`
	StockItemID  *string         `json:"stock_item_id,omitempty"`
	QuantityUsed decimal.Decimal `json:"quantity_used"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Validate checks required fields, non-negative cost, and that a stock
// reference comes with a positive quantity.
func (a *SeasonActivity) Validate() error {
	if a.SeasonID == "" {
		return fmt.Errorf("%w: season_id", ErrMissingField)
	}
	if strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	if a.Date.IsZero() {
		return ErrInvalidDate
	}
	if a.TotalCost.IsNegative() {
		return fmt.Errorf("%w: total_cost must not be negative", ErrInvalidAmount)
	}
	if a.QuantityUsed.IsNegative() {
		return ErrInvalidQuantity
	}
	if a.StockItemID != nil && *a.StockItemID != "" && !a.QuantityUsed.IsPositive() {
		return fmt.Errorf("%w: quantity_used must be positive when a stock item is referenced", ErrInvalidQuantity)
	}
	return nil
}

// ConsumesStock reports whether the activity draws from a stock item.
func (a *SeasonActivity) ConsumesStock() bool {
	return a.StockItemID != nil && *a.StockItemID != "" && a.QuantityUsed.IsPositive()
}
