package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is an inventory line. Quantity is a running balance: restocking
// adds to it and season activities draw from it, so it may go negative.
type StockItem struct {
	StockItemID string          `json:"stock_item_id"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate checks the name and unit.
func (s *StockItem) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(s.Unit) == "" {
		return fmt.Errorf("%w: unit", ErrMissingField)
	}
	return nil
}
