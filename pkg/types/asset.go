package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AssetStatus is the working condition of a fixed asset. Any status may
// follow any other.
type AssetStatus string

// Asset states.
const (
	AssetOperational   AssetStatus = "operational"
	AssetInMaintenance AssetStatus = "in_maintenance"
	AssetInactive      AssetStatus = "inactive"
)

// ParseAssetStatus converts a string to an AssetStatus.
func ParseAssetStatus(s string) (AssetStatus, error) {
	switch st := AssetStatus(s); st {
	case AssetOperational, AssetInMaintenance, AssetInactive:
		return st, nil
	}
	return "", fmt.Errorf("%w: asset status %q", ErrInvalidStatus, s)
}

// Asset is a piece of equipment or other fixed asset owned by the farm.
type Asset struct {
	AssetID          string          `json:"asset_id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	AcquiredOn       Date            `json:"acquired_on"`
	AcquisitionValue decimal.Decimal `json:"acquisition_value"`
	Status           AssetStatus     `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Validate checks required fields and the acquisition value. An empty status
// defaults to operational.
func (a *Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(a.Type) == "" {
		return fmt.Errorf("%w: type", ErrMissingField)
	}
	if a.AcquiredOn.IsZero() {
		return ErrInvalidDate
	}
	if !a.AcquisitionValue.IsPositive() {
		return fmt.Errorf("%w: acquisition_value must be positive", ErrInvalidAmount)
	}
	if a.Status == "" {
		a.Status = AssetOperational
	}
	_, err := ParseAssetStatus(string(a.Status))
	return err
}

// SetStatus moves the asset to any valid status, stamping UpdatedAt with at.
func (a *Asset) SetStatus(status AssetStatus, at time.Time) error {
	if _, err := ParseAssetStatus(string(status)); err != nil {
		return err
	}
	a.Status = status
	a.UpdatedAt = at
	return nil
}

// MaintenanceRecord is a dated repair or service charged to an asset.
type MaintenanceRecord struct {
	MaintenanceID string          `json:"maintenance_id"`
	AssetID       string          `json:"asset_id"`
	Date          Date            `json:"date"`
	Description   string          `json:"description"`
	Cost          decimal.Decimal `json:"cost"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Validate checks required fields and that the cost is positive.
func (m *MaintenanceRecord) Validate() error {
	if m.AssetID == "" {
		return fmt.Errorf("%w: asset_id", ErrMissingField)
	}
	if m.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(m.Description) == "" {
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	if !m.Cost.IsPositive() {
		return fmt.Errorf("%w: cost must be positive", ErrInvalidAmount)
	}
	return nil
}
