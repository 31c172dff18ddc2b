package types

import (
	"strings"
	"time"
)

// Plot is a named parcel of land. Names are unique across the farm.
type Plot struct {
	PlotID       string    `json:"plot_id"`
	Name         string    `json:"name"`
	AreaHectares float64   `json:"area_hectares"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the name and that the area is positive.
func (p *Plot) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.AreaHectares <= 0 {
		return ErrInvalidArea
	}
	return nil
}
