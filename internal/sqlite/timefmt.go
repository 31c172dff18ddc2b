package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// formatTime renders a created/updated timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads a timestamp written by formatTime.
func parseTime(s, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// formatDate renders a calendar date for storage. Unset dates become NULL.
func formatDate(d types.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

// parseDate reads a nullable date column.
func parseDate(s sql.NullString, column string) (types.Date, error) {
	if !s.Valid || s.String == "" {
		return types.Date{}, nil
	}
	d, err := types.ParseDate(s.String)
	if err != nil {
		return types.Date{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return d, nil
}
