package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

func TestFilterString(t *testing.T) {
	tests := []struct {
		name    string
		filter  types.Filter
		want    string
		ok      bool
		wantErr bool
	}{
		{"absent", types.Filter{}, "", false, false},
		{"empty", types.Filter{"k": ""}, "", false, false},
		{"plain string", types.Filter{"k": "soy"}, "soy", true, false},
		{"named string type", types.Filter{"k": types.AccountPaid}, "paid", true, false},
		{"wrong type", types.Filter{"k": 3}, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := filterString(tt.filter, "k")
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFilterDate(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		ok      bool
		wantErr bool
	}{
		{"string", "2025-02-01", "2025-02-01", true, false},
		{"date", day("2025-02-01"), "2025-02-01", true, false},
		{"empty string", "", "", false, false},
		{"zero date", types.Date{}, "", false, false},
		{"bad layout", "02/01/2025", "", false, true},
		{"wrong type", 20250201, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := filterDate(types.Filter{"from": tt.value}, "from")
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestLimitOffset(t *testing.T) {
	tests := []struct {
		name    string
		filter  types.Filter
		want    string
		wantErr bool
	}{
		{"none", nil, "", false},
		{"limit", types.Filter{"limit": 5}, " LIMIT 5", false},
		{"json number", types.Filter{"limit": float64(5)}, " LIMIT 5", false},
		{"offset only", types.Filter{"offset": 10}, " LIMIT -1 OFFSET 10", false},
		{"both", types.Filter{"limit": 5, "offset": 10}, " LIMIT 5 OFFSET 10", false},
		{"zero ignored", types.Filter{"limit": 0}, "", false},
		{"fractional", types.Filter{"limit": 2.5}, "", true},
		{"string", types.Filter{"offset": "3"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := limitOffset(tt.filter)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
