package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// seedFarm fills every table with a small, consistent data set.
func seedFarm(t *testing.T, b *Backend) {
	t.Helper()
	_, err := table(t, b, types.TableEmployees).Set("", &types.Employee{Name: "Ana", Role: "operator", Salary: dec("2500")})
	require.NoError(t, err)

	season := seedSeason(t, b, "soy", 2024, seedPlot(t, b, "North", 10))
	item, err := b.AddStock("Urea", dec("100"), "kg")
	require.NoError(t, err)
	_, err = table(t, b, types.TableSeasonActivities).Set("", &types.SeasonActivity{
		SeasonID: season, Description: "Fertilizing", Date: day("2024-10-05"),
		StockItemID: &item.StockItemID, QuantityUsed: dec("40"), TotalCost: dec("900"),
	})
	require.NoError(t, err)
	_, err = b.HarvestSeason(season, 7200, day("2025-03-10"))
	require.NoError(t, err)

	asset := seedAsset(t, b, "Tractor", "250000")
	_, err = b.RegisterMaintenance(&types.MaintenanceRecord{
		AssetID: asset, Date: day("2025-02-15"), Description: "Oil change", Cost: dec("700"),
	})
	require.NoError(t, err)

	acct := seedAccount(t, b, "Seed supplier", "1500", types.AccountPayable)
	_, err = b.SettleAccount(acct, day("2025-03-20"))
	require.NoError(t, err)
	seedAccount(t, b, "Corn buyer", "8000", types.AccountReceivable)
}

func TestJSONL_RoundTrip(t *testing.T) {
	src := newTestBackend(t)
	seedFarm(t, src)

	dir := t.TempDir()
	exported, err := src.ExportJSONL(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"employees": 1, "plots": 1, "seasons": 1, "stock": 1, "season_activities": 1,
		"assets": 1, "maintenance_records": 1, "accounts": 2, "ledger": 3,
	}, exported)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}

	dst := newTestBackend(t)
	imported, err := dst.ImportJSONL(dir)
	require.NoError(t, err)
	assert.Equal(t, exported, imported)

	for _, name := range types.StandardTableNames {
		want, err := table(t, src, name).Fetch(nil)
		require.NoError(t, err)
		got, err := table(t, dst, name).Fetch(nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, "table %s", name)
	}
}

func TestImportJSONL_RequiresEmptyFarm(t *testing.T) {
	src := newTestBackend(t)
	seedFarm(t, src)
	dir := t.TempDir()
	_, err := src.ExportJSONL(dir)
	require.NoError(t, err)

	_, err = src.ImportJSONL(dir)
	assert.ErrorIs(t, err, types.ErrFarmNotEmpty)
}

func TestImportJSONL_SkipsBadLines(t *testing.T) {
	dir := t.TempDir()
	lines := strings.Join([]string{
		`{"plot_id":"p1","name":"North","area_hectares":10,"created_at":"2025-01-01T00:00:00Z"}`,
		`not json at all`,
		``,
		`[1, 2, 3]`,
		`{"plot_id":"p2","area_hectares":4,"created_at":"2025-01-01T00:00:00Z"}`,
		`{"plot_id":"p3","name":"South","area_hectares":4,"created_at":"2025-01-01T00:00:00Z","extra":"ignored"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plots.jsonl"), []byte(lines+"\n"), 0o644))

	b := newTestBackend(t)
	counts, err := b.ImportJSONL(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"plots": 2}, counts)

	rows, err := table(t, b, types.TablePlots).Fetch(nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "North", rows[0].(*types.Plot).Name)
	assert.Equal(t, "South", rows[1].(*types.Plot).Name)
}

func TestReadJSONL_MissingFile(t *testing.T) {
	records, err := readJSONL(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriteJSONL_ReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	require.NoError(t, writeJSONL(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
