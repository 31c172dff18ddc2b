package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

func TestTables_CommonErrors(t *testing.T) {
	b := newTestBackend(t)
	for _, name := range types.StandardTableNames {
		t.Run(name, func(t *testing.T) {
			tbl := table(t, b, name)

			_, err := tbl.Get("")
			assert.ErrorIs(t, err, types.ErrInvalidID)

			_, err = tbl.Get("no-such-id")
			assert.ErrorIs(t, err, types.ErrNotFound)

			_, err = tbl.Set("", "not an entity")
			assert.ErrorIs(t, err, types.ErrInvalidData)

			assert.ErrorIs(t, tbl.Delete(""), types.ErrInvalidID)

			rows, err := tbl.Fetch(nil)
			require.NoError(t, err)
			assert.NotNil(t, rows, "empty fetch is an empty slice")
			assert.Empty(t, rows)

			_, err = tbl.Fetch(types.Filter{"limit": "ten"})
			assert.ErrorIs(t, err, types.ErrInvalidFilter)
		})
	}
}

func TestEmployeesTable_CRUD(t *testing.T) {
	b := newTestBackend(t)
	emp := table(t, b, types.TableEmployees)

	e := &types.Employee{Name: "Ana", Role: "operator", Salary: dec("2500.00")}
	id, err := emp.Set("", e)
	require.NoError(t, err)
	assert.Equal(t, id, e.EmployeeID)
	assert.Equal(t, testNow, e.CreatedAt)

	_, err = emp.Set("", &types.Employee{Name: "Bruno", Role: "manager", Salary: dec("4000")})
	require.NoError(t, err)

	got, err := emp.Get(id)
	require.NoError(t, err)
	stored := got.(*types.Employee)
	assert.Equal(t, "Ana", stored.Name)
	assert.True(t, stored.Salary.Equal(dec("2500")))

	stored.Salary = dec("2700.50")
	_, err = emp.Set(id, stored)
	require.NoError(t, err)
	got, _ = emp.Get(id)
	assert.Equal(t, "2700.5", got.(*types.Employee).Salary.String())

	operators, err := emp.Fetch(types.Filter{"role": "operator"})
	require.NoError(t, err)
	require.Len(t, operators, 1)

	_, err = emp.Set("missing", &types.Employee{Name: "X", Role: "y", Salary: dec("1")})
	assert.ErrorIs(t, err, types.ErrNotFound, "update never inserts")

	_, err = emp.Set("", &types.Employee{Name: "Zero", Role: "y", Salary: dec("0")})
	assert.ErrorIs(t, err, types.ErrInvalidAmount)

	require.NoError(t, emp.Delete(id))
	assert.ErrorIs(t, emp.Delete(id), types.ErrNotFound)
}

func TestPlotsTable_UniqueNameAndInUse(t *testing.T) {
	b := newTestBackend(t)
	plots := table(t, b, types.TablePlots)

	id, err := plots.Set("", &types.Plot{Name: "  North  ", AreaHectares: 10})
	require.NoError(t, err)
	got, _ := plots.Get(id)
	assert.Equal(t, "North", got.(*types.Plot).Name, "name is trimmed")

	_, err = plots.Set("", &types.Plot{Name: "North", AreaHectares: 3})
	assert.ErrorIs(t, err, types.ErrDuplicateName)

	// Renaming to its own name is not a conflict.
	_, err = plots.Set(id, &types.Plot{Name: "North", AreaHectares: 12})
	require.NoError(t, err)

	_, err = plots.Set("", &types.Plot{Name: "South", AreaHectares: 0})
	assert.ErrorIs(t, err, types.ErrInvalidArea)

	_, err = table(t, b, types.TableSeasons).Set("", &types.Season{Crop: "corn", StartYear: 2024, PlotID: id})
	require.NoError(t, err)
	assert.ErrorIs(t, plots.Delete(id), types.ErrInUse)
}

func seedPlot(t *testing.T, b *Backend, name string, area float64) string {
	t.Helper()
	id, err := table(t, b, types.TablePlots).Set("", &types.Plot{Name: name, AreaHectares: area})
	require.NoError(t, err)
	return id
}

func seedSeason(t *testing.T, b *Backend, crop string, year int, plotID string) string {
	t.Helper()
	id, err := table(t, b, types.TableSeasons).Set("", &types.Season{Crop: crop, StartYear: year, PlotID: plotID})
	require.NoError(t, err)
	return id
}

func TestSeasonsTable_OrderFilterAndStatus(t *testing.T) {
	b := newTestBackend(t)
	seasons := table(t, b, types.TableSeasons)
	north := seedPlot(t, b, "North", 10)
	south := seedPlot(t, b, "South", 5)

	seedSeason(t, b, "soy", 2023, north)
	corn := seedSeason(t, b, "corn", 2024, south)
	seedSeason(t, b, "soy", 2024, north)

	all, err := seasons.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "corn", all[0].(*types.Season).Crop)
	assert.Equal(t, 2024, all[1].(*types.Season).StartYear)
	assert.Equal(t, 2023, all[2].(*types.Season).StartYear)

	byPlot, err := seasons.Fetch(types.Filter{"plot_id": north, "crop": "soy"})
	require.NoError(t, err)
	assert.Len(t, byPlot, 2)

	got, _ := seasons.Get(corn)
	s := got.(*types.Season)
	assert.Equal(t, types.SeasonActive, s.Status)

	// Status and yield are not editable through Set.
	s.Status = types.SeasonHarvested
	s.TotalYieldKg = 999
	s.Crop = "maize"
	_, err = seasons.Set(corn, s)
	require.NoError(t, err)
	got, _ = seasons.Get(corn)
	s = got.(*types.Season)
	assert.Equal(t, "maize", s.Crop)
	assert.Equal(t, types.SeasonActive, s.Status)
	assert.Zero(t, s.TotalYieldKg)

	active, err := seasons.Fetch(types.Filter{"status": types.SeasonActive})
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestSeasonsTable_CreateStartsActive(t *testing.T) {
	b := newTestBackend(t)
	seasons := table(t, b, types.TableSeasons)
	plot := seedPlot(t, b, "North", 10)

	tests := []struct {
		name   string
		season *types.Season
	}{
		{"harvested payload", &types.Season{
			Crop: "soy", StartYear: 2024, PlotID: plot,
			Status: types.SeasonHarvested, TotalYieldKg: 7200, HarvestedOn: day("2025-03-20"),
		}},
		{"active payload with yield", &types.Season{
			Crop: "corn", StartYear: 2024, PlotID: plot, TotalYieldKg: 9000,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := seasons.Set("", tt.season)
			require.NoError(t, err)
			assert.Equal(t, types.SeasonActive, tt.season.Status)

			got, err := seasons.Get(id)
			require.NoError(t, err)
			s := got.(*types.Season)
			assert.Equal(t, types.SeasonActive, s.Status)
			assert.Zero(t, s.TotalYieldKg)
			assert.True(t, s.HarvestedOn.IsZero())
		})
	}

	harvested, err := seasons.Fetch(types.Filter{"status": types.SeasonHarvested})
	require.NoError(t, err)
	assert.Empty(t, harvested)
}

func TestActivitiesTable_ConsumesStockOnCreate(t *testing.T) {
	b := newTestBackend(t)
	acts := table(t, b, types.TableSeasonActivities)
	season := seedSeason(t, b, "soy", 2024, seedPlot(t, b, "North", 10))

	item, err := b.AddStock("Glyphosate", dec("10"), "L")
	require.NoError(t, err)
	stockID := item.StockItemID

	a := &types.SeasonActivity{
		SeasonID: season, Description: "Spraying", Date: day("2024-11-02"),
		StockItemID: &stockID, QuantityUsed: dec("12.5"), TotalCost: dec("340"),
	}
	id, err := acts.Set("", a)
	require.NoError(t, err)

	got, err := table(t, b, types.TableStock).Get(stockID)
	require.NoError(t, err)
	assert.Equal(t, "-2.5", got.(*types.StockItem).Quantity.String(), "balance may go negative")

	// Updating and deleting the activity leaves stock alone.
	a.QuantityUsed = dec("1")
	_, err = acts.Set(id, a)
	require.NoError(t, err)
	require.NoError(t, acts.Delete(id))
	got, _ = table(t, b, types.TableStock).Get(stockID)
	assert.Equal(t, "-2.5", got.(*types.StockItem).Quantity.String())
}

func TestActivitiesTable_RollsBackOnMissingStock(t *testing.T) {
	b := newTestBackend(t)
	acts := table(t, b, types.TableSeasonActivities)
	season := seedSeason(t, b, "soy", 2024, seedPlot(t, b, "North", 10))

	missing := "no-such-item"
	_, err := acts.Set("", &types.SeasonActivity{
		SeasonID: season, Description: "Spraying", Date: day("2024-11-02"),
		StockItemID: &missing, QuantityUsed: dec("1"), TotalCost: dec("10"),
	})
	assert.ErrorIs(t, err, types.ErrNotFound)

	rows, err := acts.Fetch(types.Filter{"season_id": season})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestActivitiesTable_DateOrder(t *testing.T) {
	b := newTestBackend(t)
	acts := table(t, b, types.TableSeasonActivities)
	season := seedSeason(t, b, "soy", 2024, seedPlot(t, b, "North", 10))

	for _, d := range []string{"2024-12-01", "2024-10-01", "2024-11-01"} {
		_, err := acts.Set("", &types.SeasonActivity{
			SeasonID: season, Description: "Work " + d, Date: day(d), TotalCost: dec("5"),
		})
		require.NoError(t, err)
	}
	rows, err := acts.Fetch(types.Filter{"season_id": season})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-10-01", rows[0].(*types.SeasonActivity).Date.String())
	assert.Equal(t, "2024-12-01", rows[2].(*types.SeasonActivity).Date.String())
	assert.Nil(t, rows[0].(*types.SeasonActivity).StockItemID)
}

func TestStockTable_UniqueName(t *testing.T) {
	b := newTestBackend(t)
	stock := table(t, b, types.TableStock)

	id, err := stock.Set("", &types.StockItem{Name: "Urea", Quantity: dec("100"), Unit: "kg"})
	require.NoError(t, err)
	_, err = stock.Set("", &types.StockItem{Name: "Urea", Quantity: dec("1"), Unit: "kg"})
	assert.ErrorIs(t, err, types.ErrDuplicateName)

	_, err = stock.Set(id, &types.StockItem{Name: "Urea", Quantity: dec("80"), Unit: "kg"})
	require.NoError(t, err)
	got, _ := stock.Get(id)
	assert.Equal(t, "80", got.(*types.StockItem).Quantity.String())
}

func TestAccountsTable_StatusOrdering(t *testing.T) {
	b := newTestBackend(t)
	accounts := table(t, b, types.TableAccounts)

	ids := map[string]string{}
	for _, due := range []string{"2025-03-10", "2025-01-10", "2025-02-10", "2025-04-10"} {
		id, err := accounts.Set("", &types.Account{
			Description: "Due " + due, Amount: dec("100"), DueDate: day(due), Kind: types.AccountPayable,
		})
		require.NoError(t, err)
		ids[due] = id
	}
	_, err := b.SettleAccount(ids["2025-01-10"], day("2025-01-09"))
	require.NoError(t, err)
	_, err = b.SettleAccount(ids["2025-03-10"], day("2025-03-01"))
	require.NoError(t, err)

	pending, err := accounts.Fetch(types.Filter{"status": "pending"})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "2025-02-10", pending[0].(*types.Account).DueDate.String())
	assert.Equal(t, "2025-04-10", pending[1].(*types.Account).DueDate.String())

	paid, err := accounts.Fetch(types.Filter{"status": types.AccountPaid})
	require.NoError(t, err)
	require.Len(t, paid, 2)
	assert.Equal(t, "2025-03-10", paid[0].(*types.Account).DueDate.String())
	assert.Equal(t, "2025-01-10", paid[1].(*types.Account).DueDate.String())

	all, err := accounts.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2025-01-10", all[0].(*types.Account).DueDate.String())

	_, err = accounts.Fetch(types.Filter{"status": "overdue"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestAccountsTable_EditOnlyWhilePending(t *testing.T) {
	b := newTestBackend(t)
	accounts := table(t, b, types.TableAccounts)

	a := &types.Account{Description: "Diesel", Amount: dec("800"), DueDate: day("2025-05-01"), Kind: types.AccountPayable, Status: types.AccountPaid}
	id, err := accounts.Set("", a)
	require.NoError(t, err)
	assert.Equal(t, types.AccountPending, a.Status, "new accounts start pending")

	a.Amount = dec("850")
	_, err = accounts.Set(id, a)
	require.NoError(t, err)

	_, err = b.SettleAccount(id, day("2025-04-30"))
	require.NoError(t, err)

	a.Amount = dec("900")
	_, err = accounts.Set(id, a)
	assert.ErrorIs(t, err, types.ErrAccountSettled)

	got, _ := accounts.Get(id)
	stored := got.(*types.Account)
	assert.Equal(t, "850", stored.Amount.String())
	assert.Equal(t, types.AccountPaid, stored.Status)
	assert.Equal(t, "2025-04-30", stored.PaidOn.String())
}

func TestLedgerTable_AppendOnly(t *testing.T) {
	b := newTestBackend(t)
	ledger := table(t, b, types.TableLedger)

	expense := &types.LedgerTransaction{Description: "Fuel", Amount: dec("120"), Date: day("2025-02-03"), Kind: types.TransactionExpense}
	id, err := ledger.Set("", expense)
	require.NoError(t, err)
	assert.Equal(t, "-120", expense.Amount.String(), "positive expense is negated")
	assert.Equal(t, types.SourceManual, expense.Source)

	_, err = ledger.Set(id, expense)
	assert.ErrorIs(t, err, types.ErrAppendOnly)
	assert.ErrorIs(t, ledger.Delete(id), types.ErrAppendOnly)

	_, err = ledger.Set("", &types.LedgerTransaction{Description: "Bad", Amount: dec("-5"), Date: day("2025-02-03"), Kind: types.TransactionIncome})
	assert.ErrorIs(t, err, types.ErrInvalidAmount)

	_, err = ledger.Set("", &types.LedgerTransaction{Description: "Nothing", Amount: dec("0"), Date: day("2025-02-03")})
	assert.ErrorIs(t, err, types.ErrInvalidAmount)

	got, err := ledger.Get(id)
	require.NoError(t, err)
	assert.Equal(t, types.TransactionExpense, got.(*types.LedgerTransaction).Kind)
}

func TestLedgerTable_FetchFiltersAndOrder(t *testing.T) {
	b := newTestBackend(t)
	ledger := table(t, b, types.TableLedger)

	entries := []struct {
		desc   string
		amount string
		date   string
	}{
		{"January sale", "500", "2025-01-15"},
		{"February fuel", "-80", "2025-02-10"},
		{"February sale", "300", "2025-02-10"},
		{"March seed", "-200", "2025-03-05"},
	}
	for _, e := range entries {
		_, err := ledger.Set("", &types.LedgerTransaction{Description: e.desc, Amount: dec(e.amount), Date: day(e.date)})
		require.NoError(t, err)
	}

	all, err := ledger.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "March seed", all[0].(*types.LedgerTransaction).Description)
	assert.Equal(t, "February sale", all[1].(*types.LedgerTransaction).Description, "same day: latest insert first")
	assert.Equal(t, "January sale", all[3].(*types.LedgerTransaction).Description)

	feb, err := ledger.Fetch(types.Filter{"from": "2025-02-01", "to": day("2025-02-28")})
	require.NoError(t, err)
	assert.Len(t, feb, 2)

	expenses, err := ledger.Fetch(types.Filter{"kind": "expense"})
	require.NoError(t, err)
	assert.Len(t, expenses, 2)

	page, err := ledger.Fetch(types.Filter{"limit": 2, "offset": 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "February sale", page[0].(*types.LedgerTransaction).Description)

	_, err = ledger.Fetch(types.Filter{"from": "01/02/2025"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)

	_, err = ledger.Fetch(types.Filter{"from": "2025-03-01", "to": "2025-02-01"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)

	oneDay, err := ledger.Fetch(types.Filter{"from": "2025-02-10", "to": "2025-02-10"})
	require.NoError(t, err)
	assert.Len(t, oneDay, 2)
}
