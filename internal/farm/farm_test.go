package farm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/harvest/internal/sqlite"
	"github.com/mesh-intelligence/harvest/pkg/types"
)

func newFarm(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func mustSet(t *testing.T, f types.Farm, table string, v any) string {
	t.Helper()
	tbl, err := f.GetTable(table)
	require.NoError(t, err)
	id, err := tbl.Set("", v)
	require.NoError(t, err)
	return id
}

func day(s string) types.Date {
	d, err := types.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestList(t *testing.T) {
	b := newFarm(t)
	mustSet(t, b, types.TablePlots, &types.Plot{Name: "South", AreaHectares: 5})
	mustSet(t, b, types.TablePlots, &types.Plot{Name: "North", AreaHectares: 10})

	plots, err := List[types.Plot](b, types.TablePlots, nil)
	require.NoError(t, err)
	require.Len(t, plots, 2)
	assert.Equal(t, "North", plots[0].Name)

	_, err = List[types.Season](b, types.TablePlots, nil)
	assert.Error(t, err, "row type mismatch")

	_, err = List[types.Plot](b, "crops", nil)
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestLoadDashboardAndHistory(t *testing.T) {
	b := newFarm(t)
	plot := mustSet(t, b, types.TablePlots, &types.Plot{Name: "North", AreaHectares: 10})
	season := mustSet(t, b, types.TableSeasons, &types.Season{Crop: "soy", StartYear: 2024, PlotID: plot})
	mustSet(t, b, types.TableSeasons, &types.Season{Crop: "corn", StartYear: 2025, PlotID: plot})
	mustSet(t, b, types.TableSeasonActivities, &types.SeasonActivity{
		SeasonID: season, Description: "Sowing", Date: day("2024-10-01"), TotalCost: decimal.NewFromInt(900),
	})
	mustSet(t, b, types.TableAccounts, &types.Account{
		Description: "Seed", Amount: decimal.NewFromInt(400), DueDate: day("2025-04-01"), Kind: types.AccountPayable,
	})
	mustSet(t, b, types.TableLedger, &types.LedgerTransaction{
		Description: "Opening balance", Amount: decimal.NewFromInt(10000), Date: day("2025-01-01"),
	})
	_, err := b.HarvestSeason(season, 7200, day("2025-03-10"))
	require.NoError(t, err)

	d, err := LoadDashboard(b)
	require.NoError(t, err)
	assert.Equal(t, "10000", d.Balance.String())
	assert.Equal(t, 1, d.ActiveSeasons)
	assert.Equal(t, "400", d.PendingPayable.String())

	history, err := LoadSeasonHistory(b)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "North", history[0].PlotName)

	costs, err := LoadSeasonCosts(b)
	require.NoError(t, err)
	assert.Equal(t, "900", costs[season].String())

	wb, err := LoadWorkbook(b)
	require.NoError(t, err)
	assert.Len(t, wb.Ledger, 1)
	assert.Len(t, wb.Accounts, 1)
	require.Len(t, wb.Cashflow, 1)
	assert.Equal(t, "2025-01", wb.Cashflow[0].Month)
	require.Len(t, wb.Production, 1)
	assert.InDelta(t, 120.0, wb.Production[0].Sacks, 1e-9)
}

func TestLoadDashboard_BalanceMatchesLedger(t *testing.T) {
	b := newFarm(t)
	payable := mustSet(t, b, types.TableAccounts, &types.Account{
		Description: "Fertilizer", Amount: decimal.RequireFromString("1250.40"), DueDate: day("2025-02-01"), Kind: types.AccountPayable,
	})
	receivable := mustSet(t, b, types.TableAccounts, &types.Account{
		Description: "Soy contract", Amount: decimal.RequireFromString("8300.15"), DueDate: day("2025-02-15"), Kind: types.AccountReceivable,
	})
	_, err := b.SettleAccount(payable, day("2025-02-03"))
	require.NoError(t, err)
	_, err = b.SettleAccount(receivable, day("2025-02-16"))
	require.NoError(t, err)

	tractor, err := b.AcquireAsset(&types.Asset{
		Name: "Tractor", Type: "machinery", AcquiredOn: day("2025-01-10"), AcquisitionValue: decimal.NewFromInt(250000),
	})
	require.NoError(t, err)
	_, err = b.RegisterMaintenance(&types.MaintenanceRecord{
		AssetID: tractor, Date: day("2025-02-20"), Description: "Oil change", Cost: decimal.RequireFromString("700.33"),
	})
	require.NoError(t, err)
	_, err = b.SellAsset(tractor, decimal.NewFromInt(180000), day("2025-03-01"))
	require.NoError(t, err)

	fuel := mustSet(t, b, types.TableLedger, &types.LedgerTransaction{
		Description: "Fuel", Amount: decimal.RequireFromString("-99.99"), Date: day("2025-02-05"),
	})
	_, err = b.ReverseTransaction(fuel, day("2025-02-06"))
	require.NoError(t, err)

	rows, err := List[types.LedgerTransaction](b, types.TableLedger, nil)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	sum, income, expense := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Amount)
		if r.Amount.IsPositive() {
			income = income.Add(r.Amount)
		} else {
			expense = expense.Sub(r.Amount)
		}
	}

	first, err := LoadDashboard(b)
	require.NoError(t, err)
	assert.True(t, first.Balance.Equal(sum), "balance %s, ledger sum %s", first.Balance, sum)
	assert.True(t, first.Income.Equal(income), "income %s, want %s", first.Income, income)
	assert.True(t, first.Expense.Equal(expense), "expense %s, want %s", first.Expense, expense)
	assert.Equal(t, "-63650.58", first.Balance.StringFixed(2))
	assert.Zero(t, first.Assets)
	assert.True(t, first.PendingPayable.IsZero())
	assert.True(t, first.PendingReceivable.IsZero())

	second, err := LoadDashboard(b)
	require.NoError(t, err)
	assert.True(t, second.Balance.Equal(first.Balance))
	assert.True(t, second.Income.Equal(first.Income))
	assert.True(t, second.Expense.Equal(first.Expense))
	assert.Equal(t, first.Assets, second.Assets)
	assert.Equal(t, first.ActiveSeasons, second.ActiveSeasons)
	assert.True(t, second.PendingPayable.Equal(first.PendingPayable))
	assert.True(t, second.PendingReceivable.Equal(first.PendingReceivable))
}

func TestLoadDashboard_Detached(t *testing.T) {
	b := sqlite.NewBackend()
	_, err := LoadDashboard(b)
	assert.ErrorIs(t, err, types.ErrFarmDetached)
}
