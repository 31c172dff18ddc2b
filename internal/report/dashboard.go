package report

import (
	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// Snapshot is the set of entity lists the dashboard summarizes.
type Snapshot struct {
	Employees []*types.Employee
	Stock     []*types.StockItem
	Assets    []*types.Asset
	Seasons   []*types.Season
	Accounts  []*types.Account
	Ledger    []*types.LedgerTransaction
}

// Dashboard holds the farm-wide totals.
type Dashboard struct {
	Balance           decimal.Decimal `json:"balance"`
	Income            decimal.Decimal `json:"income"`
	Expense           decimal.Decimal `json:"expense"`
	Employees         int             `json:"employees"`
	StockItems        int             `json:"stock_items"`
	Assets            int             `json:"assets"`
	ActiveSeasons     int             `json:"active_seasons"`
	PendingPayable    decimal.Decimal `json:"pending_payable"`
	PendingReceivable decimal.Decimal `json:"pending_receivable"`
}

// NewDashboard computes the totals for s. Balance is the sum of every ledger
// amount; Expense is reported as a positive magnitude.
func NewDashboard(s Snapshot) Dashboard {
	d := Dashboard{
		Balance:           decimal.Zero,
		Income:            decimal.Zero,
		Expense:           decimal.Zero,
		Employees:         len(s.Employees),
		Assets:            len(s.Assets),
		PendingPayable:    decimal.Zero,
		PendingReceivable: decimal.Zero,
	}

	for _, t := range s.Ledger {
		d.Balance = d.Balance.Add(t.Amount)
		if t.Amount.IsNegative() {
			d.Expense = d.Expense.Sub(t.Amount)
		} else {
			d.Income = d.Income.Add(t.Amount)
		}
	}

	names := make(map[string]struct{}, len(s.Stock))
	for _, item := range s.Stock {
		names[item.Name] = struct{}{}
	}
	d.StockItems = len(names)

	for _, season := range s.Seasons {
		if season.Status == types.SeasonActive {
			d.ActiveSeasons++
		}
	}

	pending := PendingByKind(s.Accounts)
	d.PendingPayable = pending[types.AccountPayable]
	d.PendingReceivable = pending[types.AccountReceivable]
	return d
}

// PendingByKind sums the amounts of pending accounts per kind. Both kinds
// are always present in the result.
func PendingByKind(accounts []*types.Account) map[types.AccountKind]decimal.Decimal {
	sums := map[types.AccountKind]decimal.Decimal{
		types.AccountPayable:    decimal.Zero,
		types.AccountReceivable: decimal.Zero,
	}
	for _, a := range accounts {
		if a.Status != types.AccountPending {
			continue
		}
		sums[a.Kind] = sums[a.Kind].Add(a.Amount)
	}
	return sums
}
