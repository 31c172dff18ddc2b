package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// SeasonCosts sums the cost of activities per season ID.
func SeasonCosts(activities []*types.SeasonActivity) map[string]decimal.Decimal {
	costs := make(map[string]decimal.Decimal)
	for _, a := range activities {
		costs[a.SeasonID] = costs[a.SeasonID].Add(a.TotalCost)
	}
	return costs
}

// MonthFlow is the money in and out of one calendar month. Expense is a
// positive magnitude; Net is Income minus Expense.
type MonthFlow struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// Cashflow groups transactions by month (YYYY-MM), oldest month first.
// Transactions without a date are skipped.
func Cashflow(transactions []*types.LedgerTransaction) []MonthFlow {
	byMonth := make(map[string]*MonthFlow)
	for _, t := range transactions {
		if t.Date.IsZero() {
			continue
		}
		month := t.Date.Time().Format("2006-01")
		f, ok := byMonth[month]
		if !ok {
			f = &MonthFlow{Month: month, Income: decimal.Zero, Expense: decimal.Zero, Net: decimal.Zero}
			byMonth[month] = f
		}
		if t.Amount.IsNegative() {
			f.Expense = f.Expense.Sub(t.Amount)
		} else {
			f.Income = f.Income.Add(t.Amount)
		}
		f.Net = f.Net.Add(t.Amount)
	}

	flows := make([]MonthFlow, 0, len(byMonth))
	for _, f := range byMonth {
		flows = append(flows, *f)
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].Month < flows[j].Month })
	return flows
}
