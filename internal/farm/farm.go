// Package farm composes table reads with the report package: it loads the
// entity lists a view needs through the Farm interface and hands them to
// the pure report functions.
package farm

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/harvest/internal/report"
	"github.com/mesh-intelligence/harvest/pkg/types"
)

// List fetches every row of table matching filter as typed pointers.
func List[T any](f types.Farm, table string, filter types.Filter) ([]*T, error) {
	t, err := f.GetTable(table)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", table, err)
	}
	rows, err := t.Fetch(filter)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		e, ok := row.(*T)
		if !ok {
			return nil, fmt.Errorf("listing %s: unexpected row type %T", table, row)
		}
		out = append(out, e)
	}
	return out, nil
}

// LoadSnapshot reads every list the dashboard summarizes.
func LoadSnapshot(f types.Farm) (report.Snapshot, error) {
	var s report.Snapshot
	var err error
	if s.Employees, err = List[types.Employee](f, types.TableEmployees, nil); err != nil {
		return s, err
	}
	if s.Stock, err = List[types.StockItem](f, types.TableStock, nil); err != nil {
		return s, err
	}
	if s.Assets, err = List[types.Asset](f, types.TableAssets, nil); err != nil {
		return s, err
	}
	if s.Seasons, err = List[types.Season](f, types.TableSeasons, nil); err != nil {
		return s, err
	}
	if s.Accounts, err = List[types.Account](f, types.TableAccounts, nil); err != nil {
		return s, err
	}
	if s.Ledger, err = List[types.LedgerTransaction](f, types.TableLedger, nil); err != nil {
		return s, err
	}
	return s, nil
}

// LoadDashboard computes the dashboard from the current rows.
func LoadDashboard(f types.Farm) (report.Dashboard, error) {
	s, err := LoadSnapshot(f)
	if err != nil {
		return report.Dashboard{}, err
	}
	return report.NewDashboard(s), nil
}

// LoadSeasonHistory joins every season with its plot.
func LoadSeasonHistory(f types.Farm) ([]report.HistoryRow, error) {
	seasons, err := List[types.Season](f, types.TableSeasons, nil)
	if err != nil {
		return nil, err
	}
	plots, err := List[types.Plot](f, types.TablePlots, nil)
	if err != nil {
		return nil, err
	}
	return report.SeasonHistory(seasons, plots), nil
}

// LoadSeasonCosts sums activity costs per season ID.
func LoadSeasonCosts(f types.Farm) (map[string]decimal.Decimal, error) {
	activities, err := List[types.SeasonActivity](f, types.TableSeasonActivities, nil)
	if err != nil {
		return nil, err
	}
	return report.SeasonCosts(activities), nil
}

// LoadWorkbook gathers the ledger, accounts, monthly cash flow and harvested
// production for an XLSX export.
func LoadWorkbook(f types.Farm) (report.Workbook, error) {
	var wb report.Workbook
	var err error
	if wb.Ledger, err = List[types.LedgerTransaction](f, types.TableLedger, nil); err != nil {
		return wb, err
	}
	if wb.Accounts, err = List[types.Account](f, types.TableAccounts, nil); err != nil {
		return wb, err
	}
	history, err := LoadSeasonHistory(f)
	if err != nil {
		return wb, err
	}
	wb.Cashflow = report.Cashflow(wb.Ledger)
	wb.Production = report.ProductionByCrop(report.FilterHistory(history, "", ""))
	return wb, nil
}
