package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// Workbook is the content of an XLSX export.
type Workbook struct {
	Ledger     []*types.LedgerTransaction
	Accounts   []*types.Account
	Cashflow   []MonthFlow
	Production []CropTotal
}

// Sheet names in export order.
const (
	SheetLedger     = "Ledger"
	SheetAccounts   = "Accounts"
	SheetCashflow   = "Cashflow"
	SheetProduction = "Production"
)

// WriteWorkbook renders wb as an XLSX file to w.
func WriteWorkbook(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetLedger); err != nil {
		return fmt.Errorf("naming ledger sheet: %w", err)
	}
	for _, name := range []string{SheetAccounts, SheetCashflow, SheetProduction} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	ledger := make([][]any, 0, len(wb.Ledger))
	for _, t := range wb.Ledger {
		amount, _ := t.Amount.Float64()
		ledger = append(ledger, []any{t.Date.String(), t.Description, amount, string(t.Kind), string(t.Source)})
	}
	if err := writeSheet(f, SheetLedger, []string{"Date", "Description", "Amount", "Kind", "Source"}, ledger); err != nil {
		return err
	}

	accounts := make([][]any, 0, len(wb.Accounts))
	for _, a := range wb.Accounts {
		amount, _ := a.Amount.Float64()
		accounts = append(accounts, []any{a.DueDate.String(), a.Description, amount, string(a.Kind), string(a.Status), a.PaidOn.String()})
	}
	if err := writeSheet(f, SheetAccounts, []string{"Due", "Description", "Amount", "Kind", "Status", "Paid on"}, accounts); err != nil {
		return err
	}

	cashflow := make([][]any, 0, len(wb.Cashflow))
	for _, m := range wb.Cashflow {
		income, _ := m.Income.Float64()
		expense, _ := m.Expense.Float64()
		net, _ := m.Net.Float64()
		cashflow = append(cashflow, []any{m.Month, income, expense, net})
	}
	if err := writeSheet(f, SheetCashflow, []string{"Month", "Income", "Expense", "Net"}, cashflow); err != nil {
		return err
	}

	production := make([][]any, 0, len(wb.Production))
	for _, c := range wb.Production {
		production = append(production, []any{c.Crop, c.Sacks})
	}
	if err := writeSheet(f, SheetProduction, []string{"Crop", "Sacks"}, production); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// writeSheet writes a bold header row followed by rows, one value per cell.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("writing %s header: %w", sheet, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing %s row %d: %w", sheet, r+2, err)
			}
		}
	}
	return f.SetColWidth(sheet, "A", last, 16)
}
