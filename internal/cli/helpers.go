package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/harvest/internal/paths"
	"github.com/mesh-intelligence/harvest/internal/sqlite"
	"github.com/mesh-intelligence/harvest/pkg/types"
)

// entityFactories returns an empty entity for each table, ready for
// json.Unmarshal.
var entityFactories = map[string]func() any{
	types.TableEmployees:          func() any { return &types.Employee{} },
	types.TablePlots:              func() any { return &types.Plot{} },
	types.TableSeasons:            func() any { return &types.Season{} },
	types.TableSeasonActivities:   func() any { return &types.SeasonActivity{} },
	types.TableStock:              func() any { return &types.StockItem{} },
	types.TableAssets:             func() any { return &types.Asset{} },
	types.TableMaintenanceRecords: func() any { return &types.MaintenanceRecord{} },
	types.TableAccounts:           func() any { return &types.Account{} },
	types.TableLedger:             func() any { return &types.LedgerTransaction{} },
}

var validTableNamesStr = strings.Join(types.StandardTableNames, ", ")

// resolveDataDir applies --data-dir > config data_dir > HARVEST_DATA_DIR >
// platform default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flags.dataDir, session.settings.DataDir)
}

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	backend := sqlite.NewBackend(sqlite.WithLogger(logger()))
	if err := backend.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return backend, nil
}

// openTable returns the named table, turning an unknown name into a usage
// error that lists the valid ones.
func openTable(backend *sqlite.Backend, name string) (types.Table, error) {
	table, err := backend.GetTable(name)
	if err != nil {
		return nil, fmt.Errorf("unknown table %q (valid: %s): %w", name, validTableNamesStr, err)
	}
	return table, nil
}

// parseEntityJSON unmarshals data into the entity type of tableName.
func parseEntityJSON(tableName string, data []byte) (any, error) {
	factory, ok := entityFactories[tableName]
	if !ok {
		return nil, fmt.Errorf("unknown table %q (valid: %s): %w", tableName, validTableNamesStr, types.ErrTableNotFound)
	}
	e := factory()
	if err := json.Unmarshal(data, e); err != nil {
		return nil, usagef("parse JSON for %s: %v", tableName, err)
	}
	return e, nil
}

// parseFilter turns key=value arguments into a Filter. limit and offset are
// integers; every other value stays a string.
func parseFilter(pairs []string) (types.Filter, error) {
	filter := types.Filter{}
	for _, arg := range pairs {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, usagef("invalid filter %q (expected key=value)", arg)
		}
		switch key {
		case "limit", "offset":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, usagef("invalid %s %q: %v", key, value, err)
			}
			filter[key] = n
		default:
			filter[key] = value
		}
	}
	return filter, nil
}

// parseAmount parses a decimal argument.
func parseAmount(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, usagef("invalid %s %q: %v", name, s, err)
	}
	return d, nil
}

// parseDateFlag parses a YYYY-MM-DD flag value; empty means today.
func parseDateFlag(s string) (types.Date, error) {
	if s == "" {
		return types.Today(), nil
	}
	d, err := types.ParseDate(s)
	if err != nil {
		return types.Date{}, usageError{err}
	}
	return d, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// writeRows prints a tab-aligned table with a header row.
func writeRows(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// formatFloat renders v with two decimals.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
