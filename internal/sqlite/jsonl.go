// JSONL export of every table with atomic file writes.
package sqlite

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// jsonlTables maps each table to its export file and column list. Tables
// with foreign keys come after the tables they reference so an import can
// replay the files in order.
var jsonlTables = []struct {
	file    string
	table   string
	columns string
}{
	{"employees.jsonl", "employees", employeeColumns},
	{"plots.jsonl", "plots", plotColumns},
	{"seasons.jsonl", "seasons", seasonColumns},
	{"stock.jsonl", "stock", stockColumns},
	{"season_activities.jsonl", "season_activities", activityColumns},
	{"assets.jsonl", "assets", assetColumns},
	{"maintenance_records.jsonl", "maintenance_records", maintenanceColumns},
	{"accounts.jsonl", "accounts", accountColumns},
	{"ledger.jsonl", "ledger", ledgerColumns},
}

// ExportJSONL writes one <table>.jsonl file per table into dir, reading all
// tables from one snapshot. Each record is a JSON object keyed by column
// name. Returns the row count written per table.
func (b *Backend) ExportJSONL(dir string) (map[string]int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	counts := make(map[string]int, len(jsonlTables))
	err := b.withTx(func(tx *sql.Tx) error {
		for _, m := range jsonlTables {
			records, err := dumpTable(tx, m.table, splitColumns(m.columns))
			if err != nil {
				return err
			}
			if err := writeJSONL(filepath.Join(dir, m.file), records); err != nil {
				return fmt.Errorf("writing %s: %w", m.file, err)
			}
			counts[m.table] = len(records)
		}
		return nil
	})
	if err != nil {
		b.failed("export jsonl", err, zap.String("dir", dir))
		return nil, err
	}

	b.log.Info("exported jsonl", zap.String("dir", dir), zap.Any("rows", counts))
	return counts, nil
}

// dumpTable reads every row of table as a JSON object.
func dumpTable(q querier, table string, columns []string) ([]json.RawMessage, error) {
	rows, err := q.Query("SELECT " + strings.Join(columns, ", ") + " FROM " + table + " ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	records := []json.RawMessage{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		obj := make(map[string]any, len(columns))
		for i, col := range columns {
			if raw, ok := values[i].([]byte); ok {
				obj[col] = string(raw)
				continue
			}
			obj[col] = values[i]
		}
		rec, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("encoding %s row: %w", table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return records, nil
}

func splitColumns(columns string) []string {
	parts := strings.Split(columns, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped. A missing file reads as
// empty.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
