// JSONL import into an empty farm.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// ImportJSONL loads the files written by ExportJSONL from dir. The farm must
// be empty. Loading is one transaction: every file loads or nothing does.
// Malformed lines and rows that violate a constraint are skipped; unknown
// fields are ignored. Returns the row count loaded per table.
func (b *Backend) ImportJSONL(dir string) (map[string]int, error) {
	counts := make(map[string]int, len(jsonlTables))
	err := b.withTx(func(tx *sql.Tx) error {
		for _, m := range jsonlTables {
			var n int
			if err := tx.QueryRow("SELECT COUNT(*) FROM " + m.table).Scan(&n); err != nil {
				return fmt.Errorf("counting %s: %w", m.table, err)
			}
			if n > 0 {
				return fmt.Errorf("%w: %s has %d rows", types.ErrFarmNotEmpty, m.table, n)
			}
		}

		for _, m := range jsonlTables {
			records, err := readJSONL(filepath.Join(dir, m.file))
			if err != nil {
				return fmt.Errorf("reading %s: %w", m.file, err)
			}
			if len(records) == 0 {
				continue
			}
			n, err := insertRecords(tx, m.table, splitColumns(m.columns), records)
			if err != nil {
				return fmt.Errorf("loading %s into %s: %w", m.file, m.table, err)
			}
			counts[m.table] = n
		}
		return nil
	})
	if err != nil {
		b.failed("import jsonl", err, zap.String("dir", dir))
		return nil, err
	}

	b.log.Info("imported jsonl", zap.String("dir", dir), zap.Any("rows", counts))
	return counts, nil
}

// insertRecords inserts parsed JSONL records into table and returns how many
// were accepted. Only the listed columns are read; missing ones are NULL.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders,
	))
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}
		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = obj[col]
		}
		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
		inserted++
	}
	return inserted, nil
}
