package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows, so one hydrate
// function serves Get and Fetch.
type rowScanner interface {
	Scan(dest ...any) error
}

// requireAffected maps a statement that touched no rows to ErrNotFound.
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", what, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// notFound converts sql.ErrNoRows to ErrNotFound and wraps anything else.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// fetchAll runs query and hydrates every row with scan. It returns an empty
// slice, not nil, when nothing matches.
func fetchAll[T any](q querier, what string, scan func(rowScanner) (*T, error), query string, args ...any) ([]any, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", what, err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating %s: %w", what, err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", what, err)
	}
	return results, nil
}

// nameTaken reports whether another row in table already uses name.
func nameTaken(q querier, table, idColumn, name, exceptID string) (bool, error) {
	var found string
	err := q.QueryRow(
		"SELECT "+idColumn+" FROM "+table+" WHERE name = ? AND "+idColumn+" != ?",
		name, exceptID,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s name uniqueness: %w", table, err)
	}
	return true, nil
}
