package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

var _ types.Table = (*ledgerTable)(nil)

const ledgerColumns = "transaction_id, description, amount, date, kind, source, source_id, created_at"

type ledgerTable struct {
	backend *Backend
}

// Get retrieves a ledger transaction by ID.
func (lt *ledgerTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := lt.backend.conn()
	if err != nil {
		return nil, err
	}
	return getTransaction(db, id)
}

// Set appends a manual transaction. The ledger is append-only: any id
// returns ErrAppendOnly.
func (lt *ledgerTable) Set(id string, data any) (string, error) {
	t, ok := data.(*types.LedgerTransaction)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		return "", types.ErrAppendOnly
	}
	t.Source = types.SourceManual
	t.SourceID = ""
	if err := t.Normalize(); err != nil {
		return "", err
	}
	db, err := lt.backend.conn()
	if err != nil {
		return "", err
	}
	if err := lt.backend.insertLedger(db, t); err != nil {
		return "", err
	}
	return t.TransactionID, nil
}

// Delete always fails; post a reversal instead.
func (lt *ledgerTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return types.ErrAppendOnly
}

// Fetch lists transactions, newest first. Filter keys: kind, source, from,
// to (inclusive YYYY-MM-DD bounds, from not after to), limit, offset.
func (lt *ledgerTable) Fetch(filter types.Filter) ([]any, error) {
	var where whereClause
	if kind, ok, err := filterString(filter, "kind"); err != nil {
		return nil, err
	} else if ok {
		if _, err := types.ParseTransactionKind(kind); err != nil {
			return nil, types.ErrInvalidFilter
		}
		where.add("kind = ?", kind)
	}
	if source, ok, err := filterString(filter, "source"); err != nil {
		return nil, err
	} else if ok {
		if _, err := types.ParseTransactionSource(source); err != nil {
			return nil, types.ErrInvalidFilter
		}
		where.add("source = ?", source)
	}
	from, hasFrom, err := filterDate(filter, "from")
	if err != nil {
		return nil, err
	}
	to, hasTo, err := filterDate(filter, "to")
	if err != nil {
		return nil, err
	}
	if hasFrom && hasTo && from.After(to) {
		return nil, types.ErrInvalidFilter
	}
	if hasFrom {
		where.add("date >= ?", from.String())
	}
	if hasTo {
		where.add("date <= ?", to.String())
	}
	page, err := limitOffset(filter)
	if err != nil {
		return nil, err
	}
	db, err := lt.backend.conn()
	if err != nil {
		return nil, err
	}
	return fetchAll(db, "ledger", hydrateTransaction,
		"SELECT "+ledgerColumns+" FROM ledger"+where.String()+
			" ORDER BY date DESC, created_at DESC, transaction_id DESC"+page,
		where.args...,
	)
}

// insertLedger validates t, assigns its id and timestamp, and appends it.
func (b *Backend) insertLedger(q querier, t *types.LedgerTransaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	id, err := newID()
	if err != nil {
		return err
	}
	t.TransactionID = id
	t.CreatedAt = b.now()
	var sourceID any
	if t.SourceID != "" {
		sourceID = t.SourceID
	}
	_, err = q.Exec(
		"INSERT INTO ledger ("+ledgerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		t.TransactionID, t.Description, t.Amount, formatDate(t.Date), string(t.Kind),
		string(t.Source), sourceID, formatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting ledger transaction: %w", err)
	}
	return nil
}

func getTransaction(q querier, id string) (*types.LedgerTransaction, error) {
	t, err := hydrateTransaction(q.QueryRow("SELECT "+ledgerColumns+" FROM ledger WHERE transaction_id = ?", id))
	if err != nil {
		return nil, notFound(err, "getting transaction %s", id)
	}
	return t, nil
}

func hydrateTransaction(row rowScanner) (*types.LedgerTransaction, error) {
	var t types.LedgerTransaction
	var date, sourceID sql.NullString
	var kind, source, createdAt string
	if err := row.Scan(&t.TransactionID, &t.Description, &t.Amount, &date, &kind,
		&source, &sourceID, &createdAt); err != nil {
		return nil, err
	}
	t.Kind = types.TransactionKind(kind)
	t.Source = types.TransactionSource(source)
	t.SourceID = sourceID.String
	var err error
	if t.Date, err = parseDate(date, "date"); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &t, nil
}
