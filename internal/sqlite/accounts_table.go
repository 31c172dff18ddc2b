package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

var _ types.Table = (*accountsTable)(nil)

const accountColumns = "account_id, description, amount, due_date, kind, status, paid_on, created_at"

type accountsTable struct {
	backend *Backend
}

// Get retrieves an account by ID.
func (at *accountsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := at.backend.conn()
	if err != nil {
		return nil, err
	}
	return getAccount(db, id)
}

// Set creates a pending account or edits one that is still pending. Status
// never changes here; settle through SettleAccount.
func (at *accountsTable) Set(id string, data any) (string, error) {
	a, ok := data.(*types.Account)
	if !ok {
		return "", types.ErrInvalidData
	}
	a.Status = types.AccountPending
	a.PaidOn = types.Date{}
	if err := a.Validate(); err != nil {
		return "", err
	}

	if id == "" {
		db, err := at.backend.conn()
		if err != nil {
			return "", err
		}
		newID, err := newID()
		if err != nil {
			return "", err
		}
		a.AccountID = newID
		a.CreatedAt = at.backend.now()
		if err := insertAccount(db, a); err != nil {
			return "", err
		}
		return a.AccountID, nil
	}

	err := at.backend.withTx(func(tx *sql.Tx) error {
		stored, err := getAccount(tx, id)
		if err != nil {
			return err
		}
		if stored.Status != types.AccountPending {
			return fmt.Errorf("%w: %s", types.ErrAccountSettled, id)
		}
		_, err = tx.Exec(
			`UPDATE accounts SET description = ?, amount = ?, due_date = ?, kind = ?
			 WHERE account_id = ? AND status = 'pending'`,
			a.Description, a.Amount, formatDate(a.DueDate), string(a.Kind), id,
		)
		if err != nil {
			return fmt.Errorf("updating account: %w", err)
		}
		a.AccountID = id
		a.CreatedAt = stored.CreatedAt
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes an account. Ledger rows written by its settlement stay.
func (at *accountsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := at.backend.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec("DELETE FROM accounts WHERE account_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return requireAffected(res, "deleting account")
}

// Fetch lists accounts. Filter keys: status, kind, limit, offset. Pending
// accounts come soonest due first, paid ones latest due first; with no
// status filter the order is due date ascending.
func (at *accountsTable) Fetch(filter types.Filter) ([]any, error) {
	var where whereClause
	order := " ORDER BY due_date ASC, account_id ASC"

	status, ok, err := filterString(filter, "status")
	if err != nil {
		return nil, err
	}
	if ok {
		st, err := types.ParseAccountStatus(status)
		if err != nil {
			return nil, types.ErrInvalidFilter
		}
		where.add("status = ?", string(st))
		if st == types.AccountPaid {
			order = " ORDER BY due_date DESC, account_id DESC"
		}
	}
	kind, ok, err := filterString(filter, "kind")
	if err != nil {
		return nil, err
	}
	if ok {
		if _, err := types.ParseAccountKind(kind); err != nil {
			return nil, types.ErrInvalidFilter
		}
		where.add("kind = ?", kind)
	}

	page, err := limitOffset(filter)
	if err != nil {
		return nil, err
	}
	db, err := at.backend.conn()
	if err != nil {
		return nil, err
	}
	return fetchAll(db, "accounts", hydrateAccount,
		"SELECT "+accountColumns+" FROM accounts"+where.String()+order+page,
		where.args...,
	)
}

func getAccount(q querier, id string) (*types.Account, error) {
	a, err := hydrateAccount(q.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE account_id = ?", id))
	if err != nil {
		return nil, notFound(err, "getting account %s", id)
	}
	return a, nil
}

func insertAccount(q querier, a *types.Account) error {
	_, err := q.Exec(
		"INSERT INTO accounts ("+accountColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		a.AccountID, a.Description, a.Amount, formatDate(a.DueDate), string(a.Kind),
		string(a.Status), formatDate(a.PaidOn), formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

func hydrateAccount(row rowScanner) (*types.Account, error) {
	var a types.Account
	var dueDate, paidOn sql.NullString
	var kind, status, createdAt string
	if err := row.Scan(&a.AccountID, &a.Description, &a.Amount, &dueDate, &kind,
		&status, &paidOn, &createdAt); err != nil {
		return nil, err
	}
	a.Kind = types.AccountKind(kind)
	a.Status = types.AccountStatus(status)
	var err error
	if a.DueDate, err = parseDate(dueDate, "due_date"); err != nil {
		return nil, err
	}
	if a.PaidOn, err = parseDate(paidOn, "paid_on"); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &a, nil
}
