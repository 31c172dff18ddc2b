package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind tells whether an account is money owed by or to the farm.
type AccountKind string

// Account kinds.
const (
	AccountPayable    AccountKind = "payable"
	AccountReceivable AccountKind = "receivable"
)

// ParseAccountKind converts a string to an AccountKind.
func ParseAccountKind(s string) (AccountKind, error) {
	switch k := AccountKind(s); k {
	case AccountPayable, AccountReceivable:
		return k, nil
	}
	return "", fmt.Errorf("%w: account kind %q", ErrInvalidKind, s)
}

// Sign returns -1 for payables and +1 for receivables.
func (k AccountKind) Sign() int64 {
	if k == AccountPayable {
		return -1
	}
	return 1
}

// AccountStatus is the settlement state of an account. The only legal
// transition is pending to paid.
type AccountStatus string

// Account states.
const (
	AccountPending AccountStatus = "pending"
	AccountPaid    AccountStatus = "paid"
)

// ParseAccountStatus converts a string to an AccountStatus.
func ParseAccountStatus(s string) (AccountStatus, error) {
	switch st := AccountStatus(s); st {
	case AccountPending, AccountPaid:
		return st, nil
	}
	return "", fmt.Errorf("%w: account status %q", ErrInvalidStatus, s)
}

// ErrAccountSettled is returned when editing or settling an account that is
// already paid.
var ErrAccountSettled = errors.New("account is already settled")

// Account is a scheduled payable or receivable. Amount is always positive;
// the sign of the ledger entry comes from Kind.
type Account struct {
	AccountID   string          `json:"account_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     Date            `json:"due_date"`
	Kind        AccountKind     `json:"kind"`
	Status      AccountStatus   `json:"status"`
	PaidOn      Date            `json:"paid_on"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks required fields, the amount, and the enums. An empty
// status defaults to pending.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	if !a.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if a.DueDate.IsZero() {
		return ErrInvalidDate
	}
	if _, err := ParseAccountKind(string(a.Kind)); err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = AccountPending
	}
	_, err := ParseAccountStatus(string(a.Status))
	return err
}

// Settle marks the account paid on the given day. Returns ErrAccountSettled
// if it is already paid.
func (a *Account) Settle(on Date) error {
	if a.Status == AccountPaid {
		return ErrAccountSettled
	}
	if a.Status != AccountPending {
		return ErrInvalidTransition
	}
	if on.IsZero() {
		return ErrInvalidDate
	}
	a.Status = AccountPaid
	a.PaidOn = on
	return nil
}

// LedgerAmount returns the signed amount the account contributes to the
// ledger once settled.
func (a *Account) LedgerAmount() decimal.Decimal {
	return a.Amount.Mul(decimal.NewFromInt(a.Kind.Sign()))
}
