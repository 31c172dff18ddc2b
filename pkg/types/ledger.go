package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger transaction by the sign of its amount.
type TransactionKind string

// Transaction kinds.
const (
	TransactionIncome  TransactionKind = "income"
	TransactionExpense TransactionKind = "expense"
)

// ParseTransactionKind converts a string to a TransactionKind.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch k := TransactionKind(s); k {
	case TransactionIncome, TransactionExpense:
		return k, nil
	}
	return "", fmt.Errorf("%w: transaction kind %q", ErrInvalidKind, s)
}

// KindOf returns expense for negative amounts and income otherwise.
func KindOf(amount decimal.Decimal) TransactionKind {
	if amount.IsNegative() {
		return TransactionExpense
	}
	return TransactionIncome
}

// TransactionSource records which business event wrote a ledger row.
type TransactionSource string

// Transaction sources.
const (
	SourceManual           TransactionSource = "manual"
	SourceSettlement       TransactionSource = "settlement"
	SourceAssetAcquisition TransactionSource = "asset_acquisition"
	SourceMaintenance      TransactionSource = "maintenance"
	SourceAssetSale        TransactionSource = "asset_sale"
	SourceReversal         TransactionSource = "reversal"
)

// ParseTransactionSource converts a string to a TransactionSource.
func ParseTransactionSource(s string) (TransactionSource, error) {
	switch src := TransactionSource(s); src {
	case SourceManual, SourceSettlement, SourceAssetAcquisition,
		SourceMaintenance, SourceAssetSale, SourceReversal:
		return src, nil
	}
	return "", fmt.Errorf("%w: transaction source %q", ErrInvalidData, s)
}

// Ledger errors.
var (
	ErrAppendOnly      = errors.New("ledger transactions cannot be changed or removed")
	ErrAlreadyReversed = errors.New("transaction already reversed")
)

// LedgerTransaction is one signed movement of money: positive is income,
// negative is expense. Rows are never updated or deleted.
type LedgerTransaction struct {
	TransactionID string            `json:"transaction_id"`
	Description   string            `json:"description"`
	Amount        decimal.Decimal   `json:"amount"`
	Date          Date              `json:"date"`
	Kind          TransactionKind   `json:"kind"`
	Source        TransactionSource `json:"source"`
	SourceID      string            `json:"source_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Normalize reconciles Kind with the sign of Amount for manually entered
// transactions: a positive amount with kind expense is negated, and an empty
// kind is derived from the sign. A negative amount with kind income is
// rejected.
func (t *LedgerTransaction) Normalize() error {
	switch t.Kind {
	case "":
		t.Kind = KindOf(t.Amount)
	case TransactionExpense:
		if t.Amount.IsPositive() {
			t.Amount = t.Amount.Neg()
		}
	case TransactionIncome:
		if t.Amount.IsNegative() {
			return fmt.Errorf("%w: income must not be negative", ErrInvalidAmount)
		}
	default:
		return fmt.Errorf("%w: transaction kind %q", ErrInvalidKind, t.Kind)
	}
	if t.Source == "" {
		t.Source = SourceManual
	}
	return nil
}

// Validate checks required fields and that Kind matches the sign of Amount.
// Only asset sales may carry a zero amount.
func (t *LedgerTransaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if _, err := ParseTransactionSource(string(t.Source)); err != nil {
		return err
	}
	if t.Amount.IsZero() && t.Source != SourceAssetSale {
		return fmt.Errorf("%w: amount must not be zero", ErrInvalidAmount)
	}
	if t.Kind != KindOf(t.Amount) {
		return fmt.Errorf("%w: kind %q does not match amount %s", ErrInvalidKind, t.Kind, t.Amount)
	}
	return nil
}
