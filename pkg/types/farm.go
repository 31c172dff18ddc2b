package types

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Farm defines the interface for backend-agnostic storage access.
// Callers attach to a backend, access tables by name, and detach when done.
type Farm interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Attach connects the Farm to the backend described by config.
	// Creates the DataDir if it does not exist and keeps any existing data.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations on tables return ErrFarmDetached.
	Detach() error
}

// Bookkeeper groups the operations that touch more than one table. Each one
// commits all of its writes or none of them.
type Bookkeeper interface {
	// SettleAccount marks a pending account paid and records its ledger
	// transaction. Fails with ErrAccountSettled if already paid.
	SettleAccount(accountID string, paidOn Date) (*LedgerTransaction, error)

	// AcquireAsset inserts the asset and an expense of its acquisition value.
	AcquireAsset(asset *Asset) (string, error)

	// RegisterMaintenance inserts the record, an expense of its cost, and
	// moves the asset to in_maintenance.
	RegisterMaintenance(record *MaintenanceRecord) (string, error)

	// SellAsset records the sale income and removes the asset.
	SellAsset(assetID string, saleValue decimal.Decimal, soldOn Date) (*LedgerTransaction, error)

	// AddStock adds quantity to the item with the given name, creating it
	// when no such item exists.
	AddStock(name string, quantity decimal.Decimal, unit string) (*StockItem, error)

	// HarvestSeason closes an active season with its total yield.
	HarvestSeason(seasonID string, totalYieldKg float64, on Date) (*Season, error)

	// ReverseTransaction appends the negation of a ledger transaction.
	ReverseTransaction(transactionID string, on Date) (*LedgerTransaction, error)
}

// Farm lifecycle errors.
var (
	ErrFarmDetached    = errors.New("farm is detached")
	ErrAlreadyAttached = errors.New("farm is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

// ErrFarmNotEmpty is returned when importing into a farm that already has
// rows.
var ErrFarmNotEmpty = errors.New("farm already has data")
