package types

import "errors"

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used (generated or provided).
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table.
	Fetch(filter Filter) ([]any, error)
}

// Filter narrows a Fetch. Keys are table specific; values must have the
// documented Go type or Fetch returns ErrInvalidFilter.
type Filter map[string]any

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)

// Entity validation errors. Validate methods wrap ErrMissingField with the
// name of the offending field.
var (
	ErrMissingField      = errors.New("required field is empty")
	ErrInvalidName       = errors.New("invalid name")
	ErrDuplicateName     = errors.New("name already exists")
	ErrInvalidAmount     = errors.New("invalid monetary amount")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidArea       = errors.New("area must be positive")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidKind       = errors.New("invalid kind")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInUse             = errors.New("entity is still referenced")
)
