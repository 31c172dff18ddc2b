// Package sqlite exposes the SQLite farm backend to code outside this
// module while keeping its implementation internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/harvest/internal/sqlite"
)

// Backend is the SQLite farm. It satisfies types.Farm and types.Bookkeeper.
type Backend = sqlite.Backend

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	farm := sqlite.NewBackend(nil)
//	err := farm.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/var/lib/harvest",
//	})
//	defer farm.Detach()
func NewBackend(log *zap.Logger) *Backend {
	return sqlite.NewBackend(sqlite.WithLogger(log))
}
