package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL for all tables. Every statement is idempotent so Attach can
// run it against an existing database. Money and quantities are TEXT holding
// exact decimal strings; dates are YYYY-MM-DD and timestamps RFC3339.
const (
	createEmployees = `CREATE TABLE IF NOT EXISTS employees (
    employee_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    role TEXT NOT NULL,
    salary TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createPlots = `CREATE TABLE IF NOT EXISTS plots (
    plot_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    area_hectares REAL NOT NULL,
    created_at TEXT NOT NULL
);`

	createSeasons = `CREATE TABLE IF NOT EXISTS seasons (
    season_id TEXT PRIMARY KEY,
    crop TEXT NOT NULL,
    start_year INTEGER NOT NULL,
    plot_id TEXT NOT NULL,
    status TEXT NOT NULL,
    total_yield_kg REAL NOT NULL DEFAULT 0,
    harvested_on TEXT,
    created_at TEXT NOT NULL,
    FOREIGN KEY (plot_id) REFERENCES plots(plot_id) ON DELETE RESTRICT
);`

	createStock = `CREATE TABLE IF NOT EXISTS stock (
    stock_item_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    quantity TEXT NOT NULL,
    unit TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createSeasonActivities = `CREATE TABLE IF NOT EXISTS season_activities (
    activity_id TEXT PRIMARY KEY,
    season_id TEXT NOT NULL,
    description TEXT NOT NULL,
    date TEXT NOT NULL,
    stock_item_id TEXT,
    quantity_used TEXT NOT NULL,
    total_cost TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (season_id) REFERENCES seasons(season_id) ON DELETE CASCADE,
    FOREIGN KEY (stock_item_id) REFERENCES stock(stock_item_id) ON DELETE SET NULL
);`

	createAssets = `CREATE TABLE IF NOT EXISTS assets (
    asset_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    acquired_on TEXT NOT NULL,
    acquisition_value TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createMaintenanceRecords = `CREATE TABLE IF NOT EXISTS maintenance_records (
    maintenance_id TEXT PRIMARY KEY,
    asset_id TEXT NOT NULL,
    date TEXT NOT NULL,
    description TEXT NOT NULL,
    cost TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (asset_id) REFERENCES assets(asset_id) ON DELETE CASCADE
);`

	createAccounts = `CREATE TABLE IF NOT EXISTS accounts (
    account_id TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    amount TEXT NOT NULL,
    due_date TEXT NOT NULL,
    kind TEXT NOT NULL,
    status TEXT NOT NULL,
    paid_on TEXT,
    created_at TEXT NOT NULL
);`

	createLedger = `CREATE TABLE IF NOT EXISTS ledger (
    transaction_id TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    amount TEXT NOT NULL,
    date TEXT NOT NULL,
    kind TEXT NOT NULL,
    source TEXT NOT NULL,
    source_id TEXT,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxSeasonsPlot          = `CREATE INDEX IF NOT EXISTS idx_seasons_plot ON seasons(plot_id);`
	idxSeasonsStatus        = `CREATE INDEX IF NOT EXISTS idx_seasons_status ON seasons(status);`
	idxActivitiesSeason     = `CREATE INDEX IF NOT EXISTS idx_activities_season ON season_activities(season_id);`
	idxMaintenanceAsset     = `CREATE INDEX IF NOT EXISTS idx_maintenance_asset ON maintenance_records(asset_id);`
	idxAccountsStatusDue    = `CREATE INDEX IF NOT EXISTS idx_accounts_status_due ON accounts(status, due_date);`
	idxLedgerDate           = `CREATE INDEX IF NOT EXISTS idx_ledger_date ON ledger(date);`
	idxLedgerSource         = `CREATE INDEX IF NOT EXISTS idx_ledger_source ON ledger(source, source_id);`
	idxLedgerReversalUnique = `CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_reversal_unique ON ledger(source_id) WHERE source = 'reversal';`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createEmployees,
	createPlots,
	createSeasons,
	createStock,
	createSeasonActivities,
	createAssets,
	createMaintenanceRecords,
	createAccounts,
	createLedger,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxSeasonsPlot,
	idxSeasonsStatus,
	idxActivitiesSeason,
	idxMaintenanceAsset,
	idxAccountsStatusDue,
	idxLedgerDate,
	idxLedgerSource,
	idxLedgerReversalUnique,
}

// createSchema runs every table and index statement in one transaction.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaDDL {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}
	return nil
}
