package types

// Standard table names for Farm.GetTable.
const (
	TableEmployees          = "employees"
	TablePlots              = "plots"
	TableSeasons            = "seasons"
	TableSeasonActivities   = "season_activities"
	TableStock              = "stock"
	TableAssets             = "assets"
	TableMaintenanceRecords = "maintenance_records"
	TableAccounts           = "accounts"
	TableLedger             = "ledger"
)

// StandardTableNames lists all standard table names in dependency order.
var StandardTableNames = []string{
	TableEmployees,
	TablePlots,
	TableSeasons,
	TableStock,
	TableSeasonActivities,
	TableAssets,
	TableMaintenanceRecords,
	TableAccounts,
	TableLedger,
}
