package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const tablesHelp = `Tables: employees, plots, seasons, season_activities, stock, assets,
maintenance_records, accounts, ledger`

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Print one row as JSON",
		Long:  "Get prints the row with the given ID.\n\n" + tablesHelp,
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			table, err := openTable(backend, a[0])
			if err != nil {
				return err
			}
			entity, err := table.Get(a[1])
			if err != nil {
				return fmt.Errorf("get %s %s: %w", a[0], a[1], err)
			}
			return writeJSON(cmd, entity)
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <table> <id|new> <json>",
		Short: "Create or update a row from a JSON payload",
		Long: `Set creates a row when id is "new" (or empty) and updates it otherwise.

Creating an asset records its acquisition expense; creating a maintenance
record records its cost and puts the asset in maintenance; creating an
activity that names a stock item draws its quantity from stock. Ledger rows
can only be created.

` + tablesHelp + `

Example:
  harvest set plots new '{"name":"North field","area_hectares":12.5}'
  harvest set accounts new '{"description":"Seed","amount":"1200","due_date":"2025-03-01","kind":"payable"}'`,
		Args: args(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, a []string) error {
			tableName, id, payload := a[0], a[1], a[2]
			if id == "new" {
				id = ""
			}

			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			table, err := openTable(backend, tableName)
			if err != nil {
				return err
			}
			entity, err := parseEntityJSON(tableName, []byte(payload))
			if err != nil {
				return err
			}
			savedID, err := table.Set(id, entity)
			if err != nil {
				return fmt.Errorf("set %s: %w", tableName, err)
			}
			saved, err := table.Get(savedID)
			if err != nil {
				return fmt.Errorf("reading saved %s %s: %w", tableName, savedID, err)
			}
			return writeJSON(cmd, saved)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table> [key=value...]",
		Short: "List rows with optional filters",
		Long: `List prints the rows of a table as a JSON array. Filters are key=value
pairs ANDed together; limit and offset page the result.

` + tablesHelp + `

Example:
  harvest list accounts status=pending
  harvest list ledger from=2025-01-01 to=2025-03-31 kind=expense
  harvest list seasons crop=soy limit=10`,
		Args: args(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			filter, err := parseFilter(a[1:])
			if err != nil {
				return err
			}

			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			table, err := openTable(backend, a[0])
			if err != nil {
				return err
			}
			entities, err := table.Fetch(filter)
			if err != nil {
				return fmt.Errorf("list %s: %w", a[0], err)
			}
			return writeJSON(cmd, entities)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a row",
		Long: `Delete removes one row. Deleting does not write to the ledger; use
"asset sell" to record a sale and "ledger reverse" to correct the ledger.

` + tablesHelp,
		Args: args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			table, err := openTable(backend, a[0])
			if err != nil {
				return err
			}
			if err := table.Delete(a[1]); err != nil {
				return fmt.Errorf("delete %s %s: %w", a[0], a[1], err)
			}
			if flags.jsonMode {
				return writeJSON(cmd, map[string]string{"deleted": a[1]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", a[0], a[1])
			return nil
		},
	}
}
