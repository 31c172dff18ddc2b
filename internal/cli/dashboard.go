package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/harvest/internal/farm"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show balance, counts and pending account totals",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			d, err := farm.LoadDashboard(backend)
			if err != nil {
				return fmt.Errorf("dashboard: %w", err)
			}
			if flags.jsonMode {
				return writeJSON(cmd, d)
			}
			return writeRows(cmd.OutOrStdout(), []string{"METRIC", "VALUE"}, [][]string{
				{"Balance", d.Balance.StringFixed(2)},
				{"Income", d.Income.StringFixed(2)},
				{"Expense", d.Expense.StringFixed(2)},
				{"Pending payable", d.PendingPayable.StringFixed(2)},
				{"Pending receivable", d.PendingReceivable.StringFixed(2)},
				{"Employees", strconv.Itoa(d.Employees)},
				{"Stock items", strconv.Itoa(d.StockItems)},
				{"Assets", strconv.Itoa(d.Assets)},
				{"Active seasons", strconv.Itoa(d.ActiveSeasons)},
			})
		},
	}
}
