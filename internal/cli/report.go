package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/harvest/internal/farm"
	"github.com/mesh-intelligence/harvest/internal/report"
	"github.com/mesh-intelligence/harvest/pkg/types"
)

func newReportCmd() *cobra.Command {
	r := &cobra.Command{
		Use:   "report",
		Short: "Season history, production and cash flow reports",
	}
	r.AddCommand(newReportSeasonsCmd(), newReportCostsCmd(), newReportCashflowCmd())
	return r
}

// seasonReport is the JSON shape of "report seasons".
type seasonReport struct {
	Seasons    []seasonLine        `json:"seasons"`
	Trend      []report.TrendPoint `json:"trend"`
	Production []report.CropTotal  `json:"production"`
}

type seasonLine struct {
	report.HistoryRow
	YieldPerHectare float64 `json:"yield_per_hectare"`
}

func newReportSeasonsCmd() *cobra.Command {
	var crop, plot string
	cmd := &cobra.Command{
		Use:   "seasons",
		Short: "Harvested seasons with yield per hectare, trend and totals per crop",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			history, err := farm.LoadSeasonHistory(backend)
			if err != nil {
				return fmt.Errorf("report seasons: %w", err)
			}
			rows := report.FilterHistory(history, crop, plot)

			out := seasonReport{
				Seasons:    make([]seasonLine, 0, len(rows)),
				Trend:      report.YieldTrend(rows),
				Production: report.ProductionByCrop(rows),
			}
			for _, r := range rows {
				out.Seasons = append(out.Seasons, seasonLine{HistoryRow: r, YieldPerHectare: r.YieldPerHectare()})
			}
			if flags.jsonMode {
				return writeJSON(cmd, out)
			}

			lines := make([][]string, 0, len(out.Seasons))
			for _, s := range out.Seasons {
				lines = append(lines, []string{
					s.Crop, strconv.Itoa(s.Year), s.PlotName,
					formatFloat(s.AreaHectares), formatFloat(s.YieldSacks), formatFloat(s.YieldPerHectare),
				})
			}
			w := cmd.OutOrStdout()
			if err := writeRows(w, []string{"CROP", "YEAR", "PLOT", "HECTARES", "SACKS", "SACKS/HA"}, lines); err != nil {
				return err
			}
			fmt.Fprintln(w)
			totals := make([][]string, 0, len(out.Production))
			for _, p := range out.Production {
				totals = append(totals, []string{p.Crop, formatFloat(p.Sacks)})
			}
			return writeRows(w, []string{"CROP", "TOTAL SACKS"}, totals)
		},
	}
	cmd.Flags().StringVar(&crop, "crop", "", "only this crop")
	cmd.Flags().StringVar(&plot, "plot", "", "only this plot (name or ID)")
	return cmd
}

func newReportCostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "costs",
		Short: "Total activity cost per season",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			costs, err := farm.LoadSeasonCosts(backend)
			if err != nil {
				return fmt.Errorf("report costs: %w", err)
			}
			seasons, err := farm.List[types.Season](backend, types.TableSeasons, nil)
			if err != nil {
				return fmt.Errorf("report costs: %w", err)
			}
			if flags.jsonMode {
				return writeJSON(cmd, costs)
			}

			sort.Slice(seasons, func(i, j int) bool { return seasons[i].SeasonID < seasons[j].SeasonID })
			lines := [][]string{}
			for _, s := range seasons {
				cost, ok := costs[s.SeasonID]
				if !ok {
					continue
				}
				lines = append(lines, []string{s.Crop, strconv.Itoa(s.StartYear), s.SeasonID, cost.StringFixed(2)})
			}
			return writeRows(cmd.OutOrStdout(), []string{"CROP", "YEAR", "SEASON", "COST"}, lines)
		},
	}
}

func newReportCashflowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cashflow",
		Short: "Income, expense and net per month",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			ledger, err := farm.List[types.LedgerTransaction](backend, types.TableLedger, nil)
			if err != nil {
				return fmt.Errorf("report cashflow: %w", err)
			}
			flows := report.Cashflow(ledger)
			if flags.jsonMode {
				return writeJSON(cmd, flows)
			}
			lines := make([][]string, 0, len(flows))
			for _, f := range flows {
				lines = append(lines, []string{f.Month, f.Income.StringFixed(2), f.Expense.StringFixed(2), f.Net.StringFixed(2)})
			}
			return writeRows(cmd.OutOrStdout(), []string{"MONTH", "INCOME", "EXPENSE", "NET"}, lines)
		},
	}
}
