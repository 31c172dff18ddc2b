package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// printTransaction reports a ledger row written by a bookkeeping command.
func printTransaction(cmd *cobra.Command, verb string, t *types.LedgerTransaction) error {
	if flags.jsonMode {
		return writeJSON(cmd, t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s on %s (transaction %s)\n",
		verb, t.Description, t.Amount.StringFixed(2), t.Date, t.TransactionID)
	return nil
}

func newStockCmd() *cobra.Command {
	stock := &cobra.Command{
		Use:   "stock",
		Short: "Inventory operations",
	}

	var unit string
	add := &cobra.Command{
		Use:   "add <name> <quantity>",
		Short: "Add quantity to a stock item, creating it if needed",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			qty, err := parseAmount("quantity", a[1])
			if err != nil {
				return err
			}
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			item, err := backend.AddStock(a[0], qty, unit)
			if err != nil {
				return fmt.Errorf("stock add: %w", err)
			}
			if flags.jsonMode {
				return writeJSON(cmd, item)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", item.Name, item.Quantity.String(), item.Unit)
			return nil
		},
	}
	add.Flags().StringVar(&unit, "unit", "", "unit for a new item (e.g. kg, L, bag)")

	stock.AddCommand(add)
	return stock
}

func newAccountCmd() *cobra.Command {
	account := &cobra.Command{
		Use:   "account",
		Short: "Accounts payable and receivable",
	}

	var date string
	settle := &cobra.Command{
		Use:   "settle <account-id>",
		Short: "Mark a pending account paid and record it in the ledger",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			paidOn, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			t, err := backend.SettleAccount(a[0], paidOn)
			if err != nil {
				return fmt.Errorf("account settle: %w", err)
			}
			return printTransaction(cmd, "settled", t)
		},
	}
	settle.Flags().StringVar(&date, "date", "", "payment date YYYY-MM-DD (default today)")

	account.AddCommand(settle)
	return account
}

func newAssetCmd() *cobra.Command {
	asset := &cobra.Command{
		Use:   "asset",
		Short: "Fixed asset acquisition, maintenance and sale",
	}
	asset.AddCommand(newAssetAcquireCmd(), newAssetMaintainCmd(), newAssetSellCmd())
	return asset
}

func newAssetAcquireCmd() *cobra.Command {
	var name, typ, value, date string
	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Register a new asset and its acquisition expense",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := parseAmount("value", value)
			if err != nil {
				return err
			}
			acquiredOn, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			a := &types.Asset{Name: name, Type: typ, AcquiredOn: acquiredOn, AcquisitionValue: amount}
			id, err := backend.AcquireAsset(a)
			if err != nil {
				return fmt.Errorf("asset acquire: %w", err)
			}
			if flags.jsonMode {
				return writeJSON(cmd, a)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "acquired %s (%s) for %s, asset %s\n",
				a.Name, a.Type, a.AcquisitionValue.StringFixed(2), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "asset name")
	cmd.Flags().StringVar(&typ, "type", "", "asset type (e.g. tractor)")
	cmd.Flags().StringVar(&value, "value", "", "acquisition value")
	cmd.Flags().StringVar(&date, "date", "", "acquisition date YYYY-MM-DD (default today)")
	return cmd
}

func newAssetMaintainCmd() *cobra.Command {
	var description, cost, date string
	cmd := &cobra.Command{
		Use:   "maintain <asset-id>",
		Short: "Record maintenance, its cost, and put the asset in maintenance",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			amount, err := parseAmount("cost", cost)
			if err != nil {
				return err
			}
			on, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			rec := &types.MaintenanceRecord{AssetID: a[0], Date: on, Description: description, Cost: amount}
			id, err := backend.RegisterMaintenance(rec)
			if err != nil {
				return fmt.Errorf("asset maintain: %w", err)
			}
			if flags.jsonMode {
				return writeJSON(cmd, rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "maintenance %s recorded for asset %s: %s\n",
				id, rec.AssetID, rec.Cost.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "what was done")
	cmd.Flags().StringVar(&cost, "cost", "", "maintenance cost")
	cmd.Flags().StringVar(&date, "date", "", "maintenance date YYYY-MM-DD (default today)")
	return cmd
}

func newAssetSellCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "sell <asset-id> <value>",
		Short: "Record the sale income and remove the asset",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			value, err := parseAmount("value", a[1])
			if err != nil {
				return err
			}
			soldOn, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			t, err := backend.SellAsset(a[0], value, soldOn)
			if err != nil {
				return fmt.Errorf("asset sell: %w", err)
			}
			return printTransaction(cmd, "sold", t)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "sale date YYYY-MM-DD (default today)")
	return cmd
}

func newSeasonCmd() *cobra.Command {
	season := &cobra.Command{
		Use:   "season",
		Short: "Crop season operations",
	}

	var date string
	harvest := &cobra.Command{
		Use:   "harvest <season-id> <total-yield-kg>",
		Short: "Close an active season with its total yield",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			kg, err := strconv.ParseFloat(a[1], 64)
			if err != nil {
				return usagef("invalid yield %q: %v", a[1], err)
			}
			on, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			s, err := backend.HarvestSeason(a[0], kg, on)
			if err != nil {
				return fmt.Errorf("season harvest: %w", err)
			}
			if flags.jsonMode {
				return writeJSON(cmd, s)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "harvested %s %d: %s sacks\n",
				s.Crop, s.StartYear, formatFloat(s.YieldSacks()))
			return nil
		},
	}
	harvest.Flags().StringVar(&date, "date", "", "harvest date YYYY-MM-DD (default today)")

	season.AddCommand(harvest)
	return season
}

func newLedgerCmd() *cobra.Command {
	ledger := &cobra.Command{
		Use:   "ledger",
		Short: "General ledger corrections",
	}

	var date string
	reverse := &cobra.Command{
		Use:   "reverse <transaction-id>",
		Short: "Append the negation of a transaction",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			var on types.Date
			if date != "" {
				d, err := parseDateFlag(date)
				if err != nil {
					return err
				}
				on = d
			}
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			t, err := backend.ReverseTransaction(a[0], on)
			if err != nil {
				return fmt.Errorf("ledger reverse: %w", err)
			}
			return printTransaction(cmd, "reversed", t)
		},
	}
	reverse.Flags().StringVar(&date, "date", "", "reversal date YYYY-MM-DD (default: original date)")

	ledger.AddCommand(reverse)
	return ledger
}
