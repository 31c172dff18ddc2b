package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/harvest/internal/farm"
	"github.com/mesh-intelligence/harvest/internal/report"
)

func newExportCmd() *cobra.Command {
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the farm as JSONL files or an XLSX workbook",
	}

	jsonl := &cobra.Command{
		Use:   "jsonl <dir>",
		Short: "Write one <table>.jsonl file per table into dir",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			counts, err := backend.ExportJSONL(a[0])
			if err != nil {
				return fmt.Errorf("export jsonl: %w", err)
			}
			return printCounts(cmd, "exported", counts)
		},
	}

	xlsx := &cobra.Command{
		Use:   "xlsx <file>",
		Short: "Write ledger, accounts, cash flow and production sheets",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			wb, err := farm.LoadWorkbook(backend)
			if err != nil {
				return fmt.Errorf("export xlsx: %w", err)
			}
			if err := writeWorkbookFile(a[0], wb); err != nil {
				return fmt.Errorf("export xlsx: %w", err)
			}
			if flags.jsonMode {
				return writeJSON(cmd, map[string]string{"file": a[0]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", a[0])
			return nil
		},
	}

	export.AddCommand(jsonl, xlsx)
	return export
}

func newImportCmd() *cobra.Command {
	imp := &cobra.Command{
		Use:   "import",
		Short: "Load a JSONL export into an empty farm",
	}
	imp.AddCommand(&cobra.Command{
		Use:   "jsonl <dir>",
		Short: "Load <table>.jsonl files from dir",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			backend, err := attachBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			counts, err := backend.ImportJSONL(a[0])
			if err != nil {
				return fmt.Errorf("import jsonl: %w", err)
			}
			return printCounts(cmd, "imported", counts)
		},
	})
	return imp
}

// writeWorkbookFile writes wb to path through a temp file and rename.
func writeWorkbookFile(path string, wb report.Workbook) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".xlsx-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := report.WriteWorkbook(tmp, wb); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func printCounts(cmd *cobra.Command, verb string, counts map[string]int) error {
	if flags.jsonMode {
		return writeJSON(cmd, counts)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d rows across %d tables\n", verb, total, len(counts))
	return nil
}
