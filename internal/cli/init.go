package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/harvest/internal/paths"
	"github.com/mesh-intelligence/harvest/internal/sqlite"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and an empty farm database",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, err := paths.ResolveConfigDir(flags.configDir)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}

			backend, err := attachBackend()
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			defer backend.Detach()

			if flags.jsonMode {
				return writeJSON(cmd, map[string]string{
					"config_dir": configDir,
					"data_dir":   backend.DataDir(),
					"database":   sqlite.DBFileName,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "harvest initialized")
			fmt.Fprintln(out, "  config:", configDir)
			fmt.Fprintln(out, "  data:  ", backend.DataDir())
			return nil
		},
	}
}
