// Package cli implements the harvest command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/harvest/internal/instance"
	"github.com/mesh-intelligence/harvest/internal/logging"
	"github.com/mesh-intelligence/harvest/internal/paths"
	"github.com/mesh-intelligence/harvest/pkg/types"
)

// Version is the harvest release, overridden at build time with -ldflags.
var Version = "0.1.0"

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

var flags rootFlags

// session is what PersistentPreRunE sets up for the running command.
var session struct {
	settings settings
	log      *zap.Logger
	lock     *instance.Lock
}

// NewRootCmd creates the top-level "harvest" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}

	root := &cobra.Command{
		Use:     "harvest",
		Short:   "Farm records: staff, plots, seasons, stock, assets and money",
		Long:    "harvest keeps a farm's employees, plots, crop seasons, inventory, fixed assets,\naccounts payable/receivable and general ledger in one local SQLite file.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newGetCmd())
	root.AddCommand(newSetCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newStockCmd())
	root.AddCommand(newAccountCmd())
	root.AddCommand(newAssetCmd())
	root.AddCommand(newSeasonCmd())
	root.AddCommand(newLedgerCmd())
	root.AddCommand(newDashboardCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	os.Exit(run(root, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes root with args and returns the process exit code. Errors are
// printed to stderr.
func run(root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	teardown()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "harvest:", err)
	return exitCode(err)
}

// setup loads config, builds the logger and takes the instance lock.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	s, err := loadSettings(configDir)
	if err != nil {
		return err
	}
	if flags.logLevel != "" {
		s.LogLevel = flags.logLevel
	}
	session.settings = s

	log, err := logging.New(s.LogLevel, s.LogFormat)
	if err != nil {
		return usageError{err}
	}
	session.log = log

	lock, err := instance.Acquire(s.LockPort)
	if err != nil {
		return err
	}
	session.lock = lock
	log.Debug("session started",
		zap.String("command", cmd.CommandPath()),
		zap.String("config_dir", configDir),
		zap.Int("lock_port", s.LockPort),
		zap.Bool("lock_held", lock.Held()),
	)
	return nil
}

// teardown releases what setup acquired.
func teardown() {
	if session.lock != nil {
		session.lock.Close()
		session.lock = nil
	}
	if session.log != nil {
		session.log.Sync()
		session.log = nil
	}
}

// logger returns the session logger, or a no-op logger before setup.
func logger() *zap.Logger {
	if session.log == nil {
		return zap.NewNop()
	}
	return session.log
}

// usageError marks malformed invocations: bad flags, arguments or payloads.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usagef returns a usageError with a formatted message.
func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

// args wraps a cobra positional-argument validator so its failures count as
// usage errors.
func args(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := v(cmd, a); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// userErrors are the sentinel errors caused by the caller rather than the
// system.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrInvalidFilter,
	types.ErrMissingField,
	types.ErrInvalidName,
	types.ErrDuplicateName,
	types.ErrInvalidAmount,
	types.ErrInvalidQuantity,
	types.ErrInvalidArea,
	types.ErrInvalidDate,
	types.ErrInvalidKind,
	types.ErrInvalidStatus,
	types.ErrInvalidTransition,
	types.ErrInUse,
	types.ErrAccountSettled,
	types.ErrAppendOnly,
	types.ErrAlreadyReversed,
	types.ErrTableNotFound,
	types.ErrFarmNotEmpty,
	instance.ErrAlreadyRunning,
}

// exitCode maps an error to exitUserError or exitSysError.
func exitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		return exitUserError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}
