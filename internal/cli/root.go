package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/polyquery/internal/config"
	"github.com/roach88/polyquery/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Database   string // overrides the configured database when set
	Driver     string // overrides the configured driver when set
	Verbose    bool
	Format     string // "json" | "text"

	// Config is resolved in PersistentPreRunE. Commands built without the
	// root command resolve it on first use.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the polyquery CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "polyquery",
		Short: "polyquery - polymorphic case queries",
		Long: `Store cases with a polymorphic child record and search them with
filters that never silently drop a variant.

Configuration is read from polyquery.yaml, POLYQUERY_* environment
variables and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return opts.fail(cmd, ErrCodeConfig, ExitCommandError, "invalid configuration", err)
			}
			opts.Config = cfg
			opts.Format = cfg.Format
			opts.Verbose = cfg.Verbose
			opts.Logger = newLogger(cmd, cfg.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./polyquery.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "sqlite3 path or mysql DSN")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|mysql)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewQueriesCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

// newLogger writes structured logs to the command's stderr.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// resolve returns the effective configuration, loading it when the command
// was executed without the root command's PersistentPreRunE.
func (o *RootOptions) resolve(cmd *cobra.Command) (*config.Config, error) {
	if o.Config != nil {
		return o.Config, nil
	}
	cfg, err := config.Load(o.ConfigFile, nil)
	if err != nil {
		return nil, o.fail(cmd, ErrCodeConfig, ExitCommandError, "invalid configuration", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Driver != "" {
		cfg.Driver = o.Driver
	}
	if o.Format != "" {
		if !isValidFormat(o.Format) {
			return nil, o.fail(cmd, ErrCodeConfig, ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats), nil)
		}
		cfg.Format = o.Format
	}
	cfg.Verbose = cfg.Verbose || o.Verbose
	if err := cfg.Validate(); err != nil {
		return nil, o.fail(cmd, ErrCodeConfig, ExitCommandError, "invalid configuration", err)
	}

	o.Config = cfg
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose
	if o.Logger == nil {
		o.Logger = newLogger(cmd, cfg.Verbose)
	}
	return cfg, nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openStore opens the configured store and applies migrations.
func (o *RootOptions) openStore(ctx context.Context, cmd *cobra.Command, skipMigrations bool) (*store.Store, error) {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return nil, err
	}
	sc := cfg.StoreConfig(o.Logger)
	sc.SkipMigrations = skipMigrations

	o.Logger.Debug("opening database", "driver", cfg.Driver, "database", cfg.Database)
	st, err := store.Open(ctx, sc)
	if err != nil {
		return nil, o.fail(cmd, ErrCodeStore, ExitCommandError, fmt.Sprintf("failed to open %s database", cfg.Driver), err)
	}
	return st, nil
}

// fail reports a command error through the formatter under code and
// returns it as an ExitError. err may be nil.
func (o *RootOptions) fail(cmd *cobra.Command, code string, exitCode int, message string, err error) error {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %v", message, err)
	}
	_ = o.formatter(cmd).Error(code, msg, nil)
	if err == nil {
		return NewExitError(exitCode, message)
	}
	return WrapExitError(exitCode, message, err)
}

// closeStore closes st, logging rather than returning the error.
func (o *RootOptions) closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		o.Logger.Error("error closing database", "error", err)
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
