package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// MigrateResult is the JSON payload of the migrate command.
type MigrateResult struct {
	Driver  string `json:"driver"`
	Version int64  `json:"version"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the embedded schema migrations to the configured database.

Every other command migrates on open; migrate reports the resulting
version and is safe to run repeatedly.

Examples:
  polyquery migrate --db ./polyquery.db
  polyquery migrate --driver mysql --db "user:pass@tcp(localhost:3306)/cases"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	st, err := opts.openStore(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	if err := st.Migrate(ctx); err != nil {
		return opts.fail(cmd, ErrCodeStore, ExitCommandError, "migration failed", err)
	}
	version, err := st.MigrationVersion(ctx)
	if err != nil {
		return opts.fail(cmd, ErrCodeStore, ExitCommandError, "failed to read migration version", err)
	}

	result := MigrateResult{Driver: st.Driver(), Version: version}
	return opts.formatter(cmd).Render(result, false, func(w io.Writer) {
		fmt.Fprintf(w, "migrated %s database to version %d\n", result.Driver, result.Version)
	})
}
