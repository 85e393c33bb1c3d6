package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/polyquery/internal/queryir"
	"github.com/roach88/polyquery/internal/querysql"
	"github.com/roach88/polyquery/internal/schema"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Lenient bool
	flags   criteriaFlags
}

// ExplainResult is the JSON payload of the explain command.
type ExplainResult struct {
	Query    string   `json:"query"`
	Mode     string   `json:"mode"`
	SQL      string   `json:"sql,omitempty"`
	Args     []any    `json:"args"`
	Portable bool     `json:"portable"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <query>",
		Short: "Show the SQL a named query compiles to",
		Long: `Compile a named query without running it.

Prints the parameterized SQL, its arguments and the validation findings:
non-portable features as warnings, unreachable or unknown references as
errors. No database is opened.

Exit codes:
  0 - Query compiled
  1 - Query rejected (unreachable reference in strict mode)
  2 - Command error (unknown query, bad criteria)

Examples:
  polyquery explain code-or-nid-naive --national-id T1111111A
  polyquery explain code-or-nid --code caseid-1 --national-id T2222222B --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	opts.flags.bind(cmd)
	cmd.Flags().BoolVar(&opts.Lenient, "lenient", false, "render unreachable references as false instead of failing")

	return cmd
}

func runExplain(opts *ExplainOptions, name string, cmd *cobra.Command) error {
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}
	op, criteria, err := opts.flags.lookupQuery(cmd, name)
	if err != nil {
		return err
	}
	mode := cfg.QueryMode()
	if opts.Lenient {
		mode = querysql.ModeLenient
	}

	cat := schema.Default()
	q := op.Build(criteria)
	validation := queryir.Validate(cat, q)

	result := ExplainResult{
		Query:    op.Name,
		Mode:     mode.String(),
		Args:     []any{},
		Portable: validation.IsPortable,
		Warnings: validation.Warnings,
		Errors:   make([]string, 0, len(validation.Errors)),
	}
	for _, e := range validation.Errors {
		result.Errors = append(result.Errors, e.Error())
	}

	compiler := querysql.NewSQLCompiler(cat).WithMode(mode)
	compiler.Logger = opts.Logger
	sql, args, compileErr := compiler.Compile(q)
	if compileErr == nil {
		result.SQL = sql
		if args != nil {
			result.Args = args
		}
	}

	failed := compileErr != nil
	if err := opts.formatter(cmd).Render(result, failed, func(w io.Writer) {
		writeExplain(w, result, compileErr)
	}); err != nil {
		return err
	}
	if failed {
		return WrapExitError(ExitFailure, "query rejected", compileErr)
	}
	return nil
}

func writeExplain(w io.Writer, r ExplainResult, compileErr error) {
	fmt.Fprintf(w, "query: %s (%s)\n", r.Query, r.Mode)
	if compileErr != nil {
		fmt.Fprintf(w, "error: %v\n", compileErr)
	} else {
		fmt.Fprintf(w, "sql:   %s\n", r.SQL)
		fmt.Fprintf(w, "args:  %v\n", r.Args)
	}
	fmt.Fprintf(w, "portable: %t\n", r.Portable)
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
}
