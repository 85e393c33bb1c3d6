package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/queryir"
	"github.com/roach88/polyquery/internal/querysql"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Lenient bool
	flags   criteriaFlags
}

// SearchResult is the JSON payload of the search command.
type SearchResult struct {
	Query string    `json:"query"`
	Mode  string    `json:"mode"`
	Count int       `json:"count"`
	Cases []ir.Case `json:"cases"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a named query",
		Long: `Run a named query against the stored cases.

Only criteria given as flags add clauses; a query with no criteria
matches every case it can reach. In strict mode (the default) a query
that reads a child attribute declared only by variants it has not joined
fails instead of silently matching nothing. --lenient renders such
references as a false clause and logs a warning.

Run 'polyquery queries' to list the named queries.

Examples:
  polyquery search code-or-nid --code caseid-1 --national-id T2222222B
  polyquery search code-or-nid-naive --national-id T1111111A --lenient
  polyquery search adopt-age --age 22 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args[0], cmd)
		},
	}

	opts.flags.bind(cmd)
	cmd.Flags().BoolVar(&opts.Lenient, "lenient", false, "render unreachable references as false instead of failing")

	return cmd
}

func runSearch(opts *SearchOptions, name string, cmd *cobra.Command) error {
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

	ctx := cmd.Context()
	st, err := opts.openStore(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	cases, err := st.Search(ctx, op.Build(criteria), mode)
	if err != nil {
		formatter := opts.formatter(cmd)
		var unreachable *queryir.UnreachableError
		if errors.As(err, &unreachable) {
			_ = formatter.Error(ErrCodeUnreachable, err.Error(), map[string]any{
				"ref":     unreachable.Ref,
				"missing": unreachable.Missing,
			})
			return WrapExitError(ExitFailure, "query rejected", err)
		}
		_ = formatter.Error(ErrCodeQuery, err.Error(), nil)
		return WrapExitError(ExitFailure, "search failed", err)
	}

	result := SearchResult{
		Query: op.Name,
		Mode:  mode.String(),
		Count: len(cases),
		Cases: cases,
	}
	return opts.formatter(cmd).Render(result, false, func(w io.Writer) {
		writeCases(w, cases)
		fmt.Fprintf(w, "%d case(s)\n", len(cases))
		if criteria.IsEmpty() {
			fmt.Fprintln(w, "no criteria given: every case the query reaches was returned")
		}
	})
}

// writeCases prints one aligned row per case.
func writeCases(w io.Writer, cases []ir.Case) {
	if len(cases) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tVALIDATION\tVARIANT\tBIRTH TYPE\tNATIONAL ID\tAGE")
	for _, c := range cases {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			c.ID, c.Code, c.ValidationCode, c.Child.Variant(), birthTypeCell(c.Child.BirthType),
			c.Child.NationalID(), childAge(c.Child))
	}
	_ = tw.Flush()
}

func birthTypeCell(bt ir.BirthType) string {
	if bt == "" {
		return "-"
	}
	return string(bt)
}

func childAge(c ir.ChildRecord) int64 {
	switch c.Variant() {
	case ir.VariantLiveBirth:
		return c.LiveBirth.Age
	case ir.VariantAdoptive:
		return c.Adoptive.Age
	default:
		return 0
	}
}
