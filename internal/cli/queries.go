package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/polyquery/internal/resolver"
)

// QueryInfo describes one named query.
type QueryInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Criteria    []string `json:"criteria"`
}

// NewQueriesCommand creates the queries command.
func NewQueriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "queries",
		Short:         "List the named queries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := rootOpts.resolve(cmd); err != nil {
				return err
			}
			infos := listQueries()
			return rootOpts.formatter(cmd).Render(infos, false, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tCRITERIA\tDESCRIPTION")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, strings.Join(info.Criteria, ","), info.Description)
				}
				_ = tw.Flush()
			})
		},
	}
}

func listQueries() []QueryInfo {
	names := resolver.Names()
	infos := make([]QueryInfo, 0, len(names))
	for _, name := range names {
		op, _ := resolver.Lookup(name)
		infos = append(infos, QueryInfo{
			Name:        op.Name,
			Description: op.Description,
			Criteria:    op.Uses,
		})
	}
	return infos
}
