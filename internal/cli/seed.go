package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/polyquery/internal/fixtures"
	"github.com/roach88/polyquery/internal/ir"
)

// SeedResult is the JSON payload of the seed command.
type SeedResult struct {
	Seeded int      `json:"seeded"`
	Codes  []string `json:"codes"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [fixture-file...]",
		Short: "Save cases from fixture files",
		Long: `Save the cases described by YAML or CUE fixture files.

CUE fixtures are validated against the embedded case schema before any
case is saved. With no files, the two canonical cases are saved:
caseid-1 (live birth, T1111111A) and caseid-2 (adoptive, T2222222B).

Examples:
  polyquery seed
  polyquery seed ./fixtures/cases.cue ./fixtures/more.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args, cmd)
		},
	}
}

func runSeed(opts *RootOptions, files []string, cmd *cobra.Command) error {
	if _, err := opts.resolve(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	// Load every file before touching the database.
	cases := fixtures.Defaults()
	if len(files) > 0 {
		cases = nil
		for _, path := range files {
			f, err := fixtures.LoadFile(path)
			if err != nil {
				details := map[string]string{"file": path}
				var loadErr *fixtures.LoadError
				if errors.As(err, &loadErr) {
					details["cause"] = loadErr.Code
				}
				_ = formatter.Error(ErrCodeFixture, err.Error(), details)
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", path), err)
			}
			fileCases, err := f.ToCases(fixtures.UUIDCodes{})
			if err != nil {
				_ = formatter.Error(ErrCodeFixture, err.Error(), map[string]string{"file": path})
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid fixture %s", path), err)
			}
			formatter.VerboseLog("loaded %d case(s) from %s", len(fileCases), path)
			cases = append(cases, fileCases...)
		}
	}

	ctx := cmd.Context()
	st, err := opts.openStore(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	n, err := fixtures.Seed(ctx, st, cases)
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("seeded %d of %d case(s)", n, len(cases)), err)
	}
	opts.Logger.Info("cases seeded", "count", n)

	result := SeedResult{Seeded: n, Codes: caseCodes(cases)}
	return formatter.Render(result, false, func(w io.Writer) {
		fmt.Fprintf(w, "seeded %d case(s)\n", result.Seeded)
		for _, code := range result.Codes {
			fmt.Fprintf(w, "  %s\n", code)
		}
	})
}

func caseCodes(cases []*ir.Case) []string {
	codes := make([]string, len(cases))
	for i, c := range cases {
		codes[i] = c.Code
	}
	return codes
}
