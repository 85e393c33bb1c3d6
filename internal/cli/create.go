package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/polyquery/internal/fixtures"
	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/store"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Code       string
	Validation string
	BirthType  string
	NationalID string
	Age        int64
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <live|adopt>",
		Short: "Save one case",
		Long: `Save one case with a live-birth or adoptive child.

The case, child and variant rows share one id and are written in a single
transaction. A time-ordered code is generated when --code is omitted.

Examples:
  polyquery create live --national-id T1111111A --age 11 --birth-type N
  polyquery create adopt --code caseid-2 --national-id T2222222B --age 22`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     []string{"live", "adopt"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Code, "code", "", "case code (default: generated)")
	cmd.Flags().StringVar(&opts.Validation, "validation", "", "validation code")
	cmd.Flags().StringVar(&opts.BirthType, "birth-type", "", "birth type (S|N|A|P or description)")
	cmd.Flags().StringVar(&opts.NationalID, "national-id", "", "child national id (required)")
	cmd.Flags().Int64Var(&opts.Age, "age", 0, "child age")
	_ = cmd.MarkFlagRequired("national-id")

	return cmd
}

func runCreate(opts *CreateOptions, kind string, cmd *cobra.Command) error {
	spec := fixtures.CaseSpec{
		Code:       opts.Code,
		Validation: opts.Validation,
		BirthType:  opts.BirthType,
	}
	variant := &fixtures.VariantSpec{NationalID: opts.NationalID, Age: opts.Age}
	switch kind {
	case "live":
		spec.LiveBirth = variant
	case "adopt":
		spec.Adoptive = variant
	default:
		return NewExitError(ExitCommandError, "child kind must be live or adopt, got "+kind)
	}

	c, err := spec.ToCase(fixtures.UUIDCodes{})
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid case", err)
	}

	ctx := cmd.Context()
	st, err := opts.openStore(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer opts.closeStore(st)

	if err := st.SaveCase(ctx, c); err != nil {
		if errors.Is(err, ir.ErrInvalidChild) || errors.Is(err, store.ErrAlreadySaved) {
			return WrapExitError(ExitCommandError, "invalid case", err)
		}
		return WrapExitError(ExitFailure, "failed to save case", err)
	}
	opts.Logger.Info("case created", "id", c.ID, "code", c.Code, "variant", c.Child.Variant())

	return opts.formatter(cmd).Render(c, false, func(w io.Writer) {
		writeCases(w, []ir.Case{*c})
	})
}
