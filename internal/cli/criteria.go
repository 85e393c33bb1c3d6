package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/resolver"
)

// criteriaFlags binds resolver criteria to command flags. A criterion is
// present only when its flag was set; an empty value still counts as absent
// after normalization.
type criteriaFlags struct {
	code       string
	validation string
	nationalID string
	birthType  string
	age        int64
}

func (f *criteriaFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.code, resolver.CritCode, "", "case code")
	cmd.Flags().StringVar(&f.validation, resolver.CritValidation, "", "validation code")
	cmd.Flags().StringVar(&f.nationalID, resolver.CritNationalID, "", "child national id")
	cmd.Flags().StringVar(&f.birthType, resolver.CritBirthType, "", "birth type (S|N|A|P)")
	cmd.Flags().Int64Var(&f.age, resolver.CritAge, 0, "child age")
}

// criteria collects the flags that were set on cmd.
func (f *criteriaFlags) criteria(cmd *cobra.Command) (resolver.Criteria, error) {
	var c resolver.Criteria
	changed := cmd.Flags().Changed

	if changed(resolver.CritCode) {
		c.Code = &f.code
	}
	if changed(resolver.CritValidation) {
		c.Validation = &f.validation
	}
	if changed(resolver.CritNationalID) {
		c.NationalID = &f.nationalID
	}
	if changed(resolver.CritBirthType) && f.birthType != "" {
		bt, err := ir.ParseBirthType(f.birthType)
		if err != nil {
			return resolver.Criteria{}, err
		}
		c.BirthType = &bt
	}
	if changed(resolver.CritAge) {
		c.Age = &f.age
	}
	return c.Normalize(), nil
}

// lookupQuery resolves the named op and the criteria flags.
func (f *criteriaFlags) lookupQuery(cmd *cobra.Command, name string) (resolver.Op, resolver.Criteria, error) {
	op, ok := resolver.Lookup(name)
	if !ok {
		return resolver.Op{}, resolver.Criteria{}, NewExitError(ExitCommandError,
			fmt.Sprintf("unknown query %q (run 'polyquery queries' to list them)", name))
	}
	c, err := f.criteria(cmd)
	if err != nil {
		return resolver.Op{}, resolver.Criteria{}, WrapExitError(ExitCommandError, "invalid criteria", err)
	}
	return op, c, nil
}
