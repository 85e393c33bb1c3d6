package resolver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/polyquery/internal/queryir"
)

// ErrUnknownOp is returned by Build for names missing from the registry.
var ErrUnknownOp = errors.New("unknown query")

// Op is a named query builder used by the CLI and scenario runner.
type Op struct {
	Name        string
	Description string

	// Uses lists the criteria the op reads; other criteria are ignored.
	Uses []string

	Build func(Criteria) queryir.Select
}

// Criteria names, as used in Op.Uses and on the command line.
const (
	CritCode       = "code"
	CritValidation = "validation"
	CritNationalID = "national-id"
	CritBirthType  = "birth-type"
	CritAge        = "age"
)

var registry = map[string]Op{}

func register(op Op) {
	if _, dup := registry[op.Name]; dup {
		panic(fmt.Sprintf("resolver: duplicate op %q", op.Name))
	}
	registry[op.Name] = op
}

func init() {
	register(Op{
		Name:        "code-or-validation",
		Description: "case code OR validation code",
		Uses:        []string{CritCode, CritValidation},
		Build: func(c Criteria) queryir.Select {
			return CaseQuery(ByCaseCodeOrValidation(c.Code, c.Validation))
		},
	})
	register(Op{
		Name:        "code-or-birth-type",
		Description: "case code OR child birth type",
		Uses:        []string{CritCode, CritBirthType},
		Build: func(c Criteria) queryir.Select {
			return CaseQuery(ByCaseCodeOrBirthType(c.Code, c.BirthType))
		},
	})
	register(Op{
		Name:        "code-and-birth-type",
		Description: "case code AND child birth type",
		Uses:        []string{CritCode, CritBirthType},
		Build: func(c Criteria) queryir.Select {
			return CaseQuery(ByCaseCodeAndBirthTypePairs(CodeBirthType{Code: c.Code, BirthType: c.BirthType}))
		},
	})
	register(Op{
		Name:        "code-or-nid-naive",
		Description: "case code OR child.national_id through the abstract child (unreachable)",
		Uses:        []string{CritCode, CritNationalID},
		Build: func(c Criteria) queryir.Select {
			return CaseQuery(ByCaseCodeOrChildNationalIDNaive(c.Code, c.NationalID))
		},
	})
	register(Op{
		Name:        "code-or-nid",
		Description: "case code OR child id in per-variant national id sub-selects",
		Uses:        []string{CritCode, CritNationalID},
		Build: func(c Criteria) queryir.Select {
			return CaseQuery(ByCaseCodeOrChildNationalID(c.Code, c.NationalID))
		},
	})
	register(Op{
		Name:        "code-or-nid-joined",
		Description: "case code OR variant national id, with both variants left-joined",
		Uses:        []string{CritCode, CritNationalID},
		Build: func(c Criteria) queryir.Select {
			return ExplicitJoinQuery(ByCaseCodeOrVariantNationalID(c.Code, c.NationalID))
		},
	})
	register(Op{
		Name:        "live-nid",
		Description: "live-birth cases by national id",
		Uses:        []string{CritNationalID},
		Build:       func(c Criteria) queryir.Select { return ByLiveBirthNationalID(c.NationalID) },
	})
	register(Op{
		Name:        "adopt-nid",
		Description: "adoptive cases by national id",
		Uses:        []string{CritNationalID},
		Build:       func(c Criteria) queryir.Select { return ByAdoptiveNationalID(c.NationalID) },
	})
	register(Op{
		Name:        "live-age",
		Description: "live-birth cases by age at reporting",
		Uses:        []string{CritAge},
		Build:       func(c Criteria) queryir.Select { return ByLiveBirthAge(c.Age) },
	})
	register(Op{
		Name:        "adopt-age",
		Description: "adoptive cases by age at adoption",
		Uses:        []string{CritAge},
		Build:       func(c Criteria) queryir.Select { return ByAdoptiveAge(c.Age) },
	})
}

// Lookup returns the named op.
func Lookup(name string) (Op, bool) {
	op, ok := registry[name]
	return op, ok
}

// Names returns the registered op names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build normalizes c and builds the named query.
func Build(name string, c Criteria) (queryir.Select, error) {
	op, ok := registry[name]
	if !ok {
		return queryir.Select{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownOp, name, Names())
	}
	return op.Build(c.Normalize()), nil
}
