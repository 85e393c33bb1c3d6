// Package fixtures loads seed cases from YAML or CUE files.
//
// YAML files are decoded strictly (unknown fields are errors). CUE files are
// unified with an embedded schema that requires exactly one variant per case.
// Both formats share one document shape:
//
//	cases:
//	  - code: caseid-1
//	    validation: LIVE
//	    birth_type: N
//	    live_birth: {national_id: T1111111A, age: 11}
//
// Cases without a code get one from a CodeGenerator.
package fixtures

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/polyquery/internal/ir"
)

// File is the document shape of a fixture file.
type File struct {
	Cases []CaseSpec `yaml:"cases" json:"cases"`
}

// CaseSpec describes one case in a fixture file.
type CaseSpec struct {
	Code       string       `yaml:"code,omitempty" json:"code,omitempty"`
	Validation string       `yaml:"validation,omitempty" json:"validation,omitempty"`
	BirthType  string       `yaml:"birth_type,omitempty" json:"birth_type,omitempty"`
	LiveBirth  *VariantSpec `yaml:"live_birth,omitempty" json:"live_birth,omitempty"`
	Adoptive   *VariantSpec `yaml:"adoptive,omitempty" json:"adoptive,omitempty"`
}

// VariantSpec holds the variant attributes of a case.
type VariantSpec struct {
	NationalID string `yaml:"national_id" json:"national_id"`
	Age        int64  `yaml:"age" json:"age"`
}

// CodeGenerator produces case codes for fixtures that omit them.
type CodeGenerator interface {
	Generate() string
}

// UUIDCodes generates codes of the form CASE-<uuid v7>.
type UUIDCodes struct{}

// Generate returns a new time-ordered case code.
func (UUIDCodes) Generate() string {
	return "CASE-" + uuid.Must(uuid.NewV7()).String()
}

// Saver persists a case. *store.Store implements it.
type Saver interface {
	SaveCase(ctx context.Context, c *ir.Case) error
}

// ToCase converts s to an unsaved case. The birth type may be given
// as a code ("N") or a description ("Normal Birth").
func (s CaseSpec) ToCase(gen CodeGenerator) (*ir.Case, error) {
	code := s.Code
	if code == "" {
		if gen == nil {
			gen = UUIDCodes{}
		}
		code = gen.Generate()
	}

	var bt ir.BirthType
	if s.BirthType != "" {
		parsed, err := ir.ParseBirthType(s.BirthType)
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", code, err)
		}
		bt = parsed
	}

	var c *ir.Case
	switch {
	case s.LiveBirth != nil && s.Adoptive != nil:
		return nil, fmt.Errorf("case %q: %w: both live_birth and adoptive given", code, ir.ErrInvalidChild)
	case s.LiveBirth != nil:
		c = ir.NewLiveBirthCase(code, s.Validation, bt, s.LiveBirth.NationalID, s.LiveBirth.Age)
	case s.Adoptive != nil:
		c = ir.NewAdoptiveCase(code, s.Validation, bt, s.Adoptive.NationalID, s.Adoptive.Age)
	default:
		return nil, fmt.Errorf("case %q: %w: one of live_birth or adoptive is required", code, ir.ErrInvalidChild)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("case %q: %w", code, err)
	}
	return c, nil
}

// ToCases converts every spec in f, stopping at the first invalid one.
func (f File) ToCases(gen CodeGenerator) ([]*ir.Case, error) {
	cases := make([]*ir.Case, 0, len(f.Cases))
	for i, spec := range f.Cases {
		c, err := spec.ToCase(gen)
		if err != nil {
			return nil, fmt.Errorf("cases[%d]: %w", i, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// Defaults returns the two canonical cases: caseid-1 with a live-birth child
// (T1111111A, age 11) and caseid-2 with an adoptive child (T2222222B, age 22).
func Defaults() []*ir.Case {
	return []*ir.Case{
		ir.NewLiveBirthCase("caseid-1", "LIVE", ir.BirthNormal, "T1111111A", 11),
		ir.NewAdoptiveCase("caseid-2", "ADOPT", ir.BirthAdoptive, "T2222222B", 22),
	}
}

// Seed saves cases in order and returns how many were saved before the
// first failure.
func Seed(ctx context.Context, s Saver, cases []*ir.Case) (int, error) {
	for i, c := range cases {
		if err := s.SaveCase(ctx, c); err != nil {
			return i, fmt.Errorf("seed: %w", err)
		}
	}
	return len(cases), nil
}
