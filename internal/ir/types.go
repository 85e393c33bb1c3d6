package ir

import (
	"errors"
	"fmt"
)

// ErrInvalidChild is returned when a ChildRecord does not carry exactly one
// valid variant.
var ErrInvalidChild = errors.New("invalid child record")

// Variant identifies which concrete child table holds a record's attributes.
type Variant string

const (
	// VariantNone marks a child record with no variant set (invalid once persisted).
	VariantNone Variant = ""

	// VariantLiveBirth is stored in child_info_live_birth.
	VariantLiveBirth Variant = "LIVE_BIRTH"

	// VariantAdoptive is stored in child_info_adoptive.
	VariantAdoptive Variant = "ADOPTIVE"
)

// Case is the root entity. It owns its ChildRecord.
type Case struct {
	ID             int64       `json:"id"`              // Server-generated, 0 until saved
	Code           string      `json:"case_code"`       // Unique business key
	ValidationCode string      `json:"validation_code"` // Free text
	Child          ChildRecord `json:"child"`
}

// ChildRecord is the abstract child entity, modeled as a tagged union.
//
// CaseID is the shared key: the child row uses its owning case's id as its
// own primary key. Exactly one of LiveBirth and Adoptive must be non-nil.
type ChildRecord struct {
	CaseID    int64      `json:"case_id"`
	BirthType BirthType  `json:"birth_type,omitempty"`
	LiveBirth *LiveBirth `json:"live_birth,omitempty"`
	Adoptive  *Adoptive  `json:"adoptive,omitempty"`
}

// LiveBirth holds the attributes stored in the live-birth variant table.
type LiveBirth struct {
	NationalID string `json:"national_id"`
	Age        int64  `json:"live_age"` // Age at reporting
}

// Adoptive holds the attributes stored in the adoptive variant table.
type Adoptive struct {
	NationalID string `json:"national_id"`
	Age        int64  `json:"adopt_age"` // Age at adoption
}

// Variant reports which variant is set. Callers must not infer it from BirthType.
func (c ChildRecord) Variant() Variant {
	switch {
	case c.LiveBirth != nil && c.Adoptive == nil:
		return VariantLiveBirth
	case c.Adoptive != nil && c.LiveBirth == nil:
		return VariantAdoptive
	default:
		return VariantNone
	}
}

// NationalID returns the national identifier of whichever variant is set.
func (c ChildRecord) NationalID() string {
	switch c.Variant() {
	case VariantLiveBirth:
		return c.LiveBirth.NationalID
	case VariantAdoptive:
		return c.Adoptive.NationalID
	default:
		return ""
	}
}

// Validate checks the tagged-union invariant, the variant age and the birth type code.
func (c ChildRecord) Validate() error {
	if c.LiveBirth != nil && c.Adoptive != nil {
		return fmt.Errorf("%w: both live birth and adoptive variants set", ErrInvalidChild)
	}
	if c.LiveBirth == nil && c.Adoptive == nil {
		return fmt.Errorf("%w: no variant set", ErrInvalidChild)
	}
	if c.LiveBirth != nil && c.LiveBirth.Age < 0 {
		return fmt.Errorf("%w: negative live birth age %d", ErrInvalidChild, c.LiveBirth.Age)
	}
	if c.Adoptive != nil && c.Adoptive.Age < 0 {
		return fmt.Errorf("%w: negative adoption age %d", ErrInvalidChild, c.Adoptive.Age)
	}
	if c.BirthType != "" && !c.BirthType.Valid() {
		return fmt.Errorf("%w: unknown birth type %q", ErrInvalidChild, string(c.BirthType))
	}
	return nil
}

// Validate checks the case and its child before persistence.
func (c *Case) Validate() error {
	if c.Code == "" {
		return errors.New("case code is required")
	}
	if c.ID != 0 && c.Child.CaseID != 0 && c.Child.CaseID != c.ID {
		return fmt.Errorf("%w: child key %d does not match case id %d", ErrInvalidChild, c.Child.CaseID, c.ID)
	}
	return c.Child.Validate()
}

// NewLiveBirthCase builds an unsaved case with a live-birth child.
func NewLiveBirthCase(code, validation string, bt BirthType, nationalID string, age int64) *Case {
	return &Case{
		Code:           code,
		ValidationCode: validation,
		Child: ChildRecord{
			BirthType: bt,
			LiveBirth: &LiveBirth{NationalID: nationalID, Age: age},
		},
	}
}

// NewAdoptiveCase builds an unsaved case with an adoptive child.
func NewAdoptiveCase(code, validation string, bt BirthType, nationalID string, age int64) *Case {
	return &Case{
		Code:           code,
		ValidationCode: validation,
		Child: ChildRecord{
			BirthType: bt,
			Adoptive:  &Adoptive{NationalID: nationalID, Age: age},
		},
	}
}
