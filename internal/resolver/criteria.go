package resolver

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/polyquery/internal/ir"
)

// Criteria holds optional search inputs. A nil field is absent.
type Criteria struct {
	Code       *string       `json:"code,omitempty" yaml:"code,omitempty"`
	Validation *string       `json:"validation,omitempty" yaml:"validation,omitempty"`
	NationalID *string       `json:"national_id,omitempty" yaml:"national_id,omitempty"`
	BirthType  *ir.BirthType `json:"birth_type,omitempty" yaml:"birth_type,omitempty"`
	Age        *int64        `json:"age,omitempty" yaml:"age,omitempty"`
}

// Normalize trims string criteria and converts them to Unicode NFC.
// Strings that are empty after trimming become absent.
func (c Criteria) Normalize() Criteria {
	c.Code = normString(c.Code)
	c.Validation = normString(c.Validation)
	c.NationalID = normString(c.NationalID)
	if c.BirthType != nil && *c.BirthType == "" {
		c.BirthType = nil
	}
	return c
}

// IsEmpty reports whether no criterion is present.
func (c Criteria) IsEmpty() bool {
	return c.Code == nil && c.Validation == nil && c.NationalID == nil &&
		c.BirthType == nil && c.Age == nil
}

func normString(p *string) *string {
	if p == nil {
		return nil
	}
	s := norm.NFC.String(strings.TrimSpace(*p))
	if s == "" {
		return nil
	}
	return &s
}
