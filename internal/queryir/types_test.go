package queryir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/schema"
)

func TestSealedInterfaces(t *testing.T) {
	// Compile-time checks via assignment
	var _ Query = Select{}
	var _ Query = &Select{}
	var _ Predicate = True{}
	var _ Predicate = Equals{}
	var _ Predicate = FieldEquals{}
	var _ Predicate = PathEquals{}
	var _ Predicate = In{}
	var _ Predicate = And{}
	var _ Predicate = Or{}
}

func TestAnyOf(t *testing.T) {
	a := Equals{Field: schema.CaseCode, Value: ir.IRString("A")}
	b := Equals{Field: schema.CaseValidationCode, Value: ir.IRString("B")}

	tests := []struct {
		name  string
		preds []Predicate
		want  Predicate
	}{
		{"no predicates", nil, nil},
		{"all nil", []Predicate{nil, nil}, nil},
		{"single", []Predicate{nil, a}, a},
		{"two", []Predicate{a, nil, b}, Or{Predicates: []Predicate{a, b}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnyOf(tt.preds...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AnyOf() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAllOf(t *testing.T) {
	a := Equals{Field: schema.CaseCode, Value: ir.IRString("A")}
	b := Equals{Field: schema.CaseValidationCode, Value: ir.IRString("B")}

	assert.Nil(t, AllOf())
	assert.Equal(t, a, AllOf(a))
	assert.Equal(t, And{Predicates: []Predicate{a, b}}, AllOf(a, nil, b))
}

func TestOrTrue(t *testing.T) {
	assert.Equal(t, True{}, OrTrue(nil))
	a := Equals{Field: schema.CaseCode, Value: ir.IRString("A")}
	assert.Equal(t, a, OrTrue(a))
}

func TestTreat(t *testing.T) {
	j := Treat(schema.LiveBirthID)
	want := Join{
		Kind:   JoinInner,
		Entity: schema.EntityLiveBirth,
		On:     FieldEquals{Left: schema.ChildID, Right: schema.LiveBirthID},
	}
	if diff := cmp.Diff(want, j); diff != "" {
		t.Errorf("Treat() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	eq := Equals{Field: schema.CaseCode, Value: ir.IRString("A")}
	assert.Equal(t, eq, Normalize(&eq))
	assert.Equal(t, eq, Normalize(eq))

	var nilOr *Or
	assert.Nil(t, Normalize(nilOr))
}

func TestJoinKindString(t *testing.T) {
	assert.Equal(t, "INNER", JoinInner.String())
	assert.Equal(t, "LEFT OUTER", JoinLeftOuter.String())
}
