package ir

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldNaming(t *testing.T) {
	c := NewLiveBirthCase("caseid-1", "LIVE", BirthNormal, "T1111111A", 11)
	data, err := json.Marshal(c)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"case_code"`)
	assert.Contains(t, string(data), `"validation_code"`)
	assert.Contains(t, string(data), `"national_id"`)
	assert.Contains(t, string(data), `"live_age"`)
	assert.NotContains(t, string(data), `"adoptive"`)
	assert.NotContains(t, string(data), `"caseCode"`)
}

func TestChildRecordVariant(t *testing.T) {
	tests := []struct {
		name  string
		child ChildRecord
		want  Variant
	}{
		{"live birth", ChildRecord{LiveBirth: &LiveBirth{NationalID: "A"}}, VariantLiveBirth},
		{"adoptive", ChildRecord{Adoptive: &Adoptive{NationalID: "B"}}, VariantAdoptive},
		{"none", ChildRecord{}, VariantNone},
		{"both", ChildRecord{LiveBirth: &LiveBirth{}, Adoptive: &Adoptive{}}, VariantNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.child.Variant())
		})
	}
}

func TestChildRecordVariantIgnoresBirthType(t *testing.T) {
	// Birth type and variant correlate in practice but are independent.
	child := ChildRecord{BirthType: BirthAdoptive, LiveBirth: &LiveBirth{NationalID: "X"}}
	assert.Equal(t, VariantLiveBirth, child.Variant())
	assert.NoError(t, child.Validate())
}

func TestChildRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		child   ChildRecord
		wantErr string
	}{
		{"live birth", ChildRecord{BirthType: BirthNormal, LiveBirth: &LiveBirth{}}, ""},
		{"no birth type", ChildRecord{Adoptive: &Adoptive{}}, ""},
		{"no variant", ChildRecord{BirthType: BirthNormal}, "no variant set"},
		{"both variants", ChildRecord{LiveBirth: &LiveBirth{}, Adoptive: &Adoptive{}}, "both"},
		{"bad birth type", ChildRecord{BirthType: "X", LiveBirth: &LiveBirth{}}, "unknown birth type"},
		{"negative live age", ChildRecord{LiveBirth: &LiveBirth{NationalID: "A", Age: -1}}, "negative live birth age -1"},
		{"negative adopt age", ChildRecord{Adoptive: &Adoptive{NationalID: "B", Age: -3}}, "negative adoption age -3"},
		{"zero age", ChildRecord{Adoptive: &Adoptive{NationalID: "B"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.child.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidChild))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCaseValidate(t *testing.T) {
	c := NewAdoptiveCase("caseid-2", "ADOPT", BirthAdoptive, "T2222222B", 22)
	require.NoError(t, c.Validate())
	assert.Equal(t, "T2222222B", c.Child.NationalID())

	c.Code = ""
	assert.Error(t, c.Validate())

	mismatched := NewAdoptiveCase("caseid-3", "", "", "T3", 3)
	mismatched.ID = 4
	mismatched.Child.CaseID = 5
	assert.ErrorIs(t, mismatched.Validate(), ErrInvalidChild)
}
