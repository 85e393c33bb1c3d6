package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	// Compile-time check via assignment
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
}

func TestToParam(t *testing.T) {
	tests := []struct {
		name string
		in   IRValue
		want any
	}{
		{"string", IRString("widgets"), "widgets"},
		{"int", IRInt(22), int64(22)},
		{"bool", IRBool(true), true},
		{"null", IRNull{}, nil},
		{"birth type", BirthTypeValue(BirthAdoptive), "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToParam(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ToParam(nil)
	assert.Error(t, err)
}

func TestIRNullMarshalJSON(t *testing.T) {
	data, err := json.Marshal(IRNull{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
