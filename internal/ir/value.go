package ir

import "fmt"

// IRValue is a sealed interface representing constrained literal types used
// in query predicates. Only IRNull, IRString, IRInt and IRBool implement it.
// There is no float type.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull represents a SQL NULL literal.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string literal.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer literal. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean literal.
type IRBool bool

func (IRBool) irValue() {}

// BirthTypeValue converts a birth type to its stored-code literal.
func BirthTypeValue(b BirthType) IRString {
	return IRString(b)
}

// ToParam converts an IRValue to a Go native type for a SQL parameter.
// IRNull becomes nil.
func ToParam(v IRValue) (any, error) {
	switch val := v.(type) {
	case IRString:
		return string(val), nil
	case IRInt:
		return int64(val), nil
	case IRBool:
		return bool(val), nil
	case IRNull:
		return nil, nil
	case nil:
		return nil, fmt.Errorf("nil IRValue cannot be used as SQL parameter")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
