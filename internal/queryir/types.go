package queryir

import (
	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/schema"
)

// Query represents an abstract query in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - True: matches every row
//   - Equals: field = literal
//   - FieldEquals: field = field (join conditions)
//   - PathEquals: relation path = literal, possibly polymorphic
//   - In: field IN (sub-select)
//   - And, Or: boolean combination
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select represents root-entity access with optional joins and filtering.
//
// Semantics:
//
//	SELECT <columns> FROM <from> <joins> WHERE <filter>
//
// Columns defaults to the key of From. Filter nil means no filter.
type Select struct {
	From    string         // Entity name (e.g. schema.EntityCase)
	Columns []schema.Field // Projection (nil = key of From)
	Joins   []Join         // Explicit joins, applied in order
	Filter  Predicate      // WHERE conditions (nil = no filter)
}

func (Select) queryNode() {}

// JoinKind selects inner or left outer join semantics.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeftOuter
)

func (k JoinKind) String() string {
	if k == JoinLeftOuter {
		return "LEFT OUTER"
	}
	return "INNER"
}

// Join adds Entity to the query scope.
type Join struct {
	Kind   JoinKind
	Entity string
	On     Predicate // Required; usually FieldEquals on the shared key
}

// True matches every row. It is the result of combining zero criteria.
type True struct{}

func (True) predicateNode() {}

// Equals represents a field-equals-literal predicate.
//
// An ir.IRNull value compares with IS NULL and is outside the portable fragment.
type Equals struct {
	Field schema.Field
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// FieldEquals compares two columns. Used for join conditions.
type FieldEquals struct {
	Left  schema.Field
	Right schema.Field
}

func (FieldEquals) predicateNode() {}

// PathEquals compares an attribute reached through a relation.
//
// When the attribute is declared by the relation's target, the target is
// joined implicitly. When only variants declare it, each declaring variant
// must already be joined by the query; otherwise the path is unreachable.
type PathEquals struct {
	Path  schema.Path
	Value ir.IRValue
}

func (PathEquals) predicateNode() {}

// In tests membership of a field in the single-column result of a sub-select.
//
// The sub-select has its own scope; it does not see the outer query's joins.
type In struct {
	Field schema.Field
	Sub   Select
}

func (In) predicateNode() {}

// And represents a conjunction. Empty Predicates means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or represents a disjunction. Empty Predicates means "always false".
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}
