package queryir

import (
	"errors"
	"fmt"

	"github.com/roach88/polyquery/internal/ir"
	"github.com/roach88/polyquery/internal/schema"
)

// ValidationResult contains the reachability and portability analysis of a query.
type ValidationResult struct {
	// IsPortable indicates the query uses only portable fragment features.
	IsPortable bool

	// Warnings lists non-portable features used in the query.
	Warnings []string

	// Errors lists references the query cannot reach or resolve. A query
	// with errors must not be executed: unreachable polymorphic references
	// would silently match nothing.
	Errors []error
}

// Err joins Errors, or returns nil when there are none.
func (r ValidationResult) Err() error {
	return errors.Join(r.Errors...)
}

// Validate checks a query against the catalogue.
//
// Rules:
//  1. Every referenced column must be defined by the catalogue
//  2. Every reference must be reachable (see package docs)
//  3. Every join needs an ON predicate
//  4. Sub-selects project exactly one column
//
// Non-portable features (outer joins, OR, sub-selects, NULL comparisons)
// are reported as warnings only.
//
// Validate is a pure function with no side effects.
func Validate(cat *schema.Catalog, query Query) ValidationResult {
	v := &validator{
		cat:      cat,
		warnings: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
		Errors:     v.errors,
	}
}

// validator accumulates findings during traversal.
type validator struct {
	cat      *schema.Catalog
	warnings []string
	errors   []error
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) addError(err error) {
	v.errors = append(v.errors, err)
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addError(errors.New("nil query"))
			return
		}
		v.validateSelect(*query)
	case nil:
		v.addError(errors.New("nil query"))
	default:
		v.addError(fmt.Errorf("unknown query type: %T", q))
	}
}

func (v *validator) validateSelect(sel Select) {
	scope, err := NewScope(v.cat, sel)
	if err != nil {
		v.addError(err)
		return
	}

	for _, col := range sel.Columns {
		if _, err := scope.ResolveField(col); err != nil {
			v.addError(err)
		}
	}

	for _, j := range sel.Joins {
		if j.Kind == JoinLeftOuter {
			v.addWarning("Outer join to %s - portable fragment requires inner joins only", j.Entity)
		}
		if j.On == nil {
			v.addError(fmt.Errorf("join to %s has no ON predicate", j.Entity))
			continue
		}
		v.validatePredicate(scope, j.On)
	}

	if sel.Filter != nil {
		v.validatePredicate(scope, sel.Filter)
	}
}

func (v *validator) validatePredicate(scope *Scope, p Predicate) {
	switch pred := Normalize(p).(type) {
	case nil:
		// nil predicates are valid (no filter)
	case True:
	case Equals:
		v.validateEquals(scope, pred)
	case FieldEquals:
		v.resolve(scope, pred.Left)
		v.resolve(scope, pred.Right)
	case PathEquals:
		v.validatePath(scope, pred)
	case In:
		v.validateIn(scope, pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(scope, sub)
		}
	case Or:
		v.addWarning("OR predicate - portable fragment requires separate queries or UNION")
		for _, sub := range pred.Predicates {
			v.validatePredicate(scope, sub)
		}
	default:
		v.addError(fmt.Errorf("unknown predicate type: %T", p))
	}
}

func (v *validator) resolve(scope *Scope, f schema.Field) {
	if _, err := scope.ResolveField(f); err != nil {
		v.addError(err)
	}
}

func (v *validator) validateEquals(scope *Scope, eq Equals) {
	v.resolve(scope, eq.Field)
	switch eq.Value.(type) {
	case nil:
		v.addError(fmt.Errorf("field %s compared to nil value", eq.Field))
	case ir.IRNull:
		v.addWarning("Field '%s' compared to NULL - portable fragment requires explicit values", eq.Field)
	}
}

func (v *validator) validatePath(scope *Scope, pe PathEquals) {
	_, missing, err := scope.ExpandPath(pe.Path)
	if err != nil {
		v.addError(err)
		return
	}
	if len(missing) > 0 {
		v.addError(&UnreachableError{Ref: pe.Path.String(), Missing: missing})
	}
}

func (v *validator) validateIn(scope *Scope, in In) {
	v.addWarning("Sub-select on %s - portable fragment excludes subqueries", in.Sub.From)
	v.resolve(scope, in.Field)
	if len(in.Sub.Columns) > 1 {
		v.addError(fmt.Errorf("sub-select on %s projects %d columns, want 1", in.Sub.From, len(in.Sub.Columns)))
	}
	v.validateSelect(in.Sub)
}

// Normalize converts pointer predicate forms to their value forms so type
// switches only need the value cases. Nil pointers become nil.
func Normalize(p Predicate) Predicate {
	switch pred := p.(type) {
	case *True:
		if pred == nil {
			return nil
		}
		return *pred
	case *Equals:
		if pred == nil {
			return nil
		}
		return *pred
	case *FieldEquals:
		if pred == nil {
			return nil
		}
		return *pred
	case *PathEquals:
		if pred == nil {
			return nil
		}
		return *pred
	case *In:
		if pred == nil {
			return nil
		}
		return *pred
	case *And:
		if pred == nil {
			return nil
		}
		return *pred
	case *Or:
		if pred == nil {
			return nil
		}
		return *pred
	default:
		return p
	}
}
