package queryir

import (
	"github.com/roach88/polyquery/internal/schema"
)

// AnyOf combines the non-nil predicates with OR. It returns nil when every
// argument is nil and the single predicate unwrapped when only one remains.
func AnyOf(preds ...Predicate) Predicate {
	kept := compact(preds)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return Or{Predicates: kept}
	}
}

// AllOf combines the non-nil predicates with AND, with the same nil rules as AnyOf.
func AllOf(preds ...Predicate) Predicate {
	kept := compact(preds)
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}

// OrTrue returns p, or True when p is nil.
func OrTrue(p Predicate) Predicate {
	if p == nil {
		return True{}
	}
	return p
}

func compact(preds []Predicate) []Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return kept
}

// SharedKeyJoin joins a child entity on the shared key with the parent
// entity's key: parent.id = child.id.
func SharedKeyJoin(kind JoinKind, parent schema.Field, child schema.Field) Join {
	return Join{
		Kind:   kind,
		Entity: child.Entity,
		On:     FieldEquals{Left: parent, Right: child},
	}
}

// Treat narrows a query to one variant with an inner join keyed by the
// child id, making the variant's attributes directly referenceable.
func Treat(variant schema.Field) Join {
	return SharedKeyJoin(JoinInner, schema.ChildID, variant)
}
