package queryir

import (
	"fmt"
	"sort"

	"github.com/roach88/polyquery/internal/schema"
)

// Scope resolves column references for a single Select.
//
// The root entity and explicitly joined entities are always in scope.
// Direct relation targets of the root are joinable implicitly; resolving a
// reference to one records that the implicit join is needed.
type Scope struct {
	cat      *schema.Catalog
	root     *schema.Entity
	explicit map[string]bool
	implicit map[string]schema.Relation // keyed by target entity
	needed   map[string]bool
}

// NewScope builds the scope of sel. It fails on unknown entities and on
// entities joined more than once.
func NewScope(cat *schema.Catalog, sel Select) (*Scope, error) {
	root, ok := cat.Entity(sel.From)
	if !ok {
		return nil, fmt.Errorf("%w: entity %q", ErrUnknownReference, sel.From)
	}
	s := &Scope{
		cat:      cat,
		root:     root,
		explicit: map[string]bool{root.Name: true},
		implicit: make(map[string]schema.Relation),
		needed:   make(map[string]bool),
	}
	for _, j := range sel.Joins {
		if _, ok := cat.Entity(j.Entity); !ok {
			return nil, fmt.Errorf("%w: joined entity %q", ErrUnknownReference, j.Entity)
		}
		if s.explicit[j.Entity] {
			return nil, fmt.Errorf("entity %q joined more than once", j.Entity)
		}
		s.explicit[j.Entity] = true
	}
	for _, rel := range cat.RelationsFrom(root.Name) {
		if !s.explicit[rel.To] {
			s.implicit[rel.To] = rel
		}
	}
	return s, nil
}

// Root returns the FROM entity.
func (s *Scope) Root() *schema.Entity {
	return s.root
}

// ResolveField returns the entity holding f. It fails with
// ErrUnknownReference for undefined columns and with *UnreachableError when
// the entity is neither in scope nor implicitly joinable.
func (s *Scope) ResolveField(f schema.Field) (*schema.Entity, error) {
	e, ok := s.cat.Entity(f.Entity)
	if !ok {
		return nil, fmt.Errorf("%w: entity %q", ErrUnknownReference, f.Entity)
	}
	if !e.Has(f.Column) {
		return nil, fmt.Errorf("%w: column %s", ErrUnknownReference, f)
	}
	if s.explicit[e.Name] {
		return e, nil
	}
	if _, ok := s.implicit[e.Name]; ok {
		s.needed[e.Name] = true
		return e, nil
	}
	return nil, &UnreachableError{Ref: f.String(), Missing: []string{e.Name}}
}

// ExpandPath resolves a relation path into the fields that hold its
// attribute. For a polymorphic attribute, fields lists the declaring
// variants that are joined and missing lists those that are not.
func (s *Scope) ExpandPath(p schema.Path) (fields []schema.Field, missing []string, err error) {
	if p.Root != s.root.Name {
		return nil, nil, fmt.Errorf("%w: path %s does not start at %s", ErrUnknownReference, p, s.root.Name)
	}
	rel, ok := s.cat.Relation(p.Root, p.Relation)
	if !ok {
		return nil, nil, fmt.Errorf("%w: relation %s.%s", ErrUnknownReference, p.Root, p.Relation)
	}
	declaring := s.cat.Declaring(rel.To, p.Attr)
	if len(declaring) == 0 {
		return nil, nil, fmt.Errorf("%w: attribute %s", ErrUnknownReference, p)
	}

	if declaring[0].Name == rel.To {
		f := schema.Field{Entity: rel.To, Column: p.Attr}
		if _, err := s.ResolveField(f); err != nil {
			return nil, nil, err
		}
		return []schema.Field{f}, nil, nil
	}

	for _, v := range declaring {
		if s.explicit[v.Name] {
			fields = append(fields, schema.Field{Entity: v.Name, Column: p.Attr})
		} else {
			missing = append(missing, v.Name)
		}
	}
	return fields, missing, nil
}

// ImplicitJoins returns the relations whose targets were resolved through
// implicit joins, sorted by target name.
func (s *Scope) ImplicitJoins() []schema.Relation {
	var rels []schema.Relation
	for name := range s.needed {
		rels = append(rels, s.implicit[name])
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].To < rels[j].To })
	return rels
}
