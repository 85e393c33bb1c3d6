package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/polyquery/internal/ir"
)

// Entity names.
const (
	EntityCase      = "Case"
	EntityChild     = "ChildRecord"
	EntityLiveBirth = "LiveBirthRecord"
	EntityAdoptive  = "AdoptiveRecord"
)

// Column names.
const (
	ColID             = "id"
	ColCaseCode       = "case_code"
	ColValidationCode = "validation_code"
	ColBirthType      = "birth_type"
	ColNationalID     = "national_id"
	ColLiveAge        = "live_age"
	ColAdoptAge       = "adopt_age"
)

// RelChild is the Case -> ChildRecord relation name.
const RelChild = "child"

// Entity describes one physical table.
type Entity struct {
	Name     string
	Table    string
	Alias    string
	Key      string
	Columns  []string
	Abstract bool

	// Base is the parent entity for variants; empty otherwise.
	Base string

	// Variant is the discriminator for concrete child tables.
	Variant ir.Variant
}

// Has reports whether the entity's own table declares col.
func (e *Entity) Has(col string) bool {
	return slices.Contains(e.Columns, col)
}

// Column returns the alias-qualified column reference, e.g. "lb.national_id".
func (e *Entity) Column(col string) string {
	return e.Alias + "." + col
}

// TableRef returns "table alias" for FROM and JOIN clauses.
func (e *Entity) TableRef() string {
	return e.Table + " " + e.Alias
}

// Relation is a one-to-one navigation from an owner to a dependent entity,
// joined on FromKey = ToKey.
type Relation struct {
	Name    string
	From    string
	To      string
	FromKey string
	ToKey   string
}

// Catalog holds the entities and relations of a schema.
type Catalog struct {
	entities  map[string]*Entity
	order     []string
	relations map[string]Relation // keyed by from + "." + name
}

// NewCatalog creates an empty catalogue.
func NewCatalog() *Catalog {
	return &Catalog{
		entities:  make(map[string]*Entity),
		relations: make(map[string]Relation),
	}
}

// AddEntity registers an entity. Variants must be added after their base.
func (c *Catalog) AddEntity(e *Entity) error {
	if e.Name == "" || e.Table == "" || e.Alias == "" {
		return fmt.Errorf("entity requires name, table and alias")
	}
	if _, exists := c.entities[e.Name]; exists {
		return fmt.Errorf("duplicate entity %q", e.Name)
	}
	for _, other := range c.entities {
		if other.Alias == e.Alias {
			return fmt.Errorf("entity %q reuses alias %q of %q", e.Name, e.Alias, other.Name)
		}
	}
	if e.Base != "" {
		base, ok := c.entities[e.Base]
		if !ok {
			return fmt.Errorf("entity %q: unknown base %q", e.Name, e.Base)
		}
		if !base.Abstract {
			return fmt.Errorf("entity %q: base %q is not abstract", e.Name, e.Base)
		}
		if e.Key != base.Key {
			return fmt.Errorf("entity %q: key %q must match base key %q", e.Name, e.Key, base.Key)
		}
	}
	c.entities[e.Name] = e
	c.order = append(c.order, e.Name)
	return nil
}

// AddRelation registers a relation between two known entities.
func (c *Catalog) AddRelation(r Relation) error {
	if _, ok := c.entities[r.From]; !ok {
		return fmt.Errorf("relation %q: unknown entity %q", r.Name, r.From)
	}
	if _, ok := c.entities[r.To]; !ok {
		return fmt.Errorf("relation %q: unknown entity %q", r.Name, r.To)
	}
	c.relations[r.From+"."+r.Name] = r
	return nil
}

// Entity looks up an entity by name.
func (c *Catalog) Entity(name string) (*Entity, bool) {
	e, ok := c.entities[name]
	return e, ok
}

// MustEntity looks up an entity and panics if it is missing.
func (c *Catalog) MustEntity(name string) *Entity {
	e, ok := c.entities[name]
	if !ok {
		panic(fmt.Sprintf("schema: unknown entity %q", name))
	}
	return e
}

// Relation looks up a relation by owner and name.
func (c *Catalog) Relation(from, name string) (Relation, bool) {
	r, ok := c.relations[from+"."+name]
	return r, ok
}

// RelationsFrom returns the relations owned by entity, sorted by name.
func (c *Catalog) RelationsFrom(from string) []Relation {
	var out []Relation
	for _, r := range c.relations {
		if r.From == from {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Relation) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Variants returns the concrete entities of an abstract base, in registration order.
func (c *Catalog) Variants(base string) []*Entity {
	var out []*Entity
	for _, name := range c.order {
		if e := c.entities[name]; e.Base == base {
			out = append(out, e)
		}
	}
	return out
}

// Declaring returns the entities that physically hold attr for references
// through entity. If entity's own table declares attr, that is the only
// result. Otherwise the variants declaring attr are returned; a non-empty
// result in that case means the attribute is polymorphic.
func (c *Catalog) Declaring(entity, attr string) []*Entity {
	e, ok := c.entities[entity]
	if !ok {
		return nil
	}
	if e.Has(attr) {
		return []*Entity{e}
	}
	var out []*Entity
	for _, v := range c.Variants(entity) {
		if v.Has(attr) {
			out = append(out, v)
		}
	}
	return out
}

// Default returns the case model catalogue.
func Default() *Catalog {
	c := NewCatalog()
	mustAdd(c.AddEntity(&Entity{
		Name:    EntityCase,
		Table:   "gpls_case",
		Alias:   "c",
		Key:     ColID,
		Columns: []string{ColID, ColCaseCode, ColValidationCode},
	}))
	mustAdd(c.AddEntity(&Entity{
		Name:     EntityChild,
		Table:    "child_info",
		Alias:    "ci",
		Key:      ColID,
		Columns:  []string{ColID, ColBirthType},
		Abstract: true,
	}))
	mustAdd(c.AddEntity(&Entity{
		Name:    EntityLiveBirth,
		Table:   "child_info_live_birth",
		Alias:   "lb",
		Key:     ColID,
		Columns: []string{ColID, ColNationalID, ColLiveAge},
		Base:    EntityChild,
		Variant: ir.VariantLiveBirth,
	}))
	mustAdd(c.AddEntity(&Entity{
		Name:    EntityAdoptive,
		Table:   "child_info_adoptive",
		Alias:   "ad",
		Key:     ColID,
		Columns: []string{ColID, ColNationalID, ColAdoptAge},
		Base:    EntityChild,
		Variant: ir.VariantAdoptive,
	}))
	mustAdd(c.AddRelation(Relation{
		Name:    RelChild,
		From:    EntityCase,
		To:      EntityChild,
		FromKey: ColID,
		ToKey:   ColID,
	}))
	return c
}

func mustAdd(err error) {
	if err != nil {
		panic("schema: " + err.Error())
	}
}
