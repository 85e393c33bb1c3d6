// Package queryir provides the query intermediate representation (IR) that
// polyquery's resolver emits and its SQL compiler consumes.
//
// ARCHITECTURE:
//
//	[resolver criteria] → [Query IR] → [querysql] → SQL + args
//
// A query always selects root entities (cases). Predicates reference columns
// through schema.Field or, for navigation through the child relation,
// schema.Path.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package implement them, which keeps type switches in the
// validator and compiler exhaustive.
//
// REACHABILITY:
//
// A reference is reachable when the entity that physically holds the column
// is in scope. Scope is the FROM entity, its explicit joins, and the direct
// relation targets of the FROM entity (joined implicitly on the shared key).
// Variants of an abstract entity are never joined implicitly. A path such as
// Case.child.national_id names an attribute only the variants declare, so it
// is reachable only when the query joins those variants.
//
// Validate reports unreachable references as errors. Querying a polymorphic
// attribute through the abstract type without joining the variants does not
// fail in the database; it silently returns fewer rows. Refusing such
// queries at construction time turns that under-match into an error.
//
// PORTABLE FRAGMENT:
//
// Validate also reports features outside the portable fragment as warnings:
// outer joins, OR predicates, sub-selects and NULL comparisons. They execute
// correctly on the SQL backend.
package queryir
