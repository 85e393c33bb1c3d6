// Package schema describes the physical layout of the case model.
//
// The catalogue records, for every entity, its table, alias, shared key and
// columns, plus the inheritance relation between the abstract child entity
// and its concrete variants:
//
//	gpls_case c ──1:1── child_info ci (abstract, birth_type)
//	                       ├── child_info_live_birth lb (national_id, live_age)
//	                       └── child_info_adoptive   ad (national_id, adopt_age)
//
// Every child table is keyed by the owning case's id (shared-key
// inheritance). An attribute declared only by variants is polymorphic: a
// query can read it only when it joins the declaring variant tables. The
// catalogue never joins variants on its own; queryir decides whether a
// reference is reachable.
package schema
