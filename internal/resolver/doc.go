// Package resolver translates search criteria into query predicates over the
// case model.
//
// Every operation is a pure function. Absent criteria (nil pointers) add no
// clause at all; when every criterion is absent the result is queryir.True,
// which matches every case.
//
// The national-id operations come in three forms:
//
//   - ByCaseCodeOrChildNationalIDNaive references child.national_id through
//     the abstract child. No variant table is joined, so the reference is
//     unreachable: the strict compiler rejects it and the lenient compiler
//     turns it into a clause that never matches.
//   - ByCaseCodeOrChildNationalID tests the child id for membership in one
//     sub-select per variant table.
//   - ExplicitJoinQuery left-joins both variant tables on the shared key so
//     variant attributes can be referenced directly.
//
// The TREAT queries (ByLiveBirthNationalID, ByAdoptiveAge, ...) narrow the
// result to one variant with an inner join.
package resolver
