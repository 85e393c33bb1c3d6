// Package querysql compiles QueryIR into parameterized SQL.
//
// SQL is assembled with squirrel using "?" placeholders, which both SQLite
// and MySQL accept. Every top-level query is ordered by the root key so
// results are deterministic.
//
// Unreachable references (see queryir) are handled according to Mode:
//
//	ModeStrict   compilation fails with *queryir.UnreachableError
//	ModeLenient  the reference compiles to "1 = 0", which is what an engine
//	             that does not join variant tables implicitly ends up doing:
//	             the clause can never match and the query under-matches
//	             without any error
//
// Lenient mode exists to demonstrate that defect; production callers use
// strict mode.
package querysql
