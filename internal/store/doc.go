// Package store persists cases in the four shared-key tables and runs
// compiled queries against them.
//
// # Tables
//
//   - gpls_case: the root entity (id, case_code, validation_code)
//   - child_info: the abstract child, keyed by the case id (birth_type)
//   - child_info_live_birth: live-birth variant (national_id, live_age)
//   - child_info_adoptive: adoptive variant (national_id, adopt_age)
//
// A case and its child rows are written in one transaction by SaveCase.
// Constraint violations reported by the driver are wrapped, never
// translated, so callers can inspect the driver error.
//
// # Ordering
//
// Every multi-row read is ordered by gpls_case.id ASC so results are
// deterministic across runs.
//
// # Drivers
//
//   - sqlite3 (mattn/go-sqlite3): WAL mode, NORMAL synchronous, 5 second
//     busy timeout, foreign keys ON, one open connection
//   - mysql (go-sql-driver/mysql): InnoDB tables with the same keys
//
// Schema changes are goose migrations embedded per dialect.
package store
