// Package ir provides the domain types shared by every polyquery package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the case model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - A Case owns exactly one ChildRecord; the child holds the case id as a
//     plain lookup key, never a pointer back to its owner
//   - ChildRecord is a tagged union: exactly one of LiveBirth or Adoptive is set
//   - BirthType is stored by its one-letter code and never translated
//   - Literal values in queries use the sealed IRValue types (no floats)
package ir
