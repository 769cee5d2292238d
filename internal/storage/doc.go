// Package storage defines the persistence interfaces for the planning
// workflow.
//
// It provides a high-level abstraction for storing intakes, events,
// proposals, and client profiles. Implementations (SQLite, in-memory) live
// in subpackages.
//
// # Error Types
//
// The package defines common error types used across storage
// implementations:
//   - ErrNotFound: Indicates a requested record is missing.
//   - ErrAlreadyExists: Indicates a unique constraint violation.
//
// Status-bearing records use guarded writes: an update names the status it
// expects to replace, and the store refuses the write if the stored status
// moved in the meantime.
package storage
