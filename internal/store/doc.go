// Package store provides SQLite-backed history of validation runs.
//
// Each run records which file was checked, its source and config digests,
// whether it was accepted, and every violation found. Runs are ordered by
// a logical sequence number assigned at write time; no wall-clock
// timestamps are stored, so two histories built from the same inputs
// compare equal apart from run ids.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Violation values and positions are stored as canonical JSON text
// produced by internal/digest.
package store
