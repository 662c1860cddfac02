// Package store executes generated SQL against SQLite.
//
// Migrate lays out one current table per entity and, for temporal
// entities, a history table with identical columns. The two share the
// period columns, so the emulated AS OF (a UNION ALL of both tables
// filtered on the period) finds exactly the row version valid at the
// requested instant.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Period columns hold ir.TimeLayout text. Open rows end at MaxTime.
package store
