// Package store provides SQLite-backed durable storage for
// tokenization runs.
//
// The store records three kinds of rows:
//   - Runs: one row per engine invocation, with the rule file and
//     active-module set used
//   - Items: the input lines of a run and their rewritten output
//   - Tokens: each item's token lattice, with code-point spans into
//     the original input
//
// Every item write is transactional: the item row and all of its
// tokens land together or not at all, so a partially written lattice
// never becomes visible.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Run IDs come from a RunIDGenerator; the default UUIDv7Generator
// produces time-sortable identifiers so ReadRuns listings stay
// chronological.
package store
