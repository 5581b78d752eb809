// Package database provides SQLite-based storage for harvest results.
//
// This package implements the HarvestDB, which stores:
//   - Output records, one per discovered reference, with fetch metadata
//   - Resolved page bodies, deduplicated by title
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Page bodies live in their own table keyed by title. Several records
// can point at the same talk page (one per section anchor), and storing
// the wikitext once per title keeps the file small.
package database
