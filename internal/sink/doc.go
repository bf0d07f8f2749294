// Package sink writes a validated table to its published forms.
//
// Two sinks are supported:
//   - CSV: the canonical eleven-column flat file, written in canonical
//     sort order so repeated runs over the same inputs are
//     byte-identical.
//   - SQLite: a queryable copy of the same table, keyed by each
//     observation's content-addressed row ID, together with a runs
//     table recording what was compiled and from which sources.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// SQLite only supports one writer at a time, so the connection pool is
// capped at a single connection. Row IDs are computed in
// internal/obs/hash.go using SHA-256 with domain separation, so a
// re-run of the same inputs upserts the same rows rather than
// duplicating them.
package sink
