// Package harmonize turns raw source rows into canonical observations.
//
// Per row: the country resolves through the geo resolver, the metric
// label runs through normalization and the override table, and Year and
// Value coerce to numbers. A row failing any step is dropped and counted
// by reason - dropping is a soft, observable outcome, never an error.
//
// A Harmonizer holds only read-only snapshots, so independent sources
// may harmonize in parallel goroutines. Output order follows input
// order within a source, making each pass deterministic on its own.
package harmonize
