// Package obs defines the canonical observation types for GAID.
//
// This package contains type definitions and identity helpers only. All
// other internal packages import obs; obs imports nothing internal. This
// keeps the observation model the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Observation identity is content-addressed (SHA-256 over canonical
//     field encoding with domain separation), never positional
//   - Provenance is carried through untouched and never participates in
//     deduplication keys
//   - Ordering is total and deterministic: two runs over identical inputs
//     must sort identical observation sets into identical sequences
package obs
