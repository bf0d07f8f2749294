// Package metric canonicalizes free-text metric labels across sources.
//
// Three independent passes, never mixed:
//
//  1. NormalizeText - a fixed-order, idempotent text transform: mojibake
//     repair, dash/quote unification, whitespace and underscore collapse,
//     title-casing with a forced acronym dictionary.
//  2. Override application - an explicit, finite table keyed on exact raw
//     label (optionally per source file) for renames that need semantic
//     judgment. Applied after normalization.
//  3. Case-fold merging - labels whose lower-case forms coincide collapse
//     to the variant with the highest observation count.
//
// Normalization never merges two labels whose normalized forms differ;
// only exact case-fold collisions merge automatically. Labels classified
// as noise (placeholders, mis-encoded garbage) are dropped entirely by
// the caller, never renamed.
package metric
