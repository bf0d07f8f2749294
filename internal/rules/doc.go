// Package rules holds the data-driven rule tables that absorb all
// domain-specific harmonization knowledge: legacy ISO3 rewrites, metric
// text overrides, the acronym casing dictionary, the noise vocabulary,
// and cross-source precedence declarations.
//
// The tables are configuration, not code. They load from a single YAML
// document and are validated against an embedded CUE schema before any
// row processing begins, so a malformed table fails fast with a
// structured ConfigError rather than surfacing mid-run.
//
// Default() returns the shipped tables. Callers swap in their own tables
// without touching any algorithm.
package rules
