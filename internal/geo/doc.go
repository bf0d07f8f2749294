// Package geo resolves heterogeneous country identifiers to canonical
// ISO3 codes and display names.
//
// A Resolver is constructed once per run from an immutable snapshot of
// the canonical code set; after construction, Resolve is a pure function
// of its input and may be shared across goroutines without locking.
//
// Resolution order is fixed:
//  1. legacy-code rewrite (superseded ISO3 codes, from the rule tables)
//  2. exact 3-letter match against the canonical set
//  3. free-text name lookup through the injected NameLookup capability
//  4. unresolved
//
// Unresolved is a value, not an error. Malformed input never panics;
// only programmer errors (resolving against a nil resolver) do.
package geo
