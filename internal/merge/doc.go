// Package merge reconciles harmonized tables from multiple sources into
// one canonical observation set.
//
// Four steps, in order:
//
//  1. Union - concatenate every input sequence.
//  2. Case-fold metric merge - labels differing only by case collapse to
//     the most frequent variant.
//  3. Key-collision resolution - observations sharing (year, iso3,
//     metric) resolve to one survivor: identical values keep one,
//     a precedence rule picks its winner, and conflicting values with
//     no rule are disambiguated by rewriting the metric with source
//     context. Information is never silently discarded.
//  4. Exact-duplicate removal - identical rows (provenance included)
//     keep their first occurrence in canonical order.
//
// Merging needs a global view of all labels and keys, so it is
// single-threaded by design. The output is sorted into the published
// total order; given identical inputs and rule tables, the output is
// byte-identical regardless of how the inputs were produced.
package merge
