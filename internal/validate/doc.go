// Package validate is the final gate before a table is publishable.
//
// Four independent checks: ISO3 coverage against the canonical set, the
// null floor on core fields, residual (year, iso3, metric) collisions,
// and the 1:1 ISO3-to-country-name invariant. The gate reports counts
// and offending keys; it never repairs and never mutates the table.
// Repair belongs upstream, in corrected rule tables and a re-run.
//
// A non-zero count on any check means publish blocked, not a warning.
package validate
