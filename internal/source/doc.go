// Package source materializes raw tables for harmonization.
//
// A Table is an ordered sequence of rows with named fields plus a
// Descriptor identifying who produced it. Descriptor fields are
// descriptive only: they pass through to observation provenance
// untouched and never influence harmonization decisions.
//
// CSV tables load through encoding/csv, XLSX workbooks through
// excelize. Both readers are header-driven: the first row names the
// fields, every following row becomes one Row.
package source
