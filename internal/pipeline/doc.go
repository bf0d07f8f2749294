// Package pipeline drives a full compile: rule loading, source
// ingestion, per-source harmonization, reconciliation, validation and
// publishing.
//
// Sources are harmonized in parallel, one worker per source, but the
// partial results are combined in manifest order and every later stage
// is ordered by field contents alone, so the published table is
// byte-identical across runs regardless of scheduling.
package pipeline
