package obs

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceType identifies the file format a source table was materialized from.
type SourceType string

const (
	SourceCSV  SourceType = "csv"
	SourceXLSX SourceType = "xlsx"
)

// Valid reports whether t is a recognized source type.
func (t SourceType) Valid() bool {
	return t == SourceCSV || t == SourceXLSX
}

// ParseSourceType parses a source type string, case-insensitively.
// Historical vocabulary from older ingestion waves ("Excel", "Web Extraction")
// is folded into the two canonical types.
func ParseSourceType(s string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return SourceCSV, nil
	case "xlsx", "excel", "xls":
		return SourceXLSX, nil
	case "statistical extraction", "web extraction", "database extraction",
		"report extraction", "pdf report", "web scraping",
		"manual extraction/scraping", "index data":
		// Legacy extraction labels all describe CSV-materialized data.
		return SourceCSV, nil
	default:
		return "", fmt.Errorf("unknown source type %q", s)
	}
}

// Provenance records which source asserted an observation. It documents
// "who said this", is attached to every observation, and passes through
// the pipeline untouched.
type Provenance struct {
	Source     string     `json:"source" yaml:"source"`
	Dataset    string     `json:"dataset" yaml:"dataset"`
	Category   string     `json:"category" yaml:"category"`
	SourceFile string     `json:"source_file" yaml:"source_file"`
	SourceType SourceType `json:"source_type" yaml:"source_type"`
	SourceYear string     `json:"source_year" yaml:"source_year"`
}

// Observation is the atomic fact of the canonical table: one metric value
// for one country in one year, with provenance.
type Observation struct {
	Year       int        `json:"year"`
	Country    string     `json:"country"`
	ISO3       string     `json:"iso3"`
	Metric     string     `json:"metric"`
	Value      float64    `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// Key is the logical-duplicate key. At most one observation per Key
// survives reconciliation.
type Key struct {
	Year   int
	ISO3   string
	Metric string
}

// Key returns the logical-duplicate key of o.
func (o Observation) Key() Key {
	return Key{Year: o.Year, ISO3: o.ISO3, Metric: o.Metric}
}

// String formats a key for diagnostics and validation reports.
func (k Key) String() string {
	return fmt.Sprintf("(%d, %s, %s)", k.Year, k.ISO3, k.Metric)
}

// FormatValue renders a value the way the published table does: shortest
// round-trippable decimal form. Both the CSV sink and the content hash use
// this so the two can never disagree.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Columns is the published GAID column contract, in order.
var Columns = []string{
	"Year", "Country", "ISO3", "Metric", "Value",
	"Dataset", "Source", "Source_Category", "Source_File", "Source_Type", "Source_Year",
}

// Record renders o as one published-table row following Columns order.
func (o Observation) Record() []string {
	return []string{
		strconv.Itoa(o.Year),
		o.Country,
		o.ISO3,
		o.Metric,
		FormatValue(o.Value),
		o.Provenance.Dataset,
		o.Provenance.Source,
		o.Provenance.Category,
		o.Provenance.SourceFile,
		string(o.Provenance.SourceType),
		o.Provenance.SourceYear,
	}
}

// Compare defines the total order of the published table:
// Year, Country, Metric, then Value and Source to break remaining ties.
// The order depends only on field contents, never on arrival order, so a
// parallel harmonization pass sorts into the same sequence every run.
func Compare(a, b Observation) int {
	if a.Year != b.Year {
		if a.Year < b.Year {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Country, b.Country); c != 0 {
		return c
	}
	if c := strings.Compare(a.Metric, b.Metric); c != 0 {
		return c
	}
	if a.Value != b.Value {
		if a.Value < b.Value {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Provenance.Source, b.Provenance.Source)
}
