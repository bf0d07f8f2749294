package source

import (
	"github.com/roach88/gaid/internal/obs"
)

// Descriptor identifies one raw table source. All fields pass through to
// provenance untouched.
type Descriptor struct {
	Source   string         `yaml:"source"`
	Dataset  string         `yaml:"dataset"`
	Category string         `yaml:"category"`
	File     string         `yaml:"file"`
	Type     obs.SourceType `yaml:"type"`
	Year     string         `yaml:"year"`
}

// Provenance converts the descriptor to the provenance record attached
// to every observation harmonized from this source.
func (d Descriptor) Provenance() obs.Provenance {
	return obs.Provenance{
		Source:     d.Source,
		Dataset:    d.Dataset,
		Category:   d.Category,
		SourceFile: d.File,
		SourceType: d.Type,
		SourceYear: d.Year,
	}
}

// Row is one raw record: field name to raw cell text.
type Row map[string]string

// Get returns the trimmed-nothing raw value for a field; missing fields
// read as empty.
func (r Row) Get(field string) string {
	return r[field]
}

// Table is an ordered sequence of raw rows from one source.
type Table struct {
	Desc   Descriptor
	Header []string
	Rows   []Row
}
