package obs

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for content-addressed row identity.
// Version suffix enables future algorithm migration.
const domainRow = "gaid/observation/v1"

// RowID computes the content-addressed identity of an observation.
// Two observations have the same RowID iff every published field,
// provenance included, is identical. The ID is stable across runs and
// independent of arrival order, so exact-duplicate removal and the
// SQLite primary key both hang off it.
//
// Fields are NFC-normalized and joined with a 0x1F unit separator;
// the domain prefix is separated by a null byte to prevent boundary
// ambiguity between domain and data.
func RowID(o Observation) string {
	h := sha256.New()
	h.Write([]byte(domainRow))
	h.Write([]byte{0x00})

	fields := []string{
		strconv.Itoa(o.Year),
		o.Country,
		o.ISO3,
		o.Metric,
		FormatValue(o.Value),
		o.Provenance.Source,
		o.Provenance.Dataset,
		o.Provenance.Category,
		o.Provenance.SourceFile,
		string(o.Provenance.SourceType),
		o.Provenance.SourceYear,
	}
	for i, f := range fields {
		if i > 0 {
			h.Write([]byte{0x1F})
		}
		h.Write([]byte(norm.NFC.String(f)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
