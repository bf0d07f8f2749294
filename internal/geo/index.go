package geo

import (
	"embed"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

//go:embed countries.csv
var referenceData embed.FS

// aggregates are geographic groupings that look like country names but
// must never resolve: the canonical table is per-country only.
// Keys are normalizeName forms.
var aggregates = map[string]struct{}{
	"global": {}, "world": {}, "eu": {}, "oecd": {}, "eu27": {}, "eu uk": {},
}

// StaticIndex implements NameLookup over the embedded reference table.
// Matching is tiered and deterministic: exact normalized name or alias,
// then unique normalized prefix, then unique substring. A name matching
// more than one country at a tier is not resolved at that tier.
type StaticIndex struct {
	exact  map[string]string // normalized name/alias -> iso3
	sorted []string          // normalized keys, sorted, for the fuzzy tiers
}

// NewStaticIndex builds the index from the embedded reference table,
// indexing display names and every known alternate spelling.
func NewStaticIndex() (*StaticIndex, error) {
	records, err := referenceRecords()
	if err != nil {
		return nil, err
	}

	idx := &StaticIndex{exact: make(map[string]string)}
	for _, rec := range records {
		idx.add(rec[1], rec[0])
		if rec[2] != "" {
			for _, alias := range strings.Split(rec[2], "|") {
				idx.add(alias, rec[0])
			}
		}
	}

	idx.sorted = make([]string, 0, len(idx.exact))
	for key := range idx.exact {
		idx.sorted = append(idx.sorted, key)
	}
	sort.Strings(idx.sorted)
	return idx, nil
}

func (idx *StaticIndex) add(name, iso3 string) {
	key := normalizeName(name)
	if key == "" {
		return
	}
	// First spelling wins; the table is curated, so a collision is a
	// table bug rather than ambiguity to paper over.
	if _, exists := idx.exact[key]; !exists {
		idx.exact[key] = iso3
	}
}

// ReferenceEntries parses the embedded reference table: the trusted ISO3
// universe with its display names. This is the default canonical set a
// Resolver snapshot is built from.
func ReferenceEntries() ([]Entry, error) {
	records, err := referenceRecords()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{ISO3: rec[0], Name: rec[1]})
	}
	return entries, nil
}

func referenceRecords() ([][]string, error) {
	f, err := referenceData.Open("countries.csv")
	if err != nil {
		return nil, fmt.Errorf("geo: opening embedded reference table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("geo: parsing embedded reference table: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("geo: embedded reference table is empty")
	}
	return records[1:], nil
}

// Lookup resolves a free-text country name to an ISO3 code.
func (idx *StaticIndex) Lookup(name string) (string, bool) {
	key := normalizeName(name)
	if key == "" {
		return "", false
	}
	if _, agg := aggregates[key]; agg {
		return "", false
	}
	if strings.Contains(key, "&") {
		// "US & Canada" style groupings are never a single country.
		return "", false
	}

	if iso3, ok := idx.exact[key]; ok {
		return iso3, true
	}

	// Fuzzy tier 1: unique prefix ("Bosnia" -> "bosnia and herzegovina").
	if iso3, ok := idx.uniqueMatch(func(k string) bool { return strings.HasPrefix(k, key) }); ok {
		return iso3, true
	}
	// Fuzzy tier 2: unique substring ("Ivoire" -> "cote d'ivoire").
	if len(key) >= 5 {
		if iso3, ok := idx.uniqueMatch(func(k string) bool { return strings.Contains(k, key) }); ok {
			return iso3, true
		}
	}
	return "", false
}

// uniqueMatch scans keys in sorted order and resolves only when every
// matching key maps to the same code.
func (idx *StaticIndex) uniqueMatch(match func(string) bool) (string, bool) {
	found := ""
	for _, k := range idx.sorted {
		if !match(k) {
			continue
		}
		iso3 := idx.exact[k]
		if found == "" {
			found = iso3
		} else if found != iso3 {
			return "", false
		}
	}
	return found, found != ""
}

// normalizeName folds a country spelling for matching: NFKC, lower case,
// punctuation stripped (apostrophes and '&' kept), whitespace collapsed.
func normalizeName(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '&':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == ',' || r == '.' || r == '(' || r == ')' || r == '/':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
