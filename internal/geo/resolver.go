package geo

import (
	"regexp"
	"sort"
	"strings"
)

// Entry is one recognized country or territory: the canonical ISO3 code
// and the single display name chosen for it this run.
type Entry struct {
	ISO3 string
	Name string
}

// NameLookup is the injected country-name capability: free-text name to
// ISO3 code. Implementations must be deterministic for a fixed input;
// fuzzy matching inside is fine, the resolver treats it as opaque.
type NameLookup interface {
	Lookup(name string) (iso3 string, ok bool)
}

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Resolver maps raw country identifiers to canonical entries. Immutable
// after construction.
type Resolver struct {
	legacy map[string]string
	names  map[string]string // iso3 -> display name, 1:1 for the run
	lookup NameLookup
}

// NewResolver builds a per-run snapshot. Reference entries may repeat an
// ISO3 code under different display names; the name seen most often wins,
// ties broken by lexicographically smallest name, so the snapshot is
// identical regardless of input order.
//
// legacy maps superseded codes to their replacements and is applied
// before any lookup. lookup may be nil, which disables free-text
// resolution (step 3).
func NewResolver(reference []Entry, legacy map[string]string, lookup NameLookup) *Resolver {
	type tally struct {
		count int
		name  string
	}
	votes := make(map[string]map[string]int)
	for _, e := range reference {
		code := strings.ToUpper(strings.TrimSpace(e.ISO3))
		name := strings.TrimSpace(e.Name)
		if !codePattern.MatchString(code) || name == "" {
			continue
		}
		if votes[code] == nil {
			votes[code] = make(map[string]int)
		}
		votes[code][name]++
	}

	names := make(map[string]string, len(votes))
	for code, byName := range votes {
		candidates := make([]string, 0, len(byName))
		for name := range byName {
			candidates = append(candidates, name)
		}
		sort.Strings(candidates)
		best := tally{}
		for _, name := range candidates {
			if n := byName[name]; n > best.count {
				best = tally{count: n, name: name}
			}
		}
		names[code] = best.name
	}

	leg := make(map[string]string, len(legacy))
	for old, repl := range legacy {
		leg[strings.ToUpper(strings.TrimSpace(old))] = strings.ToUpper(strings.TrimSpace(repl))
	}

	return &Resolver{legacy: leg, names: names, lookup: lookup}
}

// Resolve maps a free-text country name or 3-letter code to its canonical
// entry. The second return is false when the input cannot be resolved;
// callers must handle that explicitly (typically by dropping the row and
// counting it).
func (r *Resolver) Resolve(raw string) (Entry, bool) {
	if r == nil || r.names == nil {
		panic("geo: Resolve on uninitialized resolver")
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Entry{}, false
	}

	// Steps 1 and 2: code-shaped input.
	if code := strings.ToUpper(trimmed); codePattern.MatchString(code) {
		if repl, ok := r.legacy[code]; ok {
			code = repl
		}
		if name, ok := r.names[code]; ok {
			return Entry{ISO3: code, Name: name}, true
		}
		// A 3-letter token that is not a known code may still be a name
		// fragment; fall through to the name lookup.
	}

	// Step 3: injected free-text lookup.
	if r.lookup != nil {
		if code, ok := r.lookup.Lookup(trimmed); ok {
			code = strings.ToUpper(code)
			if repl, ok := r.legacy[code]; ok {
				code = repl
			}
			if name, ok := r.names[code]; ok {
				return Entry{ISO3: code, Name: name}, true
			}
		}
	}

	return Entry{}, false
}

// Contains reports whether iso3 is in the canonical code set.
func (r *Resolver) Contains(iso3 string) bool {
	_, ok := r.names[strings.ToUpper(strings.TrimSpace(iso3))]
	return ok
}

// DisplayName returns the display name chosen for iso3 this run.
func (r *Resolver) DisplayName(iso3 string) (string, bool) {
	name, ok := r.names[strings.ToUpper(strings.TrimSpace(iso3))]
	return name, ok
}

// Codes returns the canonical code set, sorted.
func (r *Resolver) Codes() []string {
	codes := make([]string, 0, len(r.names))
	for code := range r.names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
