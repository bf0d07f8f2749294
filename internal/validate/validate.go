package validate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/roach88/gaid/internal/obs"
)

// Check names one of the gate's independent validations.
type Check string

const (
	// CheckISO3Coverage verifies every ISO3 code belongs to the
	// canonical reference set.
	CheckISO3Coverage Check = "iso3_coverage"

	// CheckNullFields verifies the core fields carry real values:
	// no empty country, code or metric, no zero year, no NaN.
	CheckNullFields Check = "null_fields"

	// CheckKeyCollisions verifies no (year, iso3, metric) key is
	// carried by more than one observation.
	CheckKeyCollisions Check = "key_collisions"

	// CheckCountryMapping verifies the ISO3-to-display-name
	// relation is one-to-one in both directions.
	CheckCountryMapping Check = "country_mapping"
)

// maxExamples caps the offending keys carried per finding. The count
// is always exact; the examples are a sample for the error message.
const maxExamples = 10

// Finding is the outcome of a single check: how many observations (or
// key groups) violated it, plus a bounded sample of offenders.
type Finding struct {
	Check    Check    `json:"check"`
	Count    int      `json:"count"`
	Examples []string `json:"examples,omitempty"`
}

// Report is the full gate outcome over one merged table.
type Report struct {
	Rows     int       `json:"rows"`
	Findings []Finding `json:"findings"`
}

// Clean reports whether every check passed.
func (r *Report) Clean() bool {
	for _, f := range r.Findings {
		if f.Count > 0 {
			return false
		}
	}
	return true
}

// Finding returns the finding for the named check.
func (r *Report) Finding(c Check) Finding {
	for _, f := range r.Findings {
		if f.Check == c {
			return f
		}
	}
	return Finding{Check: c}
}

// Error carries a failed report. The table it describes must not be
// published.
type Error struct {
	Report *Report
}

func (e *Error) Error() string {
	var parts []string
	for _, f := range e.Report.Findings {
		if f.Count == 0 {
			continue
		}
		s := fmt.Sprintf("%s: %d", f.Check, f.Count)
		if len(f.Examples) > 0 {
			s += " (e.g. " + strings.Join(f.Examples, "; ") + ")"
		}
		parts = append(parts, s)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// CodeSet answers membership questions about the canonical ISO3 set.
// *geo.Resolver satisfies it.
type CodeSet interface {
	Contains(iso3 string) bool
}

// Validate runs all four checks over the merged table. The table is
// read-only to the gate. A nil error means every check passed; a
// non-nil error is always *Error wrapping the same report.
func Validate(observations []obs.Observation, canonical CodeSet) (*Report, error) {
	r := &Report{
		Rows: len(observations),
		Findings: []Finding{
			coverage(observations, canonical),
			nullFields(observations),
			keyCollisions(observations),
			countryMapping(observations),
		},
	}
	if r.Clean() {
		return r, nil
	}
	return r, &Error{Report: r}
}

func coverage(observations []obs.Observation, canonical CodeSet) Finding {
	f := Finding{Check: CheckISO3Coverage}
	seen := make(map[string]bool)
	for _, o := range observations {
		if canonical.Contains(o.ISO3) {
			continue
		}
		f.Count++
		if !seen[o.ISO3] {
			seen[o.ISO3] = true
			if len(f.Examples) < maxExamples {
				f.Examples = append(f.Examples, o.ISO3)
			}
		}
	}
	return f
}

func nullFields(observations []obs.Observation) Finding {
	f := Finding{Check: CheckNullFields}
	for _, o := range observations {
		var missing []string
		if o.Year == 0 {
			missing = append(missing, "year")
		}
		if o.Country == "" {
			missing = append(missing, "country")
		}
		if o.ISO3 == "" {
			missing = append(missing, "iso3")
		}
		if o.Metric == "" {
			missing = append(missing, "metric")
		}
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			missing = append(missing, "value")
		}
		if len(missing) == 0 {
			continue
		}
		f.Count++
		if len(f.Examples) < maxExamples {
			f.Examples = append(f.Examples, fmt.Sprintf("%s missing %s", o.Key(), strings.Join(missing, ",")))
		}
	}
	return f
}

func keyCollisions(observations []obs.Observation) Finding {
	f := Finding{Check: CheckKeyCollisions}
	counts := make(map[obs.Key]int, len(observations))
	for _, o := range observations {
		counts[o.Key()]++
	}
	var dup []obs.Key
	for k, n := range counts {
		if n > 1 {
			dup = append(dup, k)
		}
	}
	sort.Slice(dup, func(i, j int) bool {
		if dup[i].Year != dup[j].Year {
			return dup[i].Year < dup[j].Year
		}
		if dup[i].ISO3 != dup[j].ISO3 {
			return dup[i].ISO3 < dup[j].ISO3
		}
		return dup[i].Metric < dup[j].Metric
	})
	f.Count = len(dup)
	for _, k := range dup {
		if len(f.Examples) == maxExamples {
			break
		}
		f.Examples = append(f.Examples, fmt.Sprintf("%s x%d", k, counts[k]))
	}
	return f
}

func countryMapping(observations []obs.Observation) Finding {
	f := Finding{Check: CheckCountryMapping}
	byCode := make(map[string]map[string]bool)
	byName := make(map[string]map[string]bool)
	for _, o := range observations {
		if byCode[o.ISO3] == nil {
			byCode[o.ISO3] = make(map[string]bool)
		}
		byCode[o.ISO3][o.Country] = true
		if byName[o.Country] == nil {
			byName[o.Country] = make(map[string]bool)
		}
		byName[o.Country][o.ISO3] = true
	}
	var bad []string
	for code, names := range byCode {
		if len(names) > 1 {
			bad = append(bad, fmt.Sprintf("%s carries %d names", code, len(names)))
		}
	}
	for name, codes := range byName {
		if len(codes) > 1 {
			bad = append(bad, fmt.Sprintf("%q carries %d codes", name, len(codes)))
		}
	}
	sort.Strings(bad)
	f.Count = len(bad)
	if len(bad) > maxExamples {
		bad = bad[:maxExamples]
	}
	f.Examples = bad
	return f
}
