package harmonize

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/gaid/internal/geo"
	"github.com/roach88/gaid/internal/metric"
	"github.com/roach88/gaid/internal/obs"
	"github.com/roach88/gaid/internal/source"
)

// Field names recognized in raw tables.
const (
	fieldYear    = "Year"
	fieldCountry = "Country"
	fieldISO3    = "ISO3"
	fieldMetric  = "Metric"
	fieldValue   = "Value"
)

// Stats counts per-run row outcomes, by drop reason. Exposed
// programmatically; nothing here is a hidden logging side channel.
type Stats struct {
	Rows              int `json:"rows"`
	Kept              int `json:"kept"`
	UnresolvedCountry int `json:"unresolved_country"`
	NoisyMetric       int `json:"noisy_metric"`
	BadYear           int `json:"bad_year"`
	BadValue          int `json:"bad_value"`
}

// Dropped returns the total rows dropped, all reasons.
func (s Stats) Dropped() int {
	return s.UnresolvedCountry + s.NoisyMetric + s.BadYear + s.BadValue
}

// Add accumulates another source's stats into s.
func (s *Stats) Add(o Stats) {
	s.Rows += o.Rows
	s.Kept += o.Kept
	s.UnresolvedCountry += o.UnresolvedCountry
	s.NoisyMetric += o.NoisyMetric
	s.BadYear += o.BadYear
	s.BadValue += o.BadValue
}

// Harmonizer applies the geo resolver and metric canonicalizer to raw
// tables. Holds read-only snapshots only; safe for concurrent use.
type Harmonizer struct {
	resolver *geo.Resolver
	canon    *metric.Canonicalizer
}

// New builds a harmonizer over per-run snapshots.
func New(resolver *geo.Resolver, canon *metric.Canonicalizer) *Harmonizer {
	return &Harmonizer{resolver: resolver, canon: canon}
}

// Harmonize converts one raw table into observations, attaching the
// table's provenance to every row that survives.
func (h *Harmonizer) Harmonize(t *source.Table) ([]obs.Observation, Stats) {
	prov := t.Desc.Provenance()
	out := make([]obs.Observation, 0, len(t.Rows))
	var stats Stats

	for _, row := range t.Rows {
		stats.Rows++

		entry, ok := h.resolveCountry(row)
		if !ok {
			stats.UnresolvedCountry++
			continue
		}

		// Noise is judged on the raw label: a placeholder must not be
		// rescued by normalization into something that looks real.
		rawMetric := row.Get(fieldMetric)
		if h.canon.IsNoise(rawMetric) {
			stats.NoisyMetric++
			continue
		}
		label := h.canon.NormalizeText(rawMetric)
		label = h.canon.ApplyOverride(label, prov.SourceFile)
		if h.canon.IsNoise(label) {
			stats.NoisyMetric++
			continue
		}

		year, ok := coerceYear(row.Get(fieldYear))
		if !ok {
			stats.BadYear++
			continue
		}
		value, ok := coerceValue(row.Get(fieldValue))
		if !ok {
			stats.BadValue++
			continue
		}

		stats.Kept++
		out = append(out, obs.Observation{
			Year:       year,
			Country:    entry.Name,
			ISO3:       entry.ISO3,
			Metric:     label,
			Value:      value,
			Provenance: prov,
		})
	}
	return out, stats
}

// resolveCountry prefers an explicit ISO3 field, falling back to the
// free-text country name. Either way the display name comes from the
// resolver snapshot, so one code always yields one spelling.
func (h *Harmonizer) resolveCountry(row source.Row) (geo.Entry, bool) {
	if raw := strings.TrimSpace(row.Get(fieldISO3)); raw != "" {
		if entry, ok := h.resolver.Resolve(raw); ok {
			return entry, true
		}
	}
	return h.resolver.Resolve(row.Get(fieldCountry))
}

// coerceYear accepts integer years, including float renderings like
// "2020.0" that spreadsheet exports produce.
func coerceYear(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func coerceValue(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	// Thousands separators survive some exports.
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
