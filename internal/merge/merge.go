package merge

import (
	"fmt"
	"sort"

	"github.com/roach88/gaid/internal/metric"
	"github.com/roach88/gaid/internal/obs"
	"github.com/roach88/gaid/internal/rules"
)

// Counters reports what reconciliation did, for the run report.
type Counters struct {
	Input                  int `json:"input"`
	AliasRewrites          int `json:"alias_rewrites"`
	CollisionGroups        int `json:"collision_groups"`
	ResolvedIdentical      int `json:"resolved_identical"`
	ResolvedByPrecedence   int `json:"resolved_by_precedence"`
	Disambiguated          int `json:"disambiguated"`
	ExactDuplicatesRemoved int `json:"exact_duplicates_removed"`
	Output                 int `json:"output"`
}

// Result is the reconciled observation set plus its counters.
type Result struct {
	Observations []obs.Observation
	Counters     Counters
}

// Merge vertically unions harmonized tables and reconciles duplicates.
// precedence may be nil. The returned sequence is sorted in the
// published total order and satisfies the per-key uniqueness invariant;
// a violated postcondition is a bug and returns an error.
func Merge(tables [][]obs.Observation, precedence *rules.Config) (*Result, error) {
	var all []obs.Observation
	for _, t := range tables {
		all = append(all, t...)
	}

	res := &Result{Counters: Counters{Input: len(all)}}

	all = rewriteCaseDuplicates(all, &res.Counters)
	all = resolveCollisions(all, precedence, &res.Counters)
	all = dropExactDuplicates(all, &res.Counters)

	sort.SliceStable(all, func(i, j int) bool { return obs.Compare(all[i], all[j]) < 0 })

	// Postcondition: one observation per (year, iso3, metric).
	seen := make(map[obs.Key]struct{}, len(all))
	for _, o := range all {
		k := o.Key()
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("merge: residual key collision at %s", k)
		}
		seen[k] = struct{}{}
	}

	res.Observations = all
	res.Counters.Output = len(all)
	return res, nil
}

// rewriteCaseDuplicates collapses metric labels that differ only by case
// to the most frequent variant across the whole union.
func rewriteCaseDuplicates(all []obs.Observation, c *Counters) []obs.Observation {
	counts := make(map[string]int)
	for _, o := range all {
		counts[o.Metric]++
	}
	rewrite := metric.FindCaseDuplicates(counts)
	if len(rewrite) == 0 {
		return all
	}
	for i := range all {
		if canon, ok := rewrite[all[i].Metric]; ok {
			all[i].Metric = canon
			c.AliasRewrites++
		}
	}
	return all
}

// resolveCollisions groups by logical key and applies the resolution
// policy in order: identical values, precedence rule, disambiguation.
func resolveCollisions(all []obs.Observation, cfg *rules.Config, c *Counters) []obs.Observation {
	byKey := make(map[obs.Key][]int)
	order := make([]obs.Key, 0)
	for i, o := range all {
		k := o.Key()
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], i)
	}

	out := make([]obs.Observation, 0, len(all))
	for _, k := range order {
		idxs := byKey[k]
		if len(idxs) == 1 {
			out = append(out, all[idxs[0]])
			continue
		}

		group := make([]obs.Observation, len(idxs))
		for i, idx := range idxs {
			group[i] = all[idx]
		}
		// Canonical order inside the group so every resolution rule
		// picks the same member no matter how the inputs arrived.
		sort.SliceStable(group, func(i, j int) bool { return obs.Compare(group[i], group[j]) < 0 })

		c.CollisionGroups++
		out = append(out, resolveGroup(k, group, cfg, c)...)
	}
	return out
}

func resolveGroup(k obs.Key, group []obs.Observation, cfg *rules.Config, c *Counters) []obs.Observation {
	// (a) all values bit-identical: redundant assertions, keep one.
	if allSameValue(group) {
		c.ResolvedIdentical++
		return group[:1]
	}

	// (b) a precedence rule declares an authoritative source.
	if cfg != nil {
		if winner, ok := cfg.Winner(k.Metric); ok {
			var kept []obs.Observation
			for _, o := range group {
				if o.Provenance.Source == winner {
					kept = append(kept, o)
				}
			}
			// The rule only disambiguates if the winning source itself
			// agrees with itself; otherwise fall through to (c).
			if len(kept) > 0 && allSameValue(kept) {
				c.ResolvedByPrecedence++
				return kept[:1]
			}
		}
	}

	// (c) conflicting values, no rule: escalate by rewriting the metric
	// with source context so every value survives under its own key.
	c.Disambiguated++
	return disambiguate(group)
}

func allSameValue(group []obs.Observation) bool {
	for _, o := range group[1:] {
		if o.Value != group[0].Value {
			return false
		}
	}
	return true
}

// disambiguate appends source context to each member's metric so every
// distinct value survives under its own key. Members repeating the same
// source context with the same value are redundant and collapse to one;
// members repeating the context with a new value get an ordinal. Values
// are never merged or dropped.
func disambiguate(group []obs.Observation) []obs.Observation {
	type labelState struct {
		n      int
		values map[float64]struct{}
	}
	used := make(map[string]*labelState, len(group))
	out := make([]obs.Observation, 0, len(group))
	for _, o := range group {
		label := fmt.Sprintf("%s (%s, %s Report)", o.Metric, o.Provenance.Source, o.Provenance.SourceYear)
		if o.Provenance.SourceYear == "" {
			label = fmt.Sprintf("%s (%s)", o.Metric, o.Provenance.Source)
		}
		st := used[label]
		if st == nil {
			st = &labelState{values: make(map[float64]struct{})}
			used[label] = st
		}
		if _, dup := st.values[o.Value]; dup {
			continue
		}
		st.values[o.Value] = struct{}{}
		st.n++
		if st.n > 1 {
			label = fmt.Sprintf("%s [%d]", label, st.n)
		}
		o.Metric = label
		out = append(out, o)
	}
	return out
}

// dropExactDuplicates removes rows repeating the same core fields (year,
// country, iso3, metric, value), keeping the first occurrence. Provenance
// is deliberately not part of the key: two sources restating the same
// fact are one fact.
func dropExactDuplicates(all []obs.Observation, c *Counters) []obs.Observation {
	type coreKey struct {
		year                  int
		country, iso3, metric string
		value                 float64
	}
	seen := make(map[coreKey]struct{}, len(all))
	out := all[:0]
	for _, o := range all {
		k := coreKey{o.Year, o.Country, o.ISO3, o.Metric, o.Value}
		if _, dup := seen[k]; dup {
			c.ExactDuplicatesRemoved++
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}
	return out
}
