package metric

import (
	"sort"
	"strings"
)

// FindCaseDuplicates groups labels whose lower-case forms coincide and
// returns the rewrite map: every non-winning variant to the winner. The
// winner is the variant with the highest observation count; ties break
// to the lexicographically smallest variant so the choice is stable
// across runs. Single grouped count-and-argmax pass, O(distinct labels).
func FindCaseDuplicates(counts map[string]int) map[string]string {
	groups := make(map[string][]string)
	for label := range counts {
		folded := strings.ToLower(label)
		groups[folded] = append(groups[folded], label)
	}

	rewrite := make(map[string]string)
	for _, variants := range groups {
		if len(variants) < 2 {
			continue
		}
		sort.Strings(variants)
		winner := variants[0]
		for _, v := range variants[1:] {
			if counts[v] > counts[winner] {
				winner = v
			}
		}
		for _, v := range variants {
			if v != winner {
				rewrite[v] = winner
			}
		}
	}
	return rewrite
}
