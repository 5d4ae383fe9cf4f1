package learnpath

import "strings"

// DedupRecommendations drops recommendations whose name repeats an earlier one
// or names a course the user already saved. Names compare case-insensitively.
func DedupRecommendations(recs []Recommendation, saved []string) ([]Recommendation, int) {
	seen := make(map[string]bool, len(recs)+len(saved))
	for _, name := range saved {
		seen[dedupKey(name)] = true
	}

	kept := make([]Recommendation, 0, len(recs))
	dropped := 0
	for _, rec := range recs {
		key := dedupKey(rec.Name)
		if seen[key] {
			VerboseLog("Recommendation %q: DUPLICATE", rec.Name)
			dropped++
			continue
		}
		seen[key] = true
		kept = append(kept, rec)
	}
	return kept, dropped
}

func dedupKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
