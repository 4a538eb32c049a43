package scorer

import (
	"sort"

	"github.com/sells-group/practice-intel/internal/model"
)

// Dedupe merges candidates from all strategies by normalized domain,
// keeping the highest-scoring instance of each. Ties keep the first
// encountered, so the result is independent of strategy arrival order
// given the same multiset of candidates, and re-applying Dedupe to its
// own output is a no-op.
func Dedupe(candidates []model.Candidate) []model.Candidate {
	best := make(map[string]model.Candidate, len(candidates))
	order := make([]string, 0, len(candidates))

	for _, c := range candidates {
		key := c.Domain
		if key == "" {
			key = c.URL
		}
		existing, seen := best[key]
		if !seen {
			best[key] = c
			order = append(order, key)
			continue
		}
		if c.Score > existing.Score {
			best[key] = c
		}
	}

	out := make([]model.Candidate, 0, len(best))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// Rank orders candidates: practice websites before everything else, then
// descending score, then domain. The final domain tie-break makes the
// ranking independent of the order results arrived in.
func Rank(candidates []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPracticeWebsite != out[j].IsPracticeWebsite {
			return out[i].IsPracticeWebsite
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// DedupeAndRank is the full reconciliation pass. The head of the result
// is the primary candidate exposed to callers.
func DedupeAndRank(candidates []model.Candidate) []model.Candidate {
	return Rank(Dedupe(candidates))
}
