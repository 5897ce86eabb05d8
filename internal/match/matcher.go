// Package match ranks indexed tags against a set of remote observations.
//
// The scoring policy is deliberately symmetric: an observed file whose
// content equals a tag's indexed content is evidence for that tag (+1),
// an observed file whose content provably differs is evidence against it
// (−1), and a file that could not be observed says nothing (0). The
// penalty is what lets files that actually changed between releases
// dominate the ranking; counting matches alone would over-reward files
// that stay identical across many tags.
package match

import (
	"sort"

	"github.com/detagtor/detagtor/internal/index"
	"github.com/detagtor/detagtor/internal/observe"
)

// ScoredTag is the per-tag outcome of one scoring pass.
type ScoredTag struct {
	Tag        string `json:"tag"`
	Score      int    `json:"score"`
	Matches    int    `json:"matches"`
	Mismatches int    `json:"mismatches"`
	Unobserved int    `json:"unobserved"`
}

// Score computes a ScoredTag for every tag in the index and returns them
// best-first. Ordering is deterministic: descending score, then
// descending match count, then ascending tag name. Scoring never fails
// on well-formed input; an empty index yields an empty slice.
func Score(idx *index.Index, obs observe.Set) []ScoredTag {
	scored := make([]ScoredTag, 0, len(idx.Tags))
	for tag, files := range idx.Tags {
		st := ScoredTag{Tag: tag}
		for path, indexed := range files {
			o, attempted := obs[path]
			switch {
			case !attempted || o.State == observe.Unobserved:
				st.Unobserved++
			case o.Fingerprint == indexed:
				st.Matches++
			default:
				st.Mismatches++
			}
		}
		st.Score = st.Matches - st.Mismatches
		scored = append(scored, st)
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Matches != b.Matches {
			return a.Matches > b.Matches
		}
		return a.Tag < b.Tag
	})
	return scored
}
