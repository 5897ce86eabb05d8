package match

import (
	"github.com/google/uuid"

	"github.com/detagtor/detagtor/internal/index"
	"github.com/detagtor/detagtor/internal/observe"
)

// Result is one detection run's outcome: the full ranking plus the
// caveats a reporting layer must surface.
type Result struct {
	RunID  string      `json:"run_id"`
	Target string      `json:"target"`
	Ranked []ScoredTag `json:"ranked"`

	// Undetermined is set when no observation corroborated any tag; the
	// ranking then only reflects the deterministic tie-break order and
	// must not be presented as a confident answer.
	Undetermined bool `json:"undetermined"`
	// Ambiguous is set when the two best tags have equal score.
	Ambiguous bool `json:"ambiguous"`
}

// Evaluate scores the observations against the index and derives the
// result caveats.
func Evaluate(idx *index.Index, obs observe.Set, target string) *Result {
	ranked := Score(idx, obs)

	res := &Result{
		RunID:  uuid.New().String(),
		Target: target,
		Ranked: ranked,
	}

	undetermined := true
	for _, st := range ranked {
		if st.Matches > 0 {
			undetermined = false
			break
		}
	}
	res.Undetermined = undetermined

	if len(ranked) >= 2 && ranked[0].Score == ranked[1].Score {
		res.Ambiguous = true
	}
	return res
}
