package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/detagtor/detagtor/internal/match"
)

const (
	toolName = "detagtor"
	toolURI  = "https://github.com/detagtor/detagtor"
	ruleID   = "version-candidate"
)

// writeSarif renders the ranking as a SARIF run so version findings can
// flow into the same pipelines as other scanner output. Each candidate
// tag with positive evidence becomes one result; the caveats are carried
// as run properties.
func writeSarif(w io.Writer, res *match.Result, top int) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	run.AddRule(ruleID).
		WithDescription("A tagged release whose indexed files match content observed on the target.")

	run.Properties = sarif.Properties{
		"runId":        res.RunID,
		"target":       res.Target,
		"undetermined": res.Undetermined,
		"ambiguous":    res.Ambiguous,
	}

	for i, st := range limitRanked(res, top) {
		level := "note"
		if i == 0 && !res.Undetermined && !res.Ambiguous {
			level = "warning"
		}

		message := fmt.Sprintf(
			"Target %s matches tag %s with score %d (%d matching, %d mismatching, %d unobserved files).",
			res.Target, st.Tag, st.Score, st.Matches, st.Mismatches, st.Unobserved,
		)

		result := sarif.NewRuleResult(ruleID).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel(level)
		result.Properties = sarif.Properties{
			"tag":        st.Tag,
			"score":      st.Score,
			"matches":    st.Matches,
			"mismatches": st.Mismatches,
			"unobserved": st.Unobserved,
		}
		run.AddResult(result)
	}

	report.AddRun(run)
	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return nil
}
