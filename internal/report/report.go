// Package report renders a detection result for people and pipelines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/detagtor/detagtor/internal/match"
)

// Format selects the output rendering of a detection result.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSarif Format = "sarif"
)

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSarif, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", s)
	}
}

// Write renders res to w in the given format, limiting the ranking to the
// top candidates. top <= 0 means all.
func Write(w io.Writer, res *match.Result, format Format, top int) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, res, top)
	case FormatSarif:
		return writeSarif(w, res, top)
	default:
		return writeText(w, res, top)
	}
}

func limitRanked(res *match.Result, top int) []match.ScoredTag {
	if top <= 0 || top >= len(res.Ranked) {
		return res.Ranked
	}
	return res.Ranked[:top]
}

func writeJSON(w io.Writer, res *match.Result, top int) error {
	out := *res
	out.Ranked = limitRanked(res, top)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(&out)
}

func writeText(w io.Writer, res *match.Result, top int) error {
	if res.Undetermined {
		fmt.Fprintln(w, "Result is undetermined: no observed file matched any indexed tag.")
	} else if res.Ambiguous {
		fmt.Fprintln(w, "Result is ambiguous: the top candidates are tied on score.")
	}

	fmt.Fprintf(w, "%-24s %8s %8s %10s %12s\n", "TAG", "SCORE", "MATCH", "MISMATCH", "UNOBSERVED")
	for _, st := range limitRanked(res, top) {
		fmt.Fprintf(w, "%-24s %8d %8d %10d %12d\n", st.Tag, st.Score, st.Matches, st.Mismatches, st.Unobserved)
	}
	return nil
}
