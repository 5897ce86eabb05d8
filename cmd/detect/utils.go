package detect

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	idx "github.com/detagtor/detagtor/internal/index"
	"github.com/detagtor/detagtor/internal/observe"
	"github.com/detagtor/detagtor/pkg/shared/config"
)

// loadIndex reads the knowledge base from a file or stdin.
func loadIndex(input string) (*idx.Index, error) {
	if input == "-" {
		return idx.Decode(os.Stdin)
	}
	return idx.Load(input)
}

// mergeHeaders combines config headers with -H flags; flags win.
func mergeHeaders(fromConfig map[string]string, flags []string) (map[string]string, error) {
	headers := make(map[string]string, len(fromConfig)+len(flags))
	for k, v := range fromConfig {
		headers[k] = v
	}
	for _, raw := range flags {
		name, value, ok := strings.Cut(raw, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("malformed header %q, expected 'Name: value'", raw)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

// compileRewrites turns configured pattern rules into rewrite rules.
func compileRewrites(rules []config.PatternRule) ([]observe.RewriteRule, error) {
	rewrites := make([]observe.RewriteRule, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q does not compile: %w", rule.Pattern, err)
		}
		rewrites = append(rewrites, observe.RewriteRule{Pattern: re, Replacement: rule.Replacement})
	}
	return rewrites, nil
}

// candidateTags intersects, over every observed path whose fingerprint is
// known to the index, the sets of tags carrying that exact content. The
// boolean is false while no observation has narrowed anything yet.
func candidateTags(knowledge *idx.Index, set observe.Set) (map[string]struct{}, bool) {
	var candidates map[string]struct{}
	narrowed := false

	for path, obs := range set {
		if obs.State != observe.Observed {
			continue
		}
		tags := knowledge.TagsFor(path, obs.Fingerprint)
		if len(tags) == 0 {
			continue
		}

		if !narrowed {
			candidates = make(map[string]struct{}, len(tags))
			for _, tag := range tags {
				candidates[tag] = struct{}{}
			}
			narrowed = true
			continue
		}

		next := make(map[string]struct{})
		for _, tag := range tags {
			if _, ok := candidates[tag]; ok {
				next[tag] = struct{}{}
			}
		}
		candidates = next
	}
	return candidates, narrowed
}
