package filter

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rules selects which repository files participate in indexing. All
// patterns use glob syntax with brace alternates, e.g. "*.{css,js}".
// Name rules match a file's base name, Dir rules match each directory
// segment of its path, Prefix rules match the path itself.
type Rules struct {
	Include       []string
	Exclude       []string
	IncludeDir    []string
	ExcludeDir    []string
	IncludePrefix []string
	ExcludePrefix []string
}

// Default returns the rules applied when the caller specifies none:
// everything except the .git directory.
func Default() *Rules {
	return &Rules{ExcludeDir: []string{".git"}}
}

// Match reports whether the normalized relative path p is included.
func (r *Rules) Match(p string) bool {
	p = Normalize(p)
	if p == "" || p == "." {
		return false
	}

	dir, base := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")

	if len(r.IncludePrefix) > 0 && !hasAnyPrefix(p, r.IncludePrefix) {
		return false
	}
	if len(r.ExcludePrefix) > 0 && hasAnyPrefix(p, r.ExcludePrefix) {
		return false
	}

	for _, seg := range splitSegments(dir) {
		if len(r.IncludeDir) > 0 && !matchAny(seg, r.IncludeDir) {
			return false
		}
		if matchAny(seg, r.ExcludeDir) {
			return false
		}
	}

	if len(r.Include) > 0 && !matchAny(base, r.Include) {
		return false
	}
	if matchAny(base, r.Exclude) {
		return false
	}
	return true
}

// Normalize converts p to the canonical index form: forward slashes, no
// leading "./" and no leading slash.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return path.Clean(p)
}

func splitSegments(dir string) []string {
	if dir == "" || dir == "." {
		return nil
	}
	return strings.Split(dir, "/")
}

func hasAnyPrefix(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(Normalize(prefix), "/")
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

func matchAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
