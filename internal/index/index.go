package index

import (
	"sort"

	"github.com/detagtor/detagtor/internal/fingerprint"
)

// SchemaVersion identifies the persisted index layout.
const SchemaVersion = 1

// FileSet maps a normalized relative path to the fingerprint of its
// content at one tag.
type FileSet map[string]fingerprint.Fingerprint

// Index is the knowledge base produced by an index run: for every tag of
// the source repository, the fingerprints of its included files. Built
// once, read-only afterwards.
type Index struct {
	Version int                `json:"version"`
	Tags    map[string]FileSet `json:"tags"`
}

// New returns an empty index at the current schema version.
func New() *Index {
	return &Index{
		Version: SchemaVersion,
		Tags:    make(map[string]FileSet),
	}
}

// TagNames returns all indexed tags in ascending name order.
func (idx *Index) TagNames() []string {
	names := make([]string, 0, len(idx.Tags))
	for tag := range idx.Tags {
		names = append(names, tag)
	}
	sort.Strings(names)
	return names
}

// Paths returns the union of paths across all tags in ascending order.
func (idx *Index) Paths() []string {
	seen := make(map[string]struct{})
	for _, files := range idx.Tags {
		for path := range files {
			seen[path] = struct{}{}
		}
	}
	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// TagsFor returns the tags whose indexed content at path has the given
// fingerprint, in ascending name order.
func (idx *Index) TagsFor(path string, fp fingerprint.Fingerprint) []string {
	var tags []string
	for tag, files := range idx.Tags {
		if got, ok := files[path]; ok && got == fp {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// RankedPaths returns the union of paths ordered by discriminative power:
// paths whose content varies most across tags come first, since a single
// retrieval of such a path narrows the candidate set the most. Ties are
// broken by path name so the order is stable.
func (idx *Index) RankedPaths() []string {
	type pathStat struct {
		path     string
		variants map[fingerprint.Fingerprint]struct{}
		coverage int
	}

	stats := make(map[string]*pathStat)
	for _, files := range idx.Tags {
		for path, fp := range files {
			st, ok := stats[path]
			if !ok {
				st = &pathStat{path: path, variants: make(map[fingerprint.Fingerprint]struct{})}
				stats[path] = st
			}
			st.coverage++
			st.variants[fp] = struct{}{}
		}
	}

	ranked := make([]*pathStat, 0, len(stats))
	for _, st := range stats {
		ranked = append(ranked, st)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		// variants * (variants/coverage): many distinct contents relative
		// to how many tags even carry the file.
		va, vb := len(a.variants), len(b.variants)
		wa := float64(va) * float64(va) / float64(a.coverage)
		wb := float64(vb) * float64(vb) / float64(b.coverage)
		if wa != wb {
			return wa > wb
		}
		return a.path < b.path
	})

	paths := make([]string, len(ranked))
	for i, st := range ranked {
		paths[i] = st.path
	}
	return paths
}
