package index

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/detagtor/detagtor/internal/fingerprint"
)

// File is one included file of a tag, as yielded by a history source.
type File struct {
	Path    string
	Content []byte
}

// Source yields the included files of one tag of the source history.
type Source interface {
	Files(tag string) ([]File, error)
}

// BuildResult carries the built index together with the tags that had to
// be skipped because their content could not be enumerated.
type BuildResult struct {
	Index   *Index
	Skipped map[string]error
}

// Build fingerprints every included file of every tag and assembles the
// index. Tags are processed independently on up to workers goroutines;
// each tag's file set is produced by exactly one goroutine and merged
// under a lock, so no submap ever has concurrent writers.
//
// A tag whose enumeration fails is skipped and recorded in the result;
// the build only fails as a whole when not a single tag succeeds.
func Build(logger hclog.Logger, src Source, tags []string, workers int) (*BuildResult, error) {
	if workers < 1 {
		workers = 1
	}

	result := &BuildResult{
		Index:   New(),
		Skipped: make(map[string]error),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	guard := make(chan struct{}, workers)

	for _, tag := range tags {
		guard <- struct{}{}
		wg.Add(1)
		go func(tag string) {
			defer wg.Done()
			defer func() { <-guard }()

			files, err := src.Files(tag)
			if err != nil {
				logger.Warn("skipping tag, failed to enumerate files", "tag", tag, "error", err)
				mu.Lock()
				result.Skipped[tag] = err
				mu.Unlock()
				return
			}

			set := make(FileSet, len(files))
			for _, f := range files {
				if _, dup := set[f.Path]; dup {
					logger.Warn("duplicate path within tag, keeping later content", "tag", tag, "path", f.Path)
				}
				set[f.Path] = fingerprint.Sum(f.Content)
			}

			mu.Lock()
			result.Index.Tags[tag] = set
			mu.Unlock()
			logger.Debug("tag indexed", "tag", tag, "files", len(set))
		}(tag)
	}
	wg.Wait()

	if len(result.Index.Tags) == 0 {
		return result, ErrNoTags
	}
	return result, nil
}
