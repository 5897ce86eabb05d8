package history

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-hclog"

	"github.com/detagtor/detagtor/internal/filter"
	"github.com/detagtor/detagtor/internal/index"
)

// GitProvider enumerates the tags of a local git repository and yields
// each tag's filtered file tree. Files are read straight from the object
// store, so the worktree is never touched and tags can be read
// concurrently.
type GitProvider struct {
	logger hclog.Logger
	repo   *git.Repository
	rules  *filter.Rules
}

// Open opens the repository at path. The rules decide which files of each
// tag participate; nil means the default rules.
func Open(logger hclog.Logger, path string, rules *filter.Rules) (*GitProvider, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %q: %w", path, err)
	}
	if rules == nil {
		rules = filter.Default()
	}
	return &GitProvider{logger: logger, repo: repo, rules: rules}, nil
}

// Tags returns all tag names of the repository in ascending order.
func (p *GitProvider) Tags() ([]string, error) {
	iter, err := p.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate tags: %w", err)
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, ErrNoTagsFound
	}

	sort.Strings(tags)
	return tags, nil
}

// Files yields the included files of one tag with their raw content.
// Implements index.Source.
func (p *GitProvider) Files(tag string) ([]index.File, error) {
	commit, err := p.commitForTag(tag)
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree for tag %q: %w", tag, err)
	}

	var files []index.File
	err = tree.Files().ForEach(func(f *object.File) error {
		path := filter.Normalize(f.Name)
		if !p.rules.Match(path) {
			return nil
		}

		r, err := f.Reader()
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", path, err)
		}
		defer r.Close()

		content, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", path, err)
		}

		files = append(files, index.File{Path: path, Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tree for tag %q: %w", tag, err)
	}

	p.logger.Debug("tag files collected", "tag", tag, "files", len(files))
	return files, nil
}

// commitForTag resolves a lightweight or annotated tag to its commit.
func (p *GitProvider) commitForTag(tag string) (*object.Commit, error) {
	ref, err := p.repo.Reference(plumbing.NewTagReferenceName(tag), true)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag %q: %w", tag, err)
	}

	if tagObj, err := p.repo.TagObject(ref.Hash()); err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve annotated tag %q: %w", tag, err)
		}
		return commit, nil
	}

	commit, err := p.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("tag %q does not point to a commit: %w", tag, err)
	}
	return commit, nil
}
