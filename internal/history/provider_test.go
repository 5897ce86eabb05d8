package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detagtor/detagtor/internal/filter"
)

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Level: hclog.Error, DisableTime: true})
}

func testSignature() *object.Signature {
	return &object.Signature{
		Name:  "tester",
		Email: "tester@example.com",
		When:  time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func writeAndCommit(t *testing.T, dir string, wt *git.Worktree, contents map[string]string, msg string) plumbing.Hash {
	t.Helper()
	for path, content := range contents {
		full := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		_, err := wt.Add(path)
		require.NoError(t, err)
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{Author: testSignature()})
	require.NoError(t, err)
	return hash
}

// initTaggedRepo builds a repository with a lightweight tag v1.0 and an
// annotated tag v2.0 pointing at different trees.
func initTaggedRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	first := writeAndCommit(t, dir, wt, map[string]string{
		"js/app.js":    "console.log('v1');",
		"css/main.css": "body {}",
		"README.md":    "readme",
	}, "first release")
	_, err = repo.CreateTag("v1.0", first, nil)
	require.NoError(t, err)

	second := writeAndCommit(t, dir, wt, map[string]string{
		"js/app.js": "console.log('v2');",
	}, "second release")
	_, err = repo.CreateTag("v2.0", second, &git.CreateTagOptions{
		Tagger:  testSignature(),
		Message: "release 2.0",
	})
	require.NoError(t, err)

	return dir
}

func TestTags(t *testing.T) {
	dir := initTaggedRepo(t)

	p, err := Open(testLogger(), dir, nil)
	require.NoError(t, err)

	tags, err := p.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.0", "v2.0"}, tags)
}

func TestTagsEmptyRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	p, err := Open(testLogger(), dir, nil)
	require.NoError(t, err)

	_, err = p.Tags()
	assert.ErrorIs(t, err, ErrNoTagsFound)
}

func TestFilesLightweightTag(t *testing.T) {
	dir := initTaggedRepo(t)

	p, err := Open(testLogger(), dir, nil)
	require.NoError(t, err)

	files, err := p.Files("v1.0")
	require.NoError(t, err)

	byPath := make(map[string]string)
	for _, f := range files {
		byPath[f.Path] = string(f.Content)
	}
	assert.Equal(t, map[string]string{
		"js/app.js":    "console.log('v1');",
		"css/main.css": "body {}",
		"README.md":    "readme",
	}, byPath)
}

func TestFilesAnnotatedTagSeesNewTree(t *testing.T) {
	dir := initTaggedRepo(t)

	p, err := Open(testLogger(), dir, nil)
	require.NoError(t, err)

	files, err := p.Files("v2.0")
	require.NoError(t, err)

	byPath := make(map[string]string)
	for _, f := range files {
		byPath[f.Path] = string(f.Content)
	}
	assert.Equal(t, "console.log('v2');", byPath["js/app.js"])
}

func TestFilesAppliesFilterRules(t *testing.T) {
	dir := initTaggedRepo(t)

	rules := &filter.Rules{Include: []string{"*.{js,css}"}}
	p, err := Open(testLogger(), dir, rules)
	require.NoError(t, err)

	files, err := p.Files("v1.0")
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"js/app.js", "css/main.css"}, paths)
}

func TestFilesUnknownTag(t *testing.T) {
	dir := initTaggedRepo(t)

	p, err := Open(testLogger(), dir, nil)
	require.NoError(t, err)

	_, err = p.Files("v9.9")
	assert.Error(t, err)
}
