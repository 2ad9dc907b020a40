package gitrepo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	t    *testing.T
	dir  string
	wt   *git.Worktree
	when time.Time
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{
		t:    t,
		dir:  dir,
		wt:   wt,
		when: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *testRepo) commit(author, email string, files map[string]string) {
	r.t.Helper()
	for name, content := range files {
		p := filepath.Join(r.dir, name)
		require.NoError(r.t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(r.t, os.WriteFile(p, []byte(content), 0644))
		_, err := r.wt.Add(name)
		require.NoError(r.t, err)
	}
	r.when = r.when.Add(time.Hour)
	_, err := r.wt.Commit("change", &git.CommitOptions{
		Author: &object.Signature{Name: author, Email: email, When: r.when},
	})
	require.NoError(r.t, err)
}

func TestFileStats(t *testing.T) {
	r := newTestRepo(t)
	r.commit("Alice", "alice@example.com", map[string]string{"main.py": "print(1)"})
	r.commit("Bob", "bob@example.com", map[string]string{"main.py": "print(2)", "util.py": "x = 1"})
	r.commit("Alice", "ALICE@example.com", map[string]string{"main.py": "print(3)"})

	clone, err := Open(r.dir)
	require.NoError(t, err)

	stats, err := clone.FileStats(time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	main := stats["main.py"]
	require.NotNil(t, main)
	assert.Equal(t, 3, main.Total)
	assert.Equal(t, 2, main.ByAuthor["alice@example.com"], "author identity is case-insensitive")
	assert.Equal(t, 1, main.ByAuthor["bob@example.com"])
	assert.Equal(t, "alice@example.com", main.Creator)

	util := stats["util.py"]
	require.NotNil(t, util)
	assert.Equal(t, 1, util.Total)
	assert.Equal(t, "bob@example.com", util.Creator)
	assert.ElementsMatch(t, []string{"bob@example.com"}, util.Contributors())
}

func TestFileStats_WindowFallback(t *testing.T) {
	r := newTestRepo(t)
	r.commit("Alice", "alice@example.com", map[string]string{"main.py": "print(1)"})

	clone, err := Open(r.dir)
	require.NoError(t, err)

	// window entirely after the history: falls back to full history
	since := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	stats, err := clone.FileStats(since, nil)
	require.NoError(t, err)
	assert.Len(t, stats, 1)
}

func TestFileStats_IncludeFilter(t *testing.T) {
	r := newTestRepo(t)
	r.commit("Alice", "alice@example.com", map[string]string{
		"main.py":           "print(1)",
		"model.safetensors": "not really weights",
	})

	clone, err := Open(r.dir)
	require.NoError(t, err)

	stats, err := clone.FileStats(time.Time{}, func(path string) bool {
		return filepath.Ext(path) == ".py"
	})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Contains(t, stats, "main.py")
}

func TestShallowClone_LocalPath(t *testing.T) {
	r := newTestRepo(t)
	r.commit("Alice", "alice@example.com", map[string]string{"README.md": "# hi"})

	clone, err := ShallowClone(t.Context(), r.dir, 10)
	require.NoError(t, err)
	require.NotEmpty(t, clone.Dir)

	_, err = os.Stat(filepath.Join(clone.Dir, "README.md"))
	require.NoError(t, err)

	scratch := clone.Dir
	clone.Close()
	_, err = os.Stat(scratch)
	assert.True(t, os.IsNotExist(err), "scratch dir removed on close")

	// double close is a no-op
	clone.Close()
}

func TestShallowClone_BadURL(t *testing.T) {
	_, err := ShallowClone(t.Context(), filepath.Join(t.TempDir(), "missing"), 10)
	assert.Error(t, err)
}

func TestNormalizeAuthor(t *testing.T) {
	assert.Equal(t, "a@b.co", NormalizeAuthor(" A@B.co ", "Alice"))
	assert.Equal(t, "alice", NormalizeAuthor("", "Alice"))
	assert.Equal(t, "unknown", NormalizeAuthor("", " "))
}
