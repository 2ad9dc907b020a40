// Package gitrepo provides scratch-directory scoped repository
// clones and commit-history aggregation for the contributor and
// code-quality metrics.
package gitrepo

import (
	"context"
	"log/slog"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

// Clone is a repository checked out into an isolated scratch
// directory. Callers must Close it on every exit path; the
// directory is never shared or reused.
type Clone struct {
	Dir     string
	repo    *git.Repository
	scratch bool
}

// ShallowClone clones the repository with bounded history depth
// into a fresh temp directory. Large binary content stays remote:
// go-git never smudges LFS pointers.
func ShallowClone(ctx context.Context, url string, depth int) (*Clone, error) {
	dir, err := os.MkdirTemp("", "mltrust-clone-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scratch dir")
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        depth,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			slog.Warn("failed to remove scratch dir", "dir", dir, "error", rmErr)
		}
		return nil, errors.Wrapf(err, "failed to clone: %s", url)
	}

	return &Clone{Dir: dir, repo: repo, scratch: true}, nil
}

// Open wraps an existing local repository without taking ownership
// of its directory.
func Open(path string) (*Clone, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open repository: %s", path)
	}
	return &Clone{Dir: path, repo: repo}, nil
}

// Close removes the scratch directory for cloned repositories. It
// is safe to call multiple times.
func (c *Clone) Close() {
	if c == nil || !c.scratch || c.Dir == "" {
		return
	}
	if err := os.RemoveAll(c.Dir); err != nil {
		slog.Warn("failed to remove scratch dir", "dir", c.Dir, "error", err)
	}
	c.Dir = ""
}
