package hub

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/go-github/v83/github"
	"github.com/pkg/errors"

	"github.com/mltrust/mltrust/pkg/net"
)

const rateLimitThreshold = 10

// GitHub wraps the GitHub REST client for code repositories.
type GitHub struct {
	client *github.Client
}

// NewGitHub returns a GitHub metadata reader. An empty token means
// anonymous access with its much lower rate limit.
func NewGitHub(ctx context.Context, token string) *GitHub {
	if token == "" {
		return &GitHub{client: github.NewClient(nil)}
	}
	return &GitHub{client: github.NewClient(net.GetOAuthClient(ctx, token))}
}

// Info fetches repository metadata: reported size (converted from
// KB to bytes) and license SPDX id.
func (g *GitHub) Info(ctx context.Context, id string) (*Info, error) {
	owner, repo, err := splitID(id)
	if err != nil {
		return nil, err
	}

	r, resp, err := g.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get repository: %s", id)
	}
	checkRateLimit(resp)

	info := &Info{
		ID:        id,
		SizeBytes: int64(r.GetSize()) * 1024,
		Likes:     int64(r.GetStargazersCount()),
		License:   r.GetLicense().GetSPDXID(),
	}
	if info.License == "" {
		info.License = r.GetLicense().GetName()
	}
	return info, nil
}

// ListFiles returns the recursive file listing of the default
// branch with blob sizes.
func (g *GitHub) ListFiles(ctx context.Context, id string) ([]FileEntry, error) {
	owner, repo, err := splitID(id)
	if err != nil {
		return nil, err
	}

	tree, resp, err := g.client.Git.GetTree(ctx, owner, repo, "HEAD", true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get tree: %s", id)
	}
	checkRateLimit(resp)

	var files []FileEntry
	for _, e := range tree.Entries {
		if e.GetType() != "blob" {
			continue
		}
		files = append(files, FileEntry{Path: e.GetPath(), Size: int64(e.GetSize())})
	}
	return files, nil
}

// Readme returns the decoded README content, or empty when the
// repository has none.
func (g *GitHub) Readme(ctx context.Context, id string) (string, error) {
	owner, repo, err := splitID(id)
	if err != nil {
		return "", err
	}

	content, resp, err := g.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to get readme: %s", id)
	}
	checkRateLimit(resp)

	text, err := content.GetContent()
	if err != nil {
		return "", errors.Wrap(err, "failed to decode readme")
	}
	return text, nil
}

func splitID(id string) (owner, repo string, err error) {
	parts := strings.SplitN(id, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("repository id must be owner/repo: %q", id)
	}
	return parts[0], parts[1], nil
}

func checkRateLimit(resp *github.Response) {
	if resp == nil {
		return
	}

	if resp.Rate.Remaining > rateLimitThreshold {
		return
	}

	resetAt := resp.Rate.Reset.Time
	wait := time.Until(resetAt)
	if wait <= 0 {
		return
	}

	jitter := time.Duration(rand.IntN(2000)) * time.Millisecond
	total := wait + jitter

	slog.Info("rate limit approaching, waiting",
		"remaining", resp.Rate.Remaining,
		"reset_at", resetAt.Format(time.RFC3339),
		"wait", total.String(),
	)

	time.Sleep(total)
}
