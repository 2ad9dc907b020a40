package gitrepo

import (
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
)

// FileStat aggregates the commit history of one tracked file.
type FileStat struct {
	// Total is the number of commits touching the file.
	Total int
	// ByAuthor counts commits per normalized author identity.
	ByAuthor map[string]int
	// Creator is the author of the earliest commit touching the
	// file within the analyzed history.
	Creator string
}

// Contributors returns the distinct author identities.
func (s *FileStat) Contributors() []string {
	out := make([]string, 0, len(s.ByAuthor))
	for a := range s.ByAuthor {
		out = append(out, a)
	}
	return out
}

type commitTouch struct {
	author string
	when   time.Time
	files  []string
}

// FileStats walks the commit history and aggregates per-file
// modification counts, per-author counts, and creating authors.
// Only files accepted by the include filter are tracked. Commits
// older than since are ignored unless the window yields nothing,
// in which case the full walked history is used.
func (c *Clone) FileStats(since time.Time, include func(path string) bool) (map[string]*FileStat, error) {
	iter, err := c.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read log")
	}
	defer iter.Close()

	var touches []commitTouch
	err = iter.ForEach(func(commit *object.Commit) error {
		stats, statErr := commit.Stats()
		if statErr != nil {
			// boundary commit of a shallow clone, skip
			return nil
		}

		t := commitTouch{
			author: NormalizeAuthor(commit.Author.Email, commit.Author.Name),
			when:   commit.Author.When,
		}
		for _, fs := range stats {
			if include == nil || include(fs.Name) {
				t.files = append(t.files, fs.Name)
			}
		}
		if len(t.files) > 0 {
			touches = append(touches, t)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk history")
	}

	windowed := make([]commitTouch, 0, len(touches))
	for _, t := range touches {
		if !t.when.Before(since) {
			windowed = append(windowed, t)
		}
	}
	if len(windowed) == 0 {
		windowed = touches
	}

	return aggregate(windowed), nil
}

func aggregate(touches []commitTouch) map[string]*FileStat {
	stats := make(map[string]*FileStat)
	created := make(map[string]time.Time)

	for _, t := range touches {
		for _, f := range t.files {
			s, ok := stats[f]
			if !ok {
				s = &FileStat{ByAuthor: make(map[string]int)}
				stats[f] = s
			}
			s.Total++
			s.ByAuthor[t.author]++

			// earliest touch in the walked history stands in for
			// the creating commit
			if first, ok := created[f]; !ok || t.when.Before(first) {
				created[f] = t.when
				s.Creator = t.author
			}
		}
	}
	return stats
}

// NormalizeAuthor maps a commit signature to a case-insensitive
// identity, preferring email over display name.
func NormalizeAuthor(email, name string) string {
	id := strings.TrimSpace(email)
	if id == "" {
		id = strings.TrimSpace(name)
	}
	if id == "" {
		id = "unknown"
	}
	return strings.ToLower(id)
}
