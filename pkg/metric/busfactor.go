package metric

import (
	"context"
	"math"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mltrust/mltrust/pkg/gitrepo"
	"github.com/mltrust/mltrust/pkg/resource"
)

// Degree-of-Authorship linear model (Jabrayilzade et al.,
// ICSE-SEIP 2022): DOA = 3.293 + 1.098*FA + 0.164*DL - 0.321*ln(1+AC).
const (
	doaBase        = 3.293
	doaFirstAuthor = 1.098
	doaOwnEdits    = 0.164
	doaOtherEdits  = 0.321

	// an author owns a file when their DOA clears the absolute
	// threshold and 75% of the file's maximum DOA
	doaThreshold   = 3.293
	doaMaxFraction = 0.75

	// the simulation stops once more than half of all files are
	// abandoned
	abandonFraction = 0.5
)

var busCodeExts = map[string]bool{
	".py": true, ".ipynb": true, ".md": true, ".rst": true, ".txt": true,
	".json": true, ".yaml": true, ".yml": true, ".ini": true, ".toml": true,
	".cfg": true, ".sh": true, ".bat": true, ".ps1": true, ".js": true,
	".ts": true, ".jsx": true, ".tsx": true, ".java": true, ".scala": true,
	".kt": true, ".c": true, ".h": true, ".hpp": true, ".hh": true,
	".cc": true, ".cpp": true, ".m": true, ".mm": true, ".go": true,
	".rs": true, ".rb": true, ".php": true, ".pl": true, ".r": true,
	".swift": true, ".css": true, ".scss": true, ".html": true, ".xml": true,
}

var busBinaryExts = map[string]bool{
	".bin": true, ".safetensors": true, ".pt": true, ".pth": true,
	".onnx": true, ".tflite": true, ".pb": true, ".tar": true, ".gz": true,
	".xz": true, ".zip": true, ".7z": true, ".rar": true, ".pdf": true,
}

var ghLinkRe = regexp.MustCompile(`(?i)https?://github\.com/[^\s)\]"'<>]+`)

// card fields checked, in order, for an explicit code repository
var cardRepoFields = []string{"repository", "source_code", "code", "paper_repository"}

// Cloner produces a scratch-directory clone; swapped out in tests.
type Cloner func(ctx context.Context, url string, depth int) (*gitrepo.Clone, error)

// BusFactorScore estimates contributor-concentration risk: how
// many top file owners can be removed before most of the codebase
// is left without a recognized owner.
type BusFactorScore struct {
	source    Source
	clone     Cloner
	depth     int
	sinceDays int
}

func NewBusFactor(source Source, depth, sinceDays int) *BusFactorScore {
	return &BusFactorScore{
		source:    source,
		clone:     gitrepo.ShallowClone,
		depth:     depth,
		sinceDays: sinceDays,
	}
}

func (m *BusFactorScore) Name() Name { return BusFactor }

func (m *BusFactorScore) Applies(kind resource.Kind) bool {
	return kind == resource.KindModel || kind == resource.KindCode
}

func (m *BusFactorScore) Evaluate(ctx context.Context, res resource.Resource) Result {
	start := time.Now()

	cloneURL, err := m.resolveCodeRepo(ctx, res)
	if err != nil {
		return fail(BusFactor, start, err)
	}

	clone, err := m.clone(ctx, cloneURL, m.depth)
	if err != nil {
		return fail(BusFactor, start, err)
	}
	defer clone.Close()

	since := time.Now().AddDate(0, 0, -m.sinceDays)
	stats, err := clone.FileStats(since, isCodeLike)
	if err != nil {
		return fail(BusFactor, start, err)
	}
	if len(stats) == 0 {
		return succeed(BusFactor, 0.0, start)
	}

	owners := ownerSets(stats)
	raw := simulateRemoval(owners)
	return succeed(BusFactor, normalizeBusFactor(raw, owners), start)
}

// resolveCodeRepo finds the code repository to analyze: the
// resource itself when it is code, otherwise a GitHub link from
// the model/dataset card (structured fields first, then free
// text), falling back to the resource's own git location.
func (m *BusFactorScore) resolveCodeRepo(ctx context.Context, res resource.Resource) (string, error) {
	if res.Kind == resource.KindCode {
		return resource.CloneTarget(res)
	}

	if info, err := m.source.Info(ctx, res); err == nil {
		for _, field := range cardRepoFields {
			v := info.CardString(field)
			if strings.Contains(strings.ToLower(v), "github.com") {
				if normalized, err := resource.NormalizeGitHubClone(v); err == nil {
					return normalized, nil
				}
			}
		}
		if readme, err := m.source.Readme(ctx, res); err == nil {
			if link := ghLinkRe.FindString(readme); link != "" {
				if normalized, err := resource.NormalizeGitHubClone(link); err == nil {
					return normalized, nil
				}
			}
		}
	}

	return resource.CloneTarget(res)
}

// isCodeLike keeps the history pass cheap and relevant: binary and
// weight artifacts are excluded, known source/text extensions are
// included, extensionless files (Makefile, LICENSE) pass through.
func isCodeLike(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if busBinaryExts[ext] {
		return false
	}
	if ext == "" {
		return true
	}
	return busCodeExts[ext]
}

func doa(firstAuthor bool, ownEdits, otherEdits int) float64 {
	fa := 0.0
	if firstAuthor {
		fa = 1.0
	}
	return doaBase + doaFirstAuthor*fa + doaOwnEdits*float64(ownEdits) -
		doaOtherEdits*math.Log(1+float64(otherEdits))
}

// ownerSets computes each file's owner set: contributors whose DOA
// exceeds both the absolute threshold and 75% of the file's
// maximum DOA. Files may end up ownerless.
func ownerSets(stats map[string]*gitrepo.FileStat) map[string]map[string]bool {
	owners := make(map[string]map[string]bool, len(stats))

	for file, fs := range stats {
		owners[file] = make(map[string]bool)
		if fs.Total == 0 {
			continue
		}

		doaByAuthor := make(map[string]float64, len(fs.ByAuthor))
		maxDOA := math.Inf(-1)
		for author, edits := range fs.ByAuthor {
			d := doa(author == fs.Creator, edits, fs.Total-edits)
			doaByAuthor[author] = d
			if d > maxDOA {
				maxDOA = d
			}
		}

		for author, d := range doaByAuthor {
			if d > doaThreshold && d > doaMaxFraction*maxDOA {
				owners[file][author] = true
			}
		}
	}
	return owners
}

// simulateRemoval repeatedly removes the author owning the most
// non-abandoned files, abandoning every file whose owner set is a
// subset of the removed authors. It counts only removals the
// codebase survives: the removal that tips abandonment past half
// is not part of the bus factor.
func simulateRemoval(owners map[string]map[string]bool) int {
	files := make([]string, 0, len(owners))
	for f := range owners {
		files = append(files, f)
	}
	if len(files) == 0 {
		return 0
	}

	abandoned := make(map[string]bool)
	for f, set := range owners {
		if len(set) == 0 {
			abandoned[f] = true
		}
	}

	active := make(map[string]bool)
	for _, set := range owners {
		for a := range set {
			active[a] = true
		}
	}

	removed := make(map[string]bool)
	removals := 0
	threshold := abandonFraction * float64(len(files))

	for {
		if float64(len(abandoned)) > threshold || len(active) == 0 {
			return removals
		}

		top := maxCoverageAuthor(owners, abandoned, active)
		if top == "" {
			return removals
		}
		removed[top] = true
		delete(active, top)

		for _, f := range files {
			if abandoned[f] || len(owners[f]) == 0 {
				continue
			}
			if isSubset(owners[f], removed) {
				abandoned[f] = true
			}
		}

		if float64(len(abandoned)) > threshold {
			return removals
		}
		removals++
	}
}

// maxCoverageAuthor picks the active author owning the most
// non-abandoned files; ties break on the lexicographically
// smallest author id for reproducibility.
func maxCoverageAuthor(owners map[string]map[string]bool, abandoned map[string]bool, active map[string]bool) string {
	authors := make([]string, 0, len(active))
	for a := range active {
		authors = append(authors, a)
	}
	sort.Strings(authors)

	top := ""
	best := -1
	for _, a := range authors {
		coverage := 0
		for f, set := range owners {
			if !abandoned[f] && set[a] {
				coverage++
			}
		}
		if coverage > best {
			top, best = a, coverage
		}
	}
	return top
}

func isSubset(set, of map[string]bool) bool {
	for k := range set {
		if !of[k] {
			return false
		}
	}
	return true
}

// normalizeBusFactor scales the raw removal count by the number of
// distinct owning authors observed.
func normalizeBusFactor(raw int, owners map[string]map[string]bool) float64 {
	distinct := make(map[string]bool)
	for _, set := range owners {
		for a := range set {
			distinct[a] = true
		}
	}
	denom := len(distinct)
	if denom < 1 {
		denom = 1
	}
	return math.Min(1.0, float64(raw)/float64(denom))
}
