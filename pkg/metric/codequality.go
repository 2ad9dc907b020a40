package metric

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mltrust/mltrust/pkg/gitrepo"
	"github.com/mltrust/mltrust/pkg/resource"
)

const (
	cqComplexityWeight  = 0.70
	cqReliabilityWeight = 0.05
	cqTestabilityWeight = 0.05
	cqPortabilityWeight = 0.10
	cqReusabilityWeight = 0.10

	reliabilityTestFiles = 0.7
	reliabilityFramework = 1.0
	readmeReuseBonus     = 0.5
)

var (
	testFrameworkMarkers = []string{"pytest", "unittest", "mocha", "jest", "testify"}
	ciConfigPaths        = []string{".github", ".gitlab-ci.yml", "azure-pipelines.yml"}

	funcDeclRe = regexp.MustCompile(`(?m)^\s*(func\s|def\s|function\s|fn\s|public\s+\w+\s+\w+\s*\()`)
	branchRe   = regexp.MustCompile(`\b(if|for|while|case|elif|except|catch|switch)\b|&&|\|\|`)
)

// Analyzer scores the maintainability of a checked-out source tree
// in [0,1]. External scanners plug in here; the default is a
// language-agnostic heuristic.
type Analyzer interface {
	Analyze(dir string) (float64, error)
}

// CodeQualityScore clones a code repository and scores it on
// complexity, test presence, CI configuration, environment
// portability, and documentation.
type CodeQualityScore struct {
	clone    Cloner
	depth    int
	analyzer Analyzer
}

func NewCodeQuality(depth int) *CodeQualityScore {
	return &CodeQualityScore{
		clone:    gitrepo.ShallowClone,
		depth:    depth,
		analyzer: heuristicAnalyzer{},
	}
}

func (m *CodeQualityScore) Name() Name { return CodeQuality }

func (m *CodeQualityScore) Applies(kind resource.Kind) bool {
	return kind == resource.KindCode
}

func (m *CodeQualityScore) Evaluate(ctx context.Context, res resource.Resource) Result {
	start := time.Now()

	cloneURL, err := resource.CloneTarget(res)
	if err != nil {
		return fail(CodeQuality, start, err)
	}

	clone, err := m.clone(ctx, cloneURL, m.depth)
	if err != nil {
		return fail(CodeQuality, start, err)
	}
	defer clone.Close()

	return succeed(CodeQuality, m.scoreTree(clone.Dir), start)
}

func (m *CodeQualityScore) scoreTree(dir string) float64 {
	complexity, err := m.analyzer.Analyze(dir)
	if err != nil {
		complexity = 0.0
	}

	score := complexity*cqComplexityWeight +
		reliabilityScore(dir)*cqReliabilityWeight +
		testabilityScore(dir)*cqTestabilityWeight +
		portabilityScore(dir)*cqPortabilityWeight +
		reusabilityScore(dir)*cqReusabilityWeight

	return clamp01(score)
}

// reliabilityScore looks for evidence of testing: any file with
// "test" in its name, upgraded when a known framework is named in
// the top-level listing.
func reliabilityScore(dir string) float64 {
	score := 0.0
	filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), "test") {
			score = reliabilityTestFiles
			return filepath.SkipAll
		}
		return nil
	})

	entries, err := os.ReadDir(dir)
	if err != nil {
		return score
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.ToLower(e.Name()))
	}
	listing := strings.Join(names, " ")
	for _, fw := range testFrameworkMarkers {
		if strings.Contains(listing, fw) {
			return reliabilityFramework
		}
	}
	return score
}

func testabilityScore(dir string) float64 {
	for _, ci := range ciConfigPaths {
		if _, err := os.Stat(filepath.Join(dir, ci)); err == nil {
			return 1.0
		}
	}
	return 0.0
}

// portabilityScore rewards reproducible environments: a container
// build file and a dependency manifest are each worth half.
func portabilityScore(dir string) float64 {
	score := 0.0
	if _, err := os.Stat(filepath.Join(dir, "Dockerfile")); err == nil {
		score += 0.5
	}
	for _, manifest := range []string{"requirements.txt", "environment.yml", "go.mod", "package.json"} {
		if _, err := os.Stat(filepath.Join(dir, manifest)); err == nil {
			score += 0.5
			break
		}
	}
	return score
}

// reusabilityScore is the better of the source comment ratio and a
// flat bonus for a top-level README.
func reusabilityScore(dir string) float64 {
	readmeBonus := 0.0
	if _, err := os.Stat(filepath.Join(dir, "README.md")); err == nil {
		readmeBonus = readmeReuseBonus
	}

	stats := scanSources(dir)
	ratio := 0.0
	if stats.lines > 0 {
		// a third of lines commented already reads as thorough
		ratio = clamp01(3.0 * float64(stats.commentLines) / float64(stats.lines))
	}
	if ratio > readmeBonus {
		return ratio
	}
	return readmeBonus
}

// heuristicAnalyzer approximates the bands an external complexity
// scanner would produce, from branch density and function size.
type heuristicAnalyzer struct{}

func (heuristicAnalyzer) Analyze(dir string) (float64, error) {
	stats := scanSources(dir)
	if stats.files == 0 {
		return 0.0, nil
	}

	funcs := stats.functions
	if funcs < 1 {
		funcs = 1
	}
	avgCCN := 1.0 + float64(stats.branches)/float64(funcs)
	avgNLOC := float64(stats.codeLines) / float64(funcs)

	// weighted the way multi-language scanners summarize: paths
	// through a function dominate, then function size, then the
	// count of outliers
	score := 0.5*ccnBandScore(avgCCN) +
		0.3*lengthBandScore(avgNLOC) +
		0.2*warningBandScore(stats.longFunctions)
	return score, nil
}

func ccnBandScore(avg float64) float64 {
	switch {
	case avg <= 5:
		return 1.0
	case avg <= 10:
		return 0.8
	case avg <= 20:
		return 0.5
	default:
		return 0.2
	}
}

func lengthBandScore(avg float64) float64 {
	switch {
	case avg <= 30:
		return 1.0
	case avg <= 40:
		return 0.8
	case avg <= 100:
		return 0.5
	default:
		return 0.2
	}
}

func warningBandScore(warnings int) float64 {
	switch {
	case warnings == 0:
		return 1.0
	case warnings <= 2:
		return 0.7
	case warnings <= 5:
		return 0.4
	default:
		return 0.1
	}
}

type sourceStats struct {
	files         int
	functions     int
	branches      int
	lines         int
	codeLines     int
	commentLines  int
	longFunctions int
}

const longFileThreshold = 800

// scanSources walks the tree once collecting the raw counts the
// band scores derive from. Unreadable files are skipped.
func scanSources(dir string) sourceStats {
	var stats sourceStats

	filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !busCodeExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return nil
		}
		defer f.Close()

		stats.files++
		fileLines := 0
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			stats.lines++
			fileLines++
			switch {
			case line == "":
			case strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") ||
				strings.HasPrefix(line, "*") || strings.HasPrefix(line, "/*"):
				stats.commentLines++
			default:
				stats.codeLines++
				stats.branches += len(branchRe.FindAllString(line, -1))
				if funcDeclRe.MatchString(line) {
					stats.functions++
				}
			}
		}
		if fileLines > longFileThreshold {
			stats.longFunctions++
		}
		return nil
	})

	return stats
}
