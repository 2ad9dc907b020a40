package metric

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/mltrust/mltrust/pkg/resource"
)

const (
	rampUpBase    = 0.15
	rampUpPerHit  = 0.06
	rampUpMaxTree = 120
)

// onboarding signals checked against the README plus file listing
var rampUpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpip install\b`),
	regexp.MustCompile(`(?i)\bconda (?:create|install)\b`),
	regexp.MustCompile(`(?i)\bgit clone\b`),
	regexp.MustCompile(`(?i)\bpython (?:-m )?\w+\.py\b`),
	regexp.MustCompile(`(?i)\busage\b`),
	regexp.MustCompile(`(?i)\bquick\s*start\b`),
	regexp.MustCompile(`(?i)\bexample\b`),
	regexp.MustCompile(`(?i)\brequirements\.txt\b`),
	regexp.MustCompile(`(?i)\benvironment\.yml\b`),
	regexp.MustCompile("```"),
	regexp.MustCompile(`(?i)\btroubleshoot`),
	regexp.MustCompile(`(?i)\bfaq\b`),
	regexp.MustCompile(`(?i)\bdocs?\b`),
	regexp.MustCompile(`(?i)\btutorial\b`),
}

// RampUpScore rates how quickly a new engineer could start using
// the model, from its README and file listing. A configured Judge
// is asked first; the keyword heuristic covers judge failures and
// unconfigured runs.
type RampUpScore struct {
	source Source
	judge  Judge
}

// NewRampUp builds the metric; judge may be nil.
func NewRampUp(source Source, judge Judge) *RampUpScore {
	return &RampUpScore{source: source, judge: judge}
}

func (m *RampUpScore) Name() Name { return RampUp }

func (m *RampUpScore) Applies(kind resource.Kind) bool {
	return kind == resource.KindModel
}

func (m *RampUpScore) Evaluate(ctx context.Context, res resource.Resource) Result {
	start := time.Now()

	readme, err := m.source.Readme(ctx, res)
	if err != nil {
		return fail(RampUp, start, err)
	}

	tree := ""
	if files, err := m.source.ListFiles(ctx, res); err == nil {
		names := fileNames(files)
		if len(names) > rampUpMaxTree {
			names = names[:rampUpMaxTree]
		}
		tree = strings.Join(names, "\n")
	}

	if m.judge != nil {
		if score, err := m.judge.Score(ctx, readme, tree); err == nil {
			return succeed(RampUp, clamp01(score), start)
		}
	}
	return succeed(RampUp, heuristicRampUp(readme, tree), start)
}

func heuristicRampUp(readme, tree string) float64 {
	txt := readme + "\n" + tree
	hits := 0
	for _, pat := range rampUpPatterns {
		if pat.MatchString(txt) {
			hits++
		}
	}
	return clamp01(rampUpBase + rampUpPerHit*float64(hits))
}
