package metric

import (
	"context"
	"strings"
	"time"

	"github.com/mltrust/mltrust/pkg/resource"
)

var performanceKeywords = []string{
	"accuracy", "precision", "f1", "recall", "benchmark", "evaluation", "performance",
}

// evalFileFloor is the minimum score when the artifact ships test
// or evaluation files, regardless of README keyword hits.
const evalFileFloor = 0.7

// PerfClaims looks for keyword evidence that the artifact reports
// measured performance.
type PerfClaims struct {
	source Source
}

func NewPerfClaims(source Source) *PerfClaims {
	return &PerfClaims{source: source}
}

func (m *PerfClaims) Name() Name { return PerformanceClaims }

func (m *PerfClaims) Applies(kind resource.Kind) bool {
	return kind == resource.KindModel
}

func (m *PerfClaims) Evaluate(ctx context.Context, res resource.Resource) Result {
	start := time.Now()

	readme, err := m.source.Readme(ctx, res)
	if err != nil {
		return fail(PerformanceClaims, start, err)
	}

	score := keywordScore(readme)

	files, err := m.source.ListFiles(ctx, res)
	if err != nil {
		return fail(PerformanceClaims, start, err)
	}
	if hasEvalFiles(fileNames(files)) && score < evalFileFloor {
		score = evalFileFloor
	}

	return succeed(PerformanceClaims, score, start)
}

func keywordScore(text string) float64 {
	lower := strings.ToLower(text)
	matches := 0
	for _, kw := range performanceKeywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	return float64(matches) / float64(len(performanceKeywords))
}

func hasEvalFiles(files []string) bool {
	for _, f := range files {
		lower := strings.ToLower(f)
		if strings.Contains(lower, "test") || strings.Contains(lower, "eval") {
			return true
		}
	}
	return false
}
