package metric

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/mltrust/mltrust/pkg/resource"
)

var datasetMentionRe = regexp.MustCompile(`(?i)dataset|corpus|benchmark|train set|eval set`)

// DatasetCodeLinkage checks whether an artifact documents its
// training data and ships example code: half a point each.
type DatasetCodeLinkage struct {
	source Source
}

func NewDatasetCodeLinkage(source Source) *DatasetCodeLinkage {
	return &DatasetCodeLinkage{source: source}
}

func (m *DatasetCodeLinkage) Name() Name { return DatasetAndCode }

func (m *DatasetCodeLinkage) Applies(kind resource.Kind) bool {
	return kind == resource.KindModel || kind == resource.KindDataset
}

func (m *DatasetCodeLinkage) Evaluate(ctx context.Context, res resource.Resource) Result {
	start := time.Now()

	readme, err := m.source.Readme(ctx, res)
	if err != nil {
		return fail(DatasetAndCode, start, err)
	}

	files, err := m.source.ListFiles(ctx, res)
	if err != nil {
		return fail(DatasetAndCode, start, err)
	}

	score := 0.0
	if datasetMentionRe.MatchString(readme) {
		score += 0.5
	}
	if hasExampleCode(fileNames(files)) {
		score += 0.5
	}

	return succeed(DatasetAndCode, score, start)
}

func hasExampleCode(files []string) bool {
	for _, f := range files {
		lower := strings.ToLower(f)
		if strings.HasSuffix(lower, ".py") || strings.HasSuffix(lower, ".ipynb") ||
			strings.Contains(lower, "requirements") || strings.Contains(lower, "train") {
			return true
		}
	}
	return false
}
