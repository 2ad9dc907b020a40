package metric

import (
	"context"
	"math"
	"time"

	"github.com/mltrust/mltrust/pkg/resource"
)

const (
	// download and like counts treated as top-tier quality
	downloadsTarget = 1_000_000
	likesTarget     = 2_000

	downloadsWeight = 0.8
	likesWeight     = 0.2
)

// DatasetQualityScore estimates dataset quality from hub
// popularity signals.
type DatasetQualityScore struct {
	source Source
}

func NewDatasetQuality(source Source) *DatasetQualityScore {
	return &DatasetQualityScore{source: source}
}

func (m *DatasetQualityScore) Name() Name { return DatasetQuality }

func (m *DatasetQualityScore) Applies(kind resource.Kind) bool {
	return kind == resource.KindDataset
}

func (m *DatasetQualityScore) Evaluate(ctx context.Context, res resource.Resource) Result {
	start := time.Now()

	info, err := m.source.Info(ctx, res)
	if err != nil {
		return fail(DatasetQuality, start, err)
	}

	downloadsScore := logNormalize(info.Downloads, downloadsTarget)
	likesScore := logNormalize(info.Likes, likesTarget)

	// without likes the popularity signal is downloads alone
	if info.Likes == 0 {
		return succeed(DatasetQuality, downloadsScore, start)
	}

	return succeed(DatasetQuality, downloadsWeight*downloadsScore+likesWeight*likesScore, start)
}

// logNormalize maps a count onto [0,1] on a log10 scale against
// its top-tier target.
func logNormalize(value, target int64) float64 {
	if value <= 0 {
		return 0.0
	}
	return math.Min(1.0, math.Log10(float64(value)+1)/math.Log10(float64(target)+1))
}
