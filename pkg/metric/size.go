package metric

import (
	"context"
	"math"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/mltrust/mltrust/pkg/hub"
	"github.com/mltrust/mltrust/pkg/resource"
)

// Tiers lists the hardware tier keys present in every size score
// map, smallest capacity first.
var Tiers = []string{"raspberry_pi", "jetson_nano", "desktop_pc", "aws_server"}

// Hardware tier capacities in bytes. The keys are part of the
// output record surface and must not be renamed.
var hardwareLimits = map[string]int64{
	"raspberry_pi": 4_000_000_000,
	"jetson_nano":  4_000_000_000,
	"desktop_pc":   32_000_000_000,
	"aws_server":   512_000_000_000,
}

// Fraction of each tier's capacity assumed available for weights
// after runtime overhead.
var usableFraction = map[string]float64{
	"raspberry_pi": 0.26,
	"jetson_nano":  0.35,
	"desktop_pc":   0.85,
	"aws_server":   0.98,
}

var weightExts = map[string]bool{
	".safetensors": true,
	".bin":         true,
	".pt":          true,
	".pth":         true,
	".onnx":        true,
	".tflite":      true,
	".pb":          true,
}

var trainingStateTokens = []string{"optimizer", "optim", "training", "trainer", "adam"}

// Shard pattern: name-00001-of-00005.safetensors
var shardRe = regexp.MustCompile(`(?i)^(.+?)-\d{5}-of-\d{5}\.([^.]+)$`)

var frameworkPref = map[string]int{
	"safetensors": 0,
	"pytorch":     1,
	"onnx":        2,
	"tflite":      3,
	"tensorflow":  4,
	"other":       5,
}

const (
	// score drop rate while utilization stays within budget
	kUnder = 1.9
	// additional drop rate past the budget
	kOver = 3.0
)

// SizeFit scores artifact footprint against the four hardware
// tiers. Models resolve to their minimum viable weight family;
// datasets sum all files; code uses the host's reported size.
type SizeFit struct {
	source Source
}

func NewSizeFit(source Source) *SizeFit {
	return &SizeFit{source: source}
}

func (m *SizeFit) Name() Name { return SizeScore }

func (m *SizeFit) Applies(kind resource.Kind) bool {
	return kind == resource.KindModel || kind == resource.KindDataset
}

func (m *SizeFit) Evaluate(ctx context.Context, res resource.Resource) Result {
	start := time.Now()

	totalBytes, err := m.totalBytes(ctx, res)
	if err != nil {
		return fail(SizeScore, start, err)
	}

	scores := make(map[string]float64, len(hardwareLimits))
	for tier := range hardwareLimits {
		scores[tier] = scoreOnTier(totalBytes, tier)
	}

	return Result{Metric: SizeScore, Breakdown: scores, LatencyMS: sinceMS(start)}
}

func (m *SizeFit) totalBytes(ctx context.Context, res resource.Resource) (int64, error) {
	switch res.Kind {
	case resource.KindModel:
		files, err := m.source.ListFiles(ctx, res)
		if err != nil {
			return 0, err
		}
		return minViableFamilyBytes(files), nil

	case resource.KindDataset:
		files, err := m.source.ListFiles(ctx, res)
		if err != nil {
			return 0, err
		}
		var total int64
		for _, f := range files {
			total += f.Size
		}
		return total, nil

	default:
		info, err := m.source.Info(ctx, res)
		if err != nil {
			return 0, err
		}
		return info.SizeBytes, nil
	}
}

// minViableFamilyBytes groups weight-like files into families (a
// sharded checkpoint set collapses to one family) and returns the
// byte total of the smallest one, since any single family is a
// deployable serialization of the weights. Ties break on format
// preference. Without weight files, all file sizes are summed.
func minViableFamilyBytes(files []hub.FileEntry) int64 {
	var weights []hub.FileEntry
	for _, f := range files {
		if looksLikeWeightFile(f.Path) {
			weights = append(weights, f)
		}
	}
	if len(weights) == 0 {
		var total int64
		for _, f := range files {
			total += f.Size
		}
		return total
	}

	families := make(map[string]int64)
	framework := make(map[string]string)
	for _, f := range weights {
		key := familyKey(f.Path)
		families[key] += f.Size
		framework[key] = frameworkOf(f.Path)
	}

	bestKey := ""
	var bestTotal int64 = -1
	for key, total := range families {
		switch {
		case bestTotal < 0 || total < bestTotal:
			bestKey, bestTotal = key, total
		case total == bestTotal:
			if frameworkPref[framework[key]] < frameworkPref[framework[bestKey]] {
				bestKey = key
			}
		}
	}
	return bestTotal
}

func looksLikeWeightFile(name string) bool {
	lower := strings.ToLower(name)
	for _, token := range trainingStateTokens {
		if strings.Contains(lower, token) {
			return false
		}
	}
	return weightExts[path.Ext(lower)]
}

// familyKey collapses shard sets to prefix.ext; non-sharded files
// key on their own basename.
func familyKey(name string) string {
	base := strings.ToLower(path.Base(name))
	if m := shardRe.FindStringSubmatch(base); m != nil {
		return m[1] + "." + m[2]
	}
	return base
}

func frameworkOf(name string) string {
	switch path.Ext(strings.ToLower(name)) {
	case ".safetensors":
		return "safetensors"
	case ".bin", ".pt", ".pth":
		return "pytorch"
	case ".onnx":
		return "onnx"
	case ".tflite":
		return "tflite"
	case ".pb":
		return "tensorflow"
	}
	return "other"
}

// scoreUtilization degrades linearly within budget and sharply
// past it.
func scoreUtilization(u float64) float64 {
	if u <= 0 {
		return 1.0
	}
	if u <= 1.0 {
		return math.Max(0.0, 1.0-kUnder*u)
	}
	return math.Max(0.0, 1.0-kUnder-kOver*(u-1.0))
}

func scoreOnTier(totalBytes int64, tier string) float64 {
	effective := float64(hardwareLimits[tier]) * usableFraction[tier]
	if effective < 1 {
		effective = 1
	}
	u := float64(totalBytes) / effective
	return Round2(clamp01(scoreUtilization(u)))
}
