// Package metric implements the scoring dimensions: each provider
// maps a classified resource to a score in [0,1] (or a per-tier
// score map for artifact size) with measured latency, recovering
// every internal failure at its own boundary.
package metric

import (
	"context"
	"math"
	"time"

	"github.com/mltrust/mltrust/pkg/hub"
	"github.com/mltrust/mltrust/pkg/resource"
)

// Name identifies a scoring dimension. The values double as the
// score field names in the output record.
type Name string

const (
	SizeScore         Name = "size_score"
	License           Name = "license"
	RampUp            Name = "ramp_up_time"
	BusFactor         Name = "bus_factor"
	DatasetQuality    Name = "dataset_quality"
	CodeQuality       Name = "code_quality"
	PerformanceClaims Name = "performance_claims"
	DatasetAndCode    Name = "dataset_and_code_score"
)

// All lists every scoring dimension, in output-record order.
var All = []Name{
	RampUp, BusFactor, PerformanceClaims, License,
	SizeScore, DatasetAndCode, DatasetQuality, CodeQuality,
}

// Result is the tagged outcome of one provider invocation. A
// non-nil Err marks failure; the dispatcher substitutes the
// neutral default for failed results only. Breakdown is populated
// by the size metric alone.
type Result struct {
	Metric    Name
	Value     float64
	Breakdown map[string]float64
	LatencyMS int64
	Err       error
}

// Failed reports whether the provider could not compute a score.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Provider is one scoring dimension.
type Provider interface {
	Name() Name
	Applies(kind resource.Kind) bool
	Evaluate(ctx context.Context, res resource.Resource) Result
}

// Source is the metadata surface providers read: repo info, file
// listings, and README text. Satisfied by hub.Catalog.
type Source interface {
	Info(ctx context.Context, res resource.Resource) (*hub.Info, error)
	ListFiles(ctx context.Context, res resource.Resource) ([]hub.FileEntry, error)
	Readme(ctx context.Context, res resource.Resource) (string, error)
}

func succeed(name Name, value float64, start time.Time) Result {
	return Result{Metric: name, Value: Round2(clamp01(value)), LatencyMS: sinceMS(start)}
}

func fail(name Name, start time.Time, err error) Result {
	return Result{Metric: name, LatencyMS: sinceMS(start), Err: err}
}

func sinceMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

func fileNames(files []hub.FileEntry) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

// Round2 rounds to two decimals, the record's score precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
