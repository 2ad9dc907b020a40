// Package engine fans scoring work out across metric providers and
// folds the results into output records.
package engine

import (
	"github.com/mltrust/mltrust/pkg/metric"
)

// Record is one scored resource, serialized as a single NDJSON
// line. Field names and order are part of the output contract.
type Record struct {
	Name     string  `json:"name" yaml:"name"`
	Category string  `json:"category" yaml:"category"`
	NetScore float64 `json:"net_score" yaml:"net_score"`
	NetLatMS int64   `json:"net_score_latency" yaml:"net_score_latency"`

	RampUpTime float64 `json:"ramp_up_time" yaml:"ramp_up_time"`
	RampUpLat  int64   `json:"ramp_up_time_latency" yaml:"ramp_up_time_latency"`

	BusFactor    float64 `json:"bus_factor" yaml:"bus_factor"`
	BusFactorLat int64   `json:"bus_factor_latency" yaml:"bus_factor_latency"`

	PerformanceClaims float64 `json:"performance_claims" yaml:"performance_claims"`
	PerformanceLat    int64   `json:"performance_claims_latency" yaml:"performance_claims_latency"`

	License    float64 `json:"license" yaml:"license"`
	LicenseLat int64   `json:"license_latency" yaml:"license_latency"`

	SizeScore map[string]float64 `json:"size_score" yaml:"size_score"`
	SizeLat   int64              `json:"size_score_latency" yaml:"size_score_latency"`

	DatasetAndCode    float64 `json:"dataset_and_code_score" yaml:"dataset_and_code_score"`
	DatasetAndCodeLat int64   `json:"dataset_and_code_score_latency" yaml:"dataset_and_code_score_latency"`

	DatasetQuality    float64 `json:"dataset_quality" yaml:"dataset_quality"`
	DatasetQualityLat int64   `json:"dataset_quality_latency" yaml:"dataset_quality_latency"`

	CodeQuality    float64 `json:"code_quality" yaml:"code_quality"`
	CodeQualityLat int64   `json:"code_quality_latency" yaml:"code_quality_latency"`
}

// NewRecord returns a fully populated record with neutral scores:
// zeros everywhere, every hardware tier present in the size map.
func NewRecord(name, category string) *Record {
	sizes := make(map[string]float64, len(metric.Tiers))
	for _, tier := range metric.Tiers {
		sizes[tier] = 0.0
	}
	return &Record{
		Name:      name,
		Category:  category,
		SizeScore: sizes,
	}
}

// apply folds one metric result into the record. Failed results
// keep the neutral default but still report their latency.
func (r *Record) apply(res metric.Result) {
	switch res.Metric {
	case metric.RampUp:
		r.RampUpLat = res.LatencyMS
		if !res.Failed() {
			r.RampUpTime = res.Value
		}
	case metric.BusFactor:
		r.BusFactorLat = res.LatencyMS
		if !res.Failed() {
			r.BusFactor = res.Value
		}
	case metric.PerformanceClaims:
		r.PerformanceLat = res.LatencyMS
		if !res.Failed() {
			r.PerformanceClaims = res.Value
		}
	case metric.License:
		r.LicenseLat = res.LatencyMS
		if !res.Failed() {
			r.License = res.Value
		}
	case metric.SizeScore:
		r.SizeLat = res.LatencyMS
		if !res.Failed() && res.Breakdown != nil {
			for tier, v := range res.Breakdown {
				r.SizeScore[tier] = v
			}
		}
	case metric.DatasetAndCode:
		r.DatasetAndCodeLat = res.LatencyMS
		if !res.Failed() {
			r.DatasetAndCode = res.Value
		}
	case metric.DatasetQuality:
		r.DatasetQualityLat = res.LatencyMS
		if !res.Failed() {
			r.DatasetQuality = res.Value
		}
	case metric.CodeQuality:
		r.CodeQualityLat = res.LatencyMS
		if !res.Failed() {
			r.CodeQuality = res.Value
		}
	}
}

// sizeMean is the average score across all hardware tiers.
func (r *Record) sizeMean() float64 {
	if len(r.SizeScore) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range r.SizeScore {
		sum += v
	}
	return sum / float64(len(r.SizeScore))
}
