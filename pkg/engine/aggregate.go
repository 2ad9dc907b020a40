package engine

import (
	"github.com/mltrust/mltrust/pkg/metric"
)

// Fixed net score weights. They intentionally do not sum to 1 for
// every category: dimensions a category never produces contribute
// zero rather than inflating the rest.
var netWeights = map[metric.Name]float64{
	metric.SizeScore:         0.15,
	metric.License:           0.15,
	metric.RampUp:            0.10,
	metric.BusFactor:         0.10,
	metric.DatasetQuality:    0.15,
	metric.CodeQuality:       0.10,
	metric.PerformanceClaims: 0.15,
	metric.DatasetAndCode:    0.10,
}

// computeNet fills in the record's net score from its dimension
// scores. Size enters as the mean across hardware tiers.
func (r *Record) computeNet() {
	net := netWeights[metric.SizeScore]*r.sizeMean() +
		netWeights[metric.License]*r.License +
		netWeights[metric.RampUp]*r.RampUpTime +
		netWeights[metric.BusFactor]*r.BusFactor +
		netWeights[metric.DatasetQuality]*r.DatasetQuality +
		netWeights[metric.CodeQuality]*r.CodeQuality +
		netWeights[metric.PerformanceClaims]*r.PerformanceClaims +
		netWeights[metric.DatasetAndCode]*r.DatasetAndCode

	r.NetScore = metric.Round2(net)
}
