package calibrate

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/driftwatch/internal/metrics"
)

// #region defaults

const (
	// DefaultThreshold is returned when no history carries the metric.
	DefaultThreshold = 0.3
	// DefaultPercentile is the calibration percentile used by alert rules.
	DefaultPercentile = 95.0
)

// #endregion defaults

// #region calibrator

// HistorySource provides past run records. Implemented by history.Store.
type HistorySource interface {
	Load() []metrics.Record
}

// Calibrator derives decision thresholds for named metrics from the
// empirical distribution of their historical values, so thresholds adapt
// to each metric's own spread instead of a hand-picked constant.
type Calibrator struct {
	history HistorySource
}

// NewCalibrator creates a calibrator over the given history source.
func NewCalibrator(history HistorySource) *Calibrator {
	return &Calibrator{history: history}
}

// #endregion calibrator

// #region threshold

// Threshold returns the given percentile of the metric's historical values.
// Records lacking the metric are skipped, never treated as zero. Falls back
// to DefaultThreshold when no record carries the metric. Pure read: history
// is never mutated.
func (c *Calibrator) Threshold(metricName string, percentile float64) float64 {
	var values []float64
	for _, rec := range c.history.Load() {
		if v, ok := metrics.Scalar(rec, metricName); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return DefaultThreshold
	}
	return percentileOf(values, percentile)
}

// #endregion threshold

// #region percentile

// percentileOf computes a percentile with linear interpolation between
// order statistics.
func percentileOf(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// #endregion percentile
