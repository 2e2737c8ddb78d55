package alerts

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/driftwatch/internal/calibrate"
	"github.com/danielpatrickdp/driftwatch/internal/metrics"
	"github.com/danielpatrickdp/driftwatch/internal/persistence"
)

// Fallback thresholds when neither a fixed value nor a calibrator is wired.
const (
	defaultDatasetThreshold = 0.5
	defaultFeatureThreshold = 0.3
)

// calibratedFeatureMetric is the history metric the persistence rule
// calibrates its feature threshold against.
const calibratedFeatureMetric = "feature_drift_score"

// DefaultConsecutiveRuns is the persistence window used when none is
// configured.
const DefaultConsecutiveRuns = 3

// #region dataset-rule

// DatasetDriftRule emits one critical alert when a dataset-level aggregate
// metric reaches its threshold. The threshold comes from an explicit fixed
// value, else the calibrator, else a 0.5 default.
type DatasetDriftRule struct {
	metricName string
	fixed      *float64
	calibrator *calibrate.Calibrator
}

// NewDatasetDriftRule creates the rule. metricName defaults to
// drifting_columns_share; fixed and calibrator may each be nil.
func NewDatasetDriftRule(metricName string, fixed *float64, calibrator *calibrate.Calibrator) *DatasetDriftRule {
	if metricName == "" {
		metricName = metrics.KeyDriftingColumnsShare
	}
	return &DatasetDriftRule{metricName: metricName, fixed: fixed, calibrator: calibrator}
}

// Evaluate alerts iff metric value >= threshold. A missing metric reads
// as 0.0.
func (r *DatasetDriftRule) Evaluate(rec metrics.Record) []Alert {
	threshold := defaultDatasetThreshold
	switch {
	case r.fixed != nil:
		threshold = *r.fixed
	case r.calibrator != nil:
		threshold = r.calibrator.Threshold(r.metricName, calibrate.DefaultPercentile)
	}

	value, _ := metrics.Scalar(rec, r.metricName)
	if value < threshold {
		return nil
	}
	return []Alert{{
		Severity:   SeverityCritical,
		Message:    fmt.Sprintf("Dataset drift: %s = %.3f exceeded threshold %.3f", r.metricName, value, threshold),
		MetricName: r.metricName,
		Value:      value,
		Threshold:  threshold,
	}}
}

// #endregion dataset-rule

// #region persistence-rule

// FeatureDriftPersistenceRule alerts on features whose drift score has
// stayed at or above threshold for a configured number of consecutive
// runs. Evaluation always records the current run's flags in the tracker,
// even when no alert fires.
type FeatureDriftPersistenceRule struct {
	fixed      *float64
	window     int
	calibrator *calibrate.Calibrator
	tracker    *persistence.Tracker
}

// NewFeatureDriftPersistenceRule creates the rule. window <= 0 falls back
// to DefaultConsecutiveRuns; fixed and calibrator may each be nil. The
// tracker is required and should be the single instance for its store
// path.
func NewFeatureDriftPersistenceRule(fixed *float64, window int, calibrator *calibrate.Calibrator, tracker *persistence.Tracker) *FeatureDriftPersistenceRule {
	if window <= 0 {
		window = DefaultConsecutiveRuns
	}
	return &FeatureDriftPersistenceRule{
		fixed:      fixed,
		window:     window,
		calibrator: calibrator,
		tracker:    tracker,
	}
}

// Evaluate checks every feature in the run's per-column drift-score
// mapping against the threshold, updates persistence state, and emits one
// critical alert per feature that has met the consecutive-run requirement.
func (r *FeatureDriftPersistenceRule) Evaluate(rec metrics.Record) []Alert {
	threshold := defaultFeatureThreshold
	switch {
	case r.fixed != nil:
		threshold = *r.fixed
	case r.calibrator != nil:
		threshold = r.calibrator.Threshold(calibratedFeatureMetric, calibrate.DefaultPercentile)
	}

	scores := metrics.ColumnScores(rec)
	features := make([]string, 0, len(scores))
	for name := range scores {
		features = append(features, name)
	}
	sort.Strings(features)

	var alerts []Alert
	for _, feature := range features {
		driftScore := scores[feature].DriftScore
		drifted := driftScore >= threshold
		if !r.tracker.RecordAndCheck(feature, drifted, r.window) {
			continue
		}
		alerts = append(alerts, Alert{
			Severity:        SeverityCritical,
			Message:         fmt.Sprintf("Feature %s has drifted above threshold for %d consecutive runs", feature, r.window),
			MetricName:      feature + "_drift_score",
			Value:           driftScore,
			Threshold:       threshold,
			ConsecutiveRuns: r.window,
		})
	}
	return alerts
}

// #endregion persistence-rule
