package profile

import (
	"context"

	"github.com/danielpatrickdp/driftwatch/internal/dataset"
	"github.com/danielpatrickdp/driftwatch/internal/metrics"
	"github.com/danielpatrickdp/driftwatch/internal/textdrift"
)

// #region profiler

// Result is one profiler's output for a run.
type Result struct {
	Metrics   metrics.Record
	Artifacts map[string]string // artifact name → file path
}

// Profiler runs drift analysis on a reference and a current table.
//
// The tabular profiler is an external collaborator behind this seam: an
// implementation computes the statistical distances itself and is expected
// to populate at least dataset_drift_score, drifting_columns,
// drifting_columns_share, and column_drift_scores in its metric record.
// The engine treats that record as opaque input.
type Profiler interface {
	Run(ctx context.Context, ref, cur *dataset.Table) (Result, error)
}

// #endregion profiler

// #region text-profile

// TextProfile adapts a textdrift.Scorer to the Profiler interface, emitting
// one <column>_text_drift nested entry per scored text column.
type TextProfile struct {
	scorer *textdrift.Scorer
}

// NewTextProfile creates the profile over the given scorer.
func NewTextProfile(scorer *textdrift.Scorer) *TextProfile {
	return &TextProfile{scorer: scorer}
}

// Run never fails: per-signal failures already degraded inside the scorer.
func (p *TextProfile) Run(ctx context.Context, ref, cur *dataset.Table) (Result, error) {
	rec := metrics.Record{}
	for col, signals := range p.scorer.ScoreColumns(ctx, ref, cur) {
		rec[col+"_text_drift"] = signals.ToRecord()
	}
	return Result{Metrics: rec, Artifacts: map[string]string{}}, nil
}

// #endregion text-profile
