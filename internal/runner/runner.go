package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/driftwatch/internal/alerts"
	"github.com/danielpatrickdp/driftwatch/internal/calibrate"
	"github.com/danielpatrickdp/driftwatch/internal/config"
	"github.com/danielpatrickdp/driftwatch/internal/dataset"
	"github.com/danielpatrickdp/driftwatch/internal/history"
	"github.com/danielpatrickdp/driftwatch/internal/ledger"
	"github.com/danielpatrickdp/driftwatch/internal/metrics"
	"github.com/danielpatrickdp/driftwatch/internal/persistence"
	"github.com/danielpatrickdp/driftwatch/internal/profile"
	"github.com/danielpatrickdp/driftwatch/internal/textdrift"
)

// #region summary

// Summary is one run's output for the reporting layer: metrics plus alerts
// as a flat serializable mapping.
type Summary struct {
	RunID      string                              `json:"run_id"`
	StartedAt  time.Time                           `json:"started_at"`
	Validation map[string]dataset.ValidationResult `json:"validation"`
	Metrics    metrics.Record                      `json:"metrics"`
	Alerts     []alerts.Alert                      `json:"alerts"`
}

// WriteJSON saves the summary, creating parent directories as needed.
func (s *Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create summary dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", path, err)
	}
	return nil
}

// #endregion summary

// #region runner

// Runner wires one drift-analysis pipeline: profiles, alert rules, and the
// durable stores. Single-threaded and batch-oriented; concurrent runs over
// the same stores must be serialized by the caller.
type Runner struct {
	schema  dataset.Schema
	tabular profile.Profiler
	text    profile.Profiler
	history *history.Store
	engine  *alerts.Engine
	ledger  *ledger.Store
}

// New builds a runner from configuration. tabular is the external drift
// profiler collaborator and may be nil (its metrics are then simply
// absent); embedder and led may each be nil.
func New(cfg config.Config, tabular profile.Profiler, embedder textdrift.Embedder, led *ledger.Store) *Runner {
	hist := history.NewStore(cfg.HistoryPath)
	cal := calibrate.NewCalibrator(hist)
	tracker := persistence.NewTracker(cfg.PersistencePath)

	engine := alerts.NewEngine(
		alerts.NewDatasetDriftRule("", cfg.Alerts.DatasetDriftThreshold, cal),
		alerts.NewFeatureDriftPersistenceRule(
			cfg.Alerts.FeatureDriftThreshold, cfg.Alerts.ConsecutiveRuns, cal, tracker),
	)

	tdCfg := textdrift.DefaultConfig()
	tdCfg.TextColumns = textColumns(cfg)

	return &Runner{
		schema: dataset.Schema{
			ColumnTypes:     cfg.ColumnTypes,
			RequiredColumns: cfg.RequiredColumns,
		},
		tabular: tabular,
		text:    profile.NewTextProfile(textdrift.NewScorer(embedder, tdCfg)),
		history: hist,
		engine:  engine,
		ledger:  led,
	}
}

// textColumns merges the explicit list with columns typed "text". Nil when
// neither is configured, enabling auto-detection.
func textColumns(cfg config.Config) []string {
	cols := append([]string(nil), cfg.TextColumns...)
	seen := map[string]struct{}{}
	for _, c := range cols {
		seen[c] = struct{}{}
	}
	for col, typ := range cfg.ColumnTypes {
		if typ == dataset.TypeText {
			if _, ok := seen[col]; !ok {
				cols = append(cols, col)
				seen[col] = struct{}{}
			}
		}
	}
	return cols
}

// #endregion runner

// #region run

// Run executes one drift analysis: validate both tables, run the profiles,
// merge their metric records, evaluate alert rules against the merged
// record, then append it to history so future runs calibrate against it.
// Calibration for this run sees history up to but excluding this run.
func (r *Runner) Run(ctx context.Context, ref, cur *dataset.Table) (*Summary, error) {
	if ref == nil || cur == nil {
		return nil, errors.New("runner: reference and current tables are required")
	}
	startedAt := time.Now().UTC()

	validation := map[string]dataset.ValidationResult{
		"reference": r.schema.Validate(ref),
		"current":   r.schema.Validate(cur),
	}

	merged := metrics.Record{}
	if r.tabular != nil {
		res, err := r.tabular.Run(ctx, ref, cur)
		if err != nil {
			// Collaborator failure degrades to an annotation; the run
			// continues on the surviving signals.
			merged["tabular_profile_error"] = err.Error()
		} else {
			merged = metrics.Merge(merged, res.Metrics)
		}
	}
	textRes, err := r.text.Run(ctx, ref, cur)
	if err != nil {
		merged["text_profile_error"] = err.Error()
	} else {
		merged = metrics.Merge(merged, textRes.Metrics)
	}

	runAlerts := r.engine.Evaluate(merged)

	if err := r.history.Append(merged); err != nil {
		return nil, fmt.Errorf("append run metrics: %w", err)
	}

	summary := &Summary{
		RunID:      uuid.New().String(),
		StartedAt:  startedAt,
		Validation: validation,
		Metrics:    merged,
		Alerts:     runAlerts,
	}

	if r.ledger != nil {
		if err := r.recordRun(summary); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

func (r *Runner) recordRun(summary *Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary for ledger: %w", err)
	}
	driftScore, _ := metrics.Scalar(summary.Metrics, metrics.KeyDatasetDriftScore)
	share, _ := metrics.Scalar(summary.Metrics, metrics.KeyDriftingColumnsShare)
	run := ledger.RunRecord{
		RunID:             summary.RunID,
		StartedAt:         summary.StartedAt,
		DatasetDriftScore: driftScore,
		DriftingShare:     share,
		SummaryJSON:       string(summaryJSON),
	}
	if err := r.ledger.RecordRun(run, summary.Alerts); err != nil {
		return fmt.Errorf("record run in ledger: %w", err)
	}
	return nil
}

// #endregion run
