package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/driftwatch/internal/alerts"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "driftwatch.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordRunAndReadBack(t *testing.T) {
	s := newTestStore(t)

	run := RunRecord{
		RunID:             "run-1",
		StartedAt:         time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		DatasetDriftScore: 0.42,
		DriftingShare:     0.25,
		SummaryJSON:       `{"run_id":"run-1"}`,
	}
	runAlerts := []alerts.Alert{
		{Severity: alerts.SeverityCritical, MetricName: "drifting_columns_share", Value: 0.25, Threshold: 0.2, Message: "dataset drift"},
		{Severity: alerts.SeverityCritical, MetricName: "cpu_drift_score", Value: 0.8, Threshold: 0.3, Message: "persistent drift"},
	}
	if err := s.RecordRun(run, runAlerts); err != nil {
		t.Fatal(err)
	}

	runs, err := s.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.RunID != "run-1" || got.AlertCount != 2 || got.DatasetDriftScore != 0.42 {
		t.Errorf("unexpected run row: %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("started_at did not round-trip: %v", got.StartedAt)
	}

	stored, err := s.AlertsForRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(stored))
	}
	if stored[0].MetricName != "drifting_columns_share" || stored[1].MetricName != "cpu_drift_score" {
		t.Errorf("alerts out of insertion order: %+v", stored)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		run := RunRecord{RunID: id, StartedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := s.RecordRun(run, nil); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.RecentRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-3" || runs[1].RunID != "run-2" {
		t.Errorf("unexpected ordering: %+v", runs)
	}
}

func TestAlertsForUnknownRun(t *testing.T) {
	s := newTestStore(t)
	got, err := s.AlertsForRun("nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no alerts, got %v", got)
	}
}
