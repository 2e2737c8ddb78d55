package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielpatrickdp/driftwatch/internal/alerts"
	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id              TEXT PRIMARY KEY,
	started_at          TEXT NOT NULL,
	dataset_drift_score REAL,
	drifting_share      REAL,
	alert_count         INTEGER NOT NULL,
	summary_json        TEXT
);

CREATE TABLE IF NOT EXISTS alerts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	severity    TEXT NOT NULL,
	metric_name TEXT NOT NULL,
	value       REAL NOT NULL,
	threshold   REAL NOT NULL,
	message     TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region types

// RunRecord is one row in the runs table.
type RunRecord struct {
	RunID             string
	StartedAt         time.Time
	DatasetDriftScore float64
	DriftingShare     float64
	AlertCount        int
	SummaryJSON       string
}

// AlertRecord is one row in the alerts table.
type AlertRecord struct {
	RunID      string
	Severity   string
	MetricName string
	Value      float64
	Threshold  float64
	Message    string
	CreatedAt  time.Time
}

// #endregion types

// #region store

// Store keeps a queryable ledger of past runs and their alerts in SQLite,
// alongside the JSON history the calibrator reads. Inspection tooling
// reads it; the scoring core never does.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region record-run

// RecordRun writes one run row and its alert rows in a single transaction.
func (s *Store) RecordRun(run RunRecord, runAlerts []alerts.Alert) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback()

	startedAt := run.StartedAt.UTC().Format(time.RFC3339Nano)
	_, err = tx.Exec(
		`INSERT INTO runs (run_id, started_at, dataset_drift_score, drifting_share, alert_count, summary_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunID, startedAt, run.DatasetDriftScore, run.DriftingShare, len(runAlerts), run.SummaryJSON,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	for _, a := range runAlerts {
		_, err = tx.Exec(
			`INSERT INTO alerts (run_id, severity, metric_name, value, threshold, message, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, a.Severity, a.MetricName, a.Value, a.Threshold, a.Message, startedAt,
		)
		if err != nil {
			return fmt.Errorf("insert alert for run %s: %w", run.RunID, err)
		}
	}
	return tx.Commit()
}

// #endregion record-run

// #region queries

// RecentRuns returns the n most recent runs, newest first.
func (s *Store) RecentRuns(n int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, started_at, dataset_drift_score, drifting_share, alert_count, summary_json
		 FROM runs ORDER BY started_at DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedAt string
		if err := rows.Scan(&r.RunID, &startedAt, &r.DatasetDriftScore, &r.DriftingShare, &r.AlertCount, &r.SummaryJSON); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// AlertsForRun returns the alerts recorded for one run, in insertion order.
func (s *Store) AlertsForRun(runID string) ([]AlertRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, severity, metric_name, value, threshold, message, created_at
		 FROM alerts WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []AlertRecord
	for rows.Next() {
		var a AlertRecord
		var createdAt string
		if err := rows.Scan(&a.RunID, &a.Severity, &a.MetricName, &a.Value, &a.Threshold, &a.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// #endregion queries
