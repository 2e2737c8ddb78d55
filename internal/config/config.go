package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// #region types

// AlertConfig holds alerting thresholds. Nil thresholds mean "calibrate
// from history".
type AlertConfig struct {
	DatasetDriftThreshold *float64 `yaml:"dataset_drift_threshold"`
	FeatureDriftThreshold *float64 `yaml:"feature_drift_threshold"`
	ConsecutiveRuns       int      `yaml:"consecutive_runs"`
}

// EmbeddingConfig points at the external embedding provider. An empty URL
// disables the embedding signal.
type EmbeddingConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Config is the full run configuration. All store paths are explicit here;
// nothing falls back to ambient globals.
type Config struct {
	HistoryPath     string            `yaml:"history_file"`
	PersistencePath string            `yaml:"persistence_file"`
	LedgerPath      string            `yaml:"ledger_file"`
	TextColumns     []string          `yaml:"text_columns"`
	ColumnTypes     map[string]string `yaml:"column_types"`
	RequiredColumns []string          `yaml:"required_columns"`
	Embedding       EmbeddingConfig   `yaml:"embedding"`
	Alerts          AlertConfig       `yaml:"alerts"`
}

// #endregion types

// #region defaults

// Default returns the standard configuration. The embedding URL may be set
// via DRIFTWATCH_EMBED_URL.
func Default() Config {
	cfg := Config{
		HistoryPath:     ".driftwatch/history.json",
		PersistencePath: ".driftwatch/persistence.json",
		LedgerPath:      ".driftwatch/ledger.db",
		Alerts: AlertConfig{
			ConsecutiveRuns: 3,
		},
		Embedding: EmbeddingConfig{
			TimeoutSeconds: 30,
		},
	}
	if v := os.Getenv("DRIFTWATCH_EMBED_URL"); v != "" {
		cfg.Embedding.URL = v
	}
	return cfg
}

// EmbeddingTimeout returns the configured provider timeout.
func (c Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSeconds) * time.Second
}

// #endregion defaults

// #region load

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Alerts.ConsecutiveRuns <= 0 {
		cfg.Alerts.ConsecutiveRuns = 3
	}
	return cfg, nil
}

// #endregion load
