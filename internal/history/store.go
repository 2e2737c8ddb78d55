package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/driftwatch/internal/metrics"
)

// #region store

// Store is an append-only, file-backed ledger of past runs' metric records.
// The backing file is a JSON array of metric mappings, rewritten whole on
// every append. Single-writer: concurrent runs against the same path are
// not coordinated and must be serialized by the caller.
type Store struct {
	path string
}

// NewStore creates a store over the given file path. The file is created
// lazily on first Append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// #endregion store

// #region load

// Load returns all prior records in run order. A missing or corrupt file
// reads as empty history: calibration must stay non-fatal, so corruption
// is swallowed rather than surfaced.
func (s *Store) Load() []metrics.Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var records []metrics.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}

// #endregion load

// #region append

// Append adds one record to durable storage, creating the store and its
// parent directories if absent. History only grows; there is no delete
// or update operation.
func (s *Store) Append(rec metrics.Record) error {
	records := append(s.Load(), rec)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history %s: %w", s.path, err)
	}
	return nil
}

// #endregion append
