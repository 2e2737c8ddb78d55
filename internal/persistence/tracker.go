package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// #region tracker

// Tracker maintains, per feature, a bounded window of recent "drifted this
// run" flags, persisted as a JSON document so sustained drift is visible
// across process runs. Construct one Tracker per store path and share it:
// every call does a full read-modify-write, so two writers on the same
// path can lose updates.
type Tracker struct {
	path string
}

// NewTracker creates a tracker over the given state file path.
func NewTracker(path string) *Tracker {
	return &Tracker{path: path}
}

// #endregion tracker

// #region record-and-check

// RecordAndCheck appends the flag to the feature's window, truncates the
// window to the most recent `window` entries, persists the state, and
// reports whether the feature has now been flagged in every one of the
// last `window` runs. A feature seen for the first time cannot trigger
// until it accumulates a full window of true flags.
func (t *Tracker) RecordAndCheck(feature string, drifted bool, window int) bool {
	state := t.load()
	seq := append(state[feature], drifted)
	if len(seq) > window {
		seq = seq[len(seq)-window:]
	}
	state[feature] = seq
	t.save(state)

	if len(seq) < window {
		return false
	}
	for _, d := range seq {
		if !d {
			return false
		}
	}
	return true
}

// #endregion record-and-check

// #region load-save

// load reads the persisted state. Missing or corrupt files read as empty:
// the tracker resets rather than failing the run.
func (t *Tracker) load() map[string][]bool {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return map[string][]bool{}
	}
	var state map[string][]bool
	if err := json.Unmarshal(data, &state); err != nil || state == nil {
		return map[string][]bool{}
	}
	return state
}

// save writes the whole state document. Write failures are swallowed: the
// run already has its in-memory answer and alerting must stay non-fatal.
func (t *Tracker) save(state map[string][]bool) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return
	}
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return
		}
	}
	_ = os.WriteFile(t.path, data, 0o644)
}

// #endregion load-save
