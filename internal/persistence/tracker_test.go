package persistence

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	return NewTracker(filepath.Join(t.TempDir(), "persistence.json"))
}

func TestTriggersOnWindowthConsecutiveTrue(t *testing.T) {
	tr := newTestTracker(t)
	const window = 3

	if tr.RecordAndCheck("cpu_usage", true, window) {
		t.Error("triggered on call 1 of 3")
	}
	if tr.RecordAndCheck("cpu_usage", true, window) {
		t.Error("triggered on call 2 of 3")
	}
	if !tr.RecordAndCheck("cpu_usage", true, window) {
		t.Error("did not trigger on call 3 of 3")
	}
	// Keeps triggering while the window stays fully true.
	if !tr.RecordAndCheck("cpu_usage", true, window) {
		t.Error("did not trigger on call 4 with fully-true window")
	}
}

func TestFalseFlagResetsStreak(t *testing.T) {
	tr := newTestTracker(t)
	const window = 3

	tr.RecordAndCheck("f", true, window)
	tr.RecordAndCheck("f", true, window)
	if tr.RecordAndCheck("f", false, window) {
		t.Error("triggered despite a false flag in the window")
	}
	// The false entry stays in the sliding window for two more calls.
	if tr.RecordAndCheck("f", true, window) {
		t.Error("triggered while window still contains a false entry")
	}
	if tr.RecordAndCheck("f", true, window) {
		t.Error("triggered while window still contains a false entry")
	}
	if !tr.RecordAndCheck("f", true, window) {
		t.Error("did not trigger once window refilled with true flags")
	}
}

func TestWindowTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persistence.json")
	tr := NewTracker(path)
	const window = 3

	// window+2 calls: false, false, then three true.
	flags := []bool{false, false, true, true, true}
	for _, f := range flags {
		tr.RecordAndCheck("f", f, window)
	}

	state := tr.load()
	seq := state["f"]
	if len(seq) != window {
		t.Fatalf("stored sequence length = %d, want %d", len(seq), window)
	}
	for i, v := range seq {
		if !v {
			t.Errorf("entry %d = false, want the 3 most recent (all true)", i)
		}
	}
}

func TestFeaturesAreIndependent(t *testing.T) {
	tr := newTestTracker(t)
	const window = 2

	tr.RecordAndCheck("a", true, window)
	if tr.RecordAndCheck("b", true, window) {
		t.Error("feature b triggered off feature a's history")
	}
	if !tr.RecordAndCheck("a", true, window) {
		t.Error("feature a did not trigger after its own full window")
	}
}

func TestStateSurvivesReconstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persistence.json")
	const window = 2

	NewTracker(path).RecordAndCheck("f", true, window)
	if !NewTracker(path).RecordAndCheck("f", true, window) {
		t.Error("state did not persist across tracker instances")
	}
}

func TestCorruptStateReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persistence.json")
	if err := os.WriteFile(path, []byte("][not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	tr := NewTracker(path)
	if tr.RecordAndCheck("f", true, 1) != true {
		t.Error("window=1 with true flag should trigger immediately")
	}
	state := tr.load()
	if len(state) != 1 || len(state["f"]) != 1 {
		t.Errorf("corrupt file not reset cleanly: %v", state)
	}
}
