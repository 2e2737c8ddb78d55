package metrics

import (
	"encoding/json"
	"testing"
)

func TestScalarNumericTypes(t *testing.T) {
	rec := Record{
		"f64": float64(0.5),
		"f32": float32(0.25),
		"i":   3,
		"i64": int64(7),
		"num": json.Number("0.125"),
		"str": "not a number",
	}

	cases := []struct {
		key  string
		want float64
		ok   bool
	}{
		{"f64", 0.5, true},
		{"f32", 0.25, true},
		{"i", 3, true},
		{"i64", 7, true},
		{"num", 0.125, true},
		{"str", 0, false},
		{"absent", 0, false},
	}
	for _, c := range cases {
		got, ok := Scalar(rec, c.key)
		if ok != c.ok || got != c.want {
			t.Errorf("Scalar(%q) = %v, %v; want %v, %v", c.key, got, ok, c.want, c.ok)
		}
	}
}

func TestColumnScoresTyped(t *testing.T) {
	rec := Record{
		KeyColumnDriftScores: map[string]ColumnScore{
			"cpu_usage": {DriftScore: 0.7, DriftDetected: true},
		},
	}
	scores := ColumnScores(rec)
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	if scores["cpu_usage"].DriftScore != 0.7 || !scores["cpu_usage"].DriftDetected {
		t.Errorf("unexpected score: %+v", scores["cpu_usage"])
	}
}

func TestColumnScoresDecodedJSON(t *testing.T) {
	raw := `{"column_drift_scores": {"latency": {"drift_score": 0.4, "drift_detected": false}}}`
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatal(err)
	}
	scores := ColumnScores(rec)
	if scores["latency"].DriftScore != 0.4 {
		t.Errorf("drift_score = %v, want 0.4", scores["latency"].DriftScore)
	}
	if scores["latency"].DriftDetected {
		t.Error("drift_detected should be false")
	}
}

func TestColumnScoresAbsentOrMalformed(t *testing.T) {
	if got := ColumnScores(Record{}); len(got) != 0 {
		t.Errorf("expected empty map for absent key, got %v", got)
	}
	rec := Record{KeyColumnDriftScores: "garbage"}
	if got := ColumnScores(rec); len(got) != 0 {
		t.Errorf("expected empty map for malformed value, got %v", got)
	}
}

func TestMergeLaterKeysWin(t *testing.T) {
	a := Record{"x": 1.0, "y": 2.0}
	b := Record{"y": 3.0, "z": 4.0}
	merged := Merge(a, b)
	if v, _ := Scalar(merged, "y"); v != 3.0 {
		t.Errorf("y = %v, want 3.0 (later record wins)", v)
	}
	if len(merged) != 3 {
		t.Errorf("expected 3 keys, got %d", len(merged))
	}
	// Merge never aliases its inputs.
	merged["x"] = 9.0
	if v, _ := Scalar(a, "x"); v != 1.0 {
		t.Error("merge mutated an input record")
	}
}
