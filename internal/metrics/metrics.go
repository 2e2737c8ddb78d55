package metrics

import "encoding/json"

// #region record

// Record is one run's flat metric mapping. Values are scalars or nested
// mappings. Once a Record has been appended to history it is never mutated.
type Record map[string]any

// Well-known keys produced by the tabular drift profiler.
const (
	KeyDatasetDriftScore    = "dataset_drift_score"
	KeyDriftingColumns      = "drifting_columns"
	KeyDriftingColumnsShare = "drifting_columns_share"
	KeyColumnDriftScores    = "column_drift_scores"
)

// #endregion record

// #region column-score

// ColumnScore is one column's entry under the column_drift_scores mapping.
type ColumnScore struct {
	DriftScore    float64 `json:"drift_score"`
	DriftDetected bool    `json:"drift_detected"`
}

// #endregion column-score

// #region scalar

// Scalar returns the numeric value stored under name. Records loaded from
// JSON carry float64; records built in-process may carry other numeric
// types. Returns false when the key is absent or non-numeric.
func Scalar(rec Record, name string) (float64, bool) {
	v, ok := rec[name]
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// #endregion scalar

// #region column-scores

// ColumnScores extracts the per-column drift-score mapping from a record.
// Handles both in-process typed values and shapes decoded from JSON.
// Returns an empty map when the key is absent or malformed.
func ColumnScores(rec Record) map[string]ColumnScore {
	out := map[string]ColumnScore{}
	raw, ok := rec[KeyColumnDriftScores]
	if !ok {
		return out
	}
	switch m := raw.(type) {
	case map[string]ColumnScore:
		for name, cs := range m {
			out[name] = cs
		}
	case map[string]any:
		for name, entry := range m {
			nested, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			var cs ColumnScore
			if f, ok := asFloat(nested["drift_score"]); ok {
				cs.DriftScore = f
			}
			if b, ok := nested["drift_detected"].(bool); ok {
				cs.DriftDetected = b
			}
			out[name] = cs
		}
	}
	return out
}

// #endregion column-scores

// #region merge

// Merge combines records left to right; later keys win.
func Merge(recs ...Record) Record {
	out := Record{}
	for _, rec := range recs {
		for k, v := range rec {
			out[k] = v
		}
	}
	return out
}

// #endregion merge
