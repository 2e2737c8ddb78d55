package dataset

import (
	"fmt"
	"sort"
	"time"
)

// #region column-types

// Column type names used in schema configuration.
const (
	TypeNumerical   = "numerical"
	TypeCategorical = "categorical"
	TypeText        = "text"
	TypeTimestamp   = "timestamp"
)

// #endregion column-types

// #region schema

// Schema declares expected column types and required columns.
type Schema struct {
	ColumnTypes     map[string]string
	RequiredColumns []string
}

// ColumnQuality holds per-column quality metrics.
type ColumnQuality struct {
	MissingPct  float64        `json:"missing_pct"`
	UniqueCount int            `json:"unique_count"`
	Min         *float64       `json:"min,omitempty"`
	Max         *float64       `json:"max,omitempty"`
	TopValues   map[string]int `json:"top_values,omitempty"`
}

// ValidationResult reports schema conformance and quality metrics.
type ValidationResult struct {
	Valid    bool                     `json:"valid"`
	Errors   []string                 `json:"errors,omitempty"`
	Warnings []string                 `json:"warnings,omitempty"`
	Quality  map[string]ColumnQuality `json:"quality_metrics"`
}

// #endregion schema

// #region validate

// Validate checks the table against the schema and computes per-column
// quality metrics. Validation never fails the run; the result is carried
// into the run summary for the reporting layer.
func (s Schema) Validate(t *Table) ValidationResult {
	result := ValidationResult{Valid: true, Quality: map[string]ColumnQuality{}}

	for _, req := range s.RequiredColumns {
		if _, ok := t.Column(req); !ok {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("missing required column: %s", req))
		}
	}

	for _, name := range t.Columns() {
		vals, _ := t.Column(name)
		q := columnQuality(name, vals, s.ColumnTypes[name], t)
		result.Quality[name] = q

		if t.Len() > 0 && q.MissingPct == 100 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("empty column detected: %s", name))
		}
		if s.ColumnTypes[name] == TypeTimestamp {
			if bad := firstUnparseableTimestamp(vals); bad != "" {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to parse timestamp column %s: %q", name, bad))
			}
		}
	}
	return result
}

func columnQuality(name string, vals []string, colType string, t *Table) ColumnQuality {
	q := ColumnQuality{}
	missing := 0
	distinct := map[string]int{}
	for _, v := range vals {
		if v == "" {
			missing++
			continue
		}
		distinct[v]++
	}
	if len(vals) > 0 {
		q.MissingPct = float64(missing) / float64(len(vals)) * 100
	}
	q.UniqueCount = len(distinct)

	switch colType {
	case TypeNumerical:
		if nums, err := t.NumericColumn(name); err == nil && len(nums) > 0 {
			min, max := nums[0], nums[0]
			for _, n := range nums[1:] {
				if n < min {
					min = n
				}
				if n > max {
					max = n
				}
			}
			q.Min, q.Max = &min, &max
		}
	case TypeCategorical:
		q.TopValues = topValues(distinct, 5)
	}
	return q
}

// topValues returns the k most frequent values with their counts.
func topValues(counts map[string]int, k int) map[string]int {
	type pair struct {
		value string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for v, c := range counts {
		pairs = append(pairs, pair{v, c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].value < pairs[j].value
	})
	if len(pairs) > k {
		pairs = pairs[:k]
	}
	out := map[string]int{}
	for _, p := range pairs {
		out[p.value] = p.count
	}
	return out
}

func firstUnparseableTimestamp(vals []string) string {
	layouts := []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
	for _, v := range vals {
		if v == "" {
			continue
		}
		ok := false
		for _, layout := range layouts {
			if _, err := time.Parse(layout, v); err == nil {
				ok = true
				break
			}
		}
		if !ok {
			return v
		}
	}
	return ""
}

// #endregion validate
