package dataset

import (
	"path/filepath"
	"testing"
)

func buildTable(t *testing.T, cols map[string][]string, order []string) *Table {
	t.Helper()
	table := NewTable()
	for _, name := range order {
		if err := table.AddColumn(name, cols[name]); err != nil {
			t.Fatal(err)
		}
	}
	return table
}

func TestAddColumnLengthMismatch(t *testing.T) {
	table := NewTable()
	if err := table.AddColumn("a", []string{"1", "2"}); err != nil {
		t.Fatal(err)
	}
	if err := table.AddColumn("b", []string{"1"}); err == nil {
		t.Error("expected error for unequal column length")
	}
	if err := table.AddColumn("a", []string{"3", "4"}); err == nil {
		t.Error("expected error for duplicate column")
	}
}

func TestNumericColumn(t *testing.T) {
	table := buildTable(t, map[string][]string{
		"n": {"1.5", "", "2.5"},
		"s": {"x", "y", "z"},
	}, []string{"n", "s"})

	nums, err := table.NumericColumn("n")
	if err != nil {
		t.Fatal(err)
	}
	if len(nums) != 2 || nums[0] != 1.5 || nums[1] != 2.5 {
		t.Errorf("NumericColumn = %v, want [1.5 2.5] (empties skipped)", nums)
	}
	if _, err := table.NumericColumn("s"); err == nil {
		t.Error("expected parse error for non-numeric column")
	}
	if !table.IsNumeric("n") || table.IsNumeric("s") {
		t.Error("IsNumeric misclassified a column")
	}
}

func TestDistinctRatio(t *testing.T) {
	table := buildTable(t, map[string][]string{
		"cat":  {"a", "a", "a", "b"},
		"text": {"w x", "y z", "p q", "r s"},
	}, []string{"cat", "text"})

	if got := table.DistinctRatio("cat"); got != 0.5 {
		t.Errorf("DistinctRatio(cat) = %v, want 0.5", got)
	}
	if got := table.DistinctRatio("text"); got != 1.0 {
		t.Errorf("DistinctRatio(text) = %v, want 1.0", got)
	}
}

func TestSchemaValidateMissingRequired(t *testing.T) {
	table := buildTable(t, map[string][]string{"a": {"1"}}, []string{"a"})
	s := Schema{RequiredColumns: []string{"a", "b"}}
	res := s.Validate(table)
	if res.Valid {
		t.Error("expected invalid result for missing required column")
	}
	if len(res.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", res.Errors)
	}
}

func TestSchemaValidateQualityMetrics(t *testing.T) {
	table := buildTable(t, map[string][]string{
		"num":   {"1", "3", ""},
		"cat":   {"x", "x", "y"},
		"empty": {"", "", ""},
	}, []string{"num", "cat", "empty"})
	s := Schema{ColumnTypes: map[string]string{
		"num": TypeNumerical,
		"cat": TypeCategorical,
	}}
	res := s.Validate(table)
	if !res.Valid {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	num := res.Quality["num"]
	if num.Min == nil || num.Max == nil || *num.Min != 1 || *num.Max != 3 {
		t.Errorf("numeric min/max wrong: %+v", num)
	}
	if num.MissingPct < 33.3 || num.MissingPct > 33.4 {
		t.Errorf("missing_pct = %v, want ~33.3", num.MissingPct)
	}

	cat := res.Quality["cat"]
	if cat.TopValues["x"] != 2 || cat.TopValues["y"] != 1 {
		t.Errorf("top values wrong: %v", cat.TopValues)
	}

	found := false
	for _, w := range res.Warnings {
		if w == "empty column detected: empty" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing empty-column warning, got %v", res.Warnings)
	}
}

func TestTableJSONRoundTrip(t *testing.T) {
	table := buildTable(t, map[string][]string{
		"b_col": {"1", "2"},
		"a_col": {"x", "y"},
	}, []string{"b_col", "a_col"})

	path := filepath.Join(t.TempDir(), "table.json")
	if err := table.WriteJSON(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := ReadJSON(path)
	if err != nil {
		t.Fatal(err)
	}

	cols := loaded.Columns()
	if len(cols) != 2 || cols[0] != "b_col" || cols[1] != "a_col" {
		t.Errorf("column order not preserved: %v", cols)
	}
	vals, _ := loaded.Column("a_col")
	if len(vals) != 2 || vals[1] != "y" {
		t.Errorf("values not preserved: %v", vals)
	}
}
