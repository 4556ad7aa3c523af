package text

import (
	"testing"

	"github.com/tsawler/pagerag/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Revenue   grew\t10% ", "Revenue grew 10%"},
		{"1,234,567", "1234567"},
		{"1,2,3", "123"},
		{"apples, pears", "apples, pears"},
		{"a,1", "a,1"},
		{"ﬁnance", "finance"},
		{"１２３", "123"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildLineSet(t *testing.T) {
	set := BuildLineSet([][]string{
		{"Revenue", "1,200", ""},
		{"Total", "", ""},
		{" ", "", ""},
		{"Cost", " 300 ", "n/a"},
	})

	if len(set) != 2 {
		t.Fatalf("BuildLineSet() = %v, want 2 entries", set)
	}
	for _, line := range []string{"Revenue 1200", "Revenue 1,200", "Cost 300 n/a"} {
		if !set.Has(line) {
			t.Errorf("set should contain %q", line)
		}
	}
	if set.Has("Total") {
		t.Error("single-cell rows must not be used")
	}
}

func TestRemoveTableLines(t *testing.T) {
	tables := []*model.TableItem{
		model.NewTableItem(nil, [][]string{{"Revenue", "grew", "10%."}}, model.SourceStream),
	}

	in := "Revenue grew 10%.\nRevenue grew by more than 10%. Overall positive."
	got := RemoveTableLines(in, tables)
	want := "Revenue grew by more than 10%. Overall positive."
	if got != want {
		t.Errorf("RemoveTableLines() = %q, want %q", got, want)
	}
}

func TestRemoveTableLines_TwoByTwo(t *testing.T) {
	tables := []*model.TableItem{
		model.NewTableItem(nil, [][]string{{"A", "B"}, {"C", "D"}}, model.SourceStream),
	}

	if got := RemoveTableLines("A B\nC D", tables); got != "" {
		t.Errorf("RemoveTableLines() = %q, want empty", got)
	}
}

func TestRemoveTableLines_DropsBlankLines(t *testing.T) {
	tables := []*model.TableItem{
		model.NewTableItem(nil, [][]string{{"x", "y"}}, model.SourceStream),
	}

	got := RemoveTableLines("first\n\nx  y\n\nsecond", tables)
	if got != "first\nsecond" {
		t.Errorf("RemoveTableLines() = %q, want %q", got, "first\nsecond")
	}
}

func TestRemoveTableLines_NoTables(t *testing.T) {
	in := "para one\n\npara two"
	if got := RemoveTableLines(in, nil); got != in {
		t.Errorf("RemoveTableLines() without tables changed text: %q", got)
	}
}

func TestRemoveTableLines_Idempotent(t *testing.T) {
	tables := []*model.TableItem{
		model.NewTableItem(nil, [][]string{{"Q1", "1,000"}, {"Q2", "2,000"}}, model.SourceStream),
	}
	in := "Quarterly totals\nQ1 1000\nQ2 2,000\n\nNotes follow"

	once := RemoveTableLines(in, tables)
	twice := RemoveTableLines(once, tables)
	if once != twice {
		t.Errorf("second pass changed text: %q -> %q", once, twice)
	}
	if once != "Quarterly totals\nNotes follow" {
		t.Errorf("RemoveTableLines() = %q", once)
	}
}
