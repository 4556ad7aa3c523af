package model

import (
	"strings"
	"testing"
)

func TestNormalizeRows(t *testing.T) {
	rows := [][]string{
		{" Name ", "Qty", "Price"},
		{"", "  ", ""},
		{"Apple", "3"},
		{"Pear"},
	}

	got := NormalizeRows(rows)

	if len(got) != 3 {
		t.Fatalf("NormalizeRows() returned %d rows, want 3", len(got))
	}
	for i, row := range got {
		if len(row) != 3 {
			t.Errorf("row %d has %d columns, want 3", i, len(row))
		}
	}
	if got[0][0] != "Name" {
		t.Errorf("cell not trimmed: %q", got[0][0])
	}
	if got[2][1] != "" || got[2][2] != "" {
		t.Errorf("ragged row not padded: %q", got[2])
	}
}

func TestNewTableItem_Blank(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
	}{
		{"nil", nil},
		{"empty rows", [][]string{{}, {}}},
		{"whitespace cells", [][]string{{" ", "\t"}, {"", "\n"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if item := NewTableItem(nil, tt.rows, SourcePrimary); item != nil {
				t.Errorf("NewTableItem() = %+v, want nil for blank table", item)
			}
			if !IsBlankRows(tt.rows) {
				t.Error("IsBlankRows() = false, want true")
			}
		})
	}
}

func TestNewTableItem(t *testing.T) {
	bbox := Rect{10, 10, 100, 50}
	item := NewTableItem(&bbox, [][]string{{"A", "B"}, {"C"}}, SourceLattice)

	if item == nil {
		t.Fatal("NewTableItem() returned nil")
	}
	if item.Source != SourceLattice {
		t.Errorf("Source = %q, want %q", item.Source, SourceLattice)
	}
	if item.RowCount() != 2 || item.ColCount() != 2 {
		t.Errorf("dimensions = %dx%d, want 2x2", item.RowCount(), item.ColCount())
	}
	if !item.HasBBox() {
		t.Error("HasBBox() = false, want true")
	}
	if item.Markdown == "" {
		t.Error("Markdown not rendered")
	}

	noBox := NewTableItem(nil, [][]string{{"x", "y"}}, SourceStream)
	if noBox.HasBBox() {
		t.Error("HasBBox() = true for nil bbox")
	}
}

func TestToMarkdown(t *testing.T) {
	got := ToMarkdown([][]string{{"A", "B"}, {"C", "D"}})
	want := "| A | B |\n| --- | --- |\n| C | D |"
	if got != want {
		t.Errorf("ToMarkdown() =\n%s\nwant\n%s", got, want)
	}
}

func TestToMarkdown_Escaping(t *testing.T) {
	got := ToMarkdown([][]string{{"a|b", "line1\nline2"}, {"x", "y"}})
	if !strings.Contains(got, `a\|b`) {
		t.Errorf("pipe not escaped: %s", got)
	}
	if !strings.Contains(got, "line1 line2") {
		t.Errorf("newline not flattened: %s", got)
	}
	if len(strings.Split(got, "\n")) != 3 {
		t.Errorf("markdown should have 3 lines, got:\n%s", got)
	}
}

func TestToMarkdown_ColumnCounts(t *testing.T) {
	tables := [][][]string{
		{{"A", "B"}, {"C", "D"}},
		{{"one"}, {"two", "three", "four"}},
		{{"h1", "h2", "h3", "h4"}},
		{{"x", "", "z"}, {"", "", "w"}, {"q"}},
	}

	for i, rows := range tables {
		item := NewTableItem(nil, rows, SourcePrimary)
		if item == nil {
			t.Fatalf("table %d: NewTableItem() returned nil", i)
		}
		cols := item.ColCount()
		lines := strings.Split(item.Markdown, "\n")

		if n := strings.Count(lines[0], " |"); n != cols {
			t.Errorf("table %d: header has %d cells, want %d", i, n, cols)
		}
		if n := strings.Count(lines[1], "---"); n != cols {
			t.Errorf("table %d: separator has %d dash groups, want %d", i, n, cols)
		}
	}
}

func TestToMarkdown_Empty(t *testing.T) {
	if got := ToMarkdown(nil); got != "" {
		t.Errorf("ToMarkdown(nil) = %q, want empty", got)
	}
}

func TestPageRecordIsEmpty(t *testing.T) {
	if !(PageRecord{Number: 1, Text: "  \n"}).IsEmpty() {
		t.Error("whitespace-only record should be empty")
	}
	if (PageRecord{Number: 1, Text: "x"}).IsEmpty() {
		t.Error("record with text should not be empty")
	}
	item := NewTableItem(nil, [][]string{{"a", "b"}}, SourcePrimary)
	if (PageRecord{Number: 1, Tables: []*TableItem{item}}).IsEmpty() {
		t.Error("record with a table should not be empty")
	}
}
