package model

import (
	"strings"
)

// Source identifies the detection strategy that produced a table
type Source string

const (
	SourcePrimary Source = "primary"
	SourceLattice Source = "fallback-lines"
	SourceStream  Source = "fallback-stream"
)

// TableItem is a detected table with its normalized cell grid
type TableItem struct {
	// BBox is nil when the strategy cannot locate the table reliably
	BBox *Rect

	// RawData holds rows × columns of trimmed cell text. After
	// NewTableItem every row has the same number of columns.
	RawData [][]string

	// Markdown is the rendered markdown table
	Markdown string

	Source Source

	// Confidence is the detector's score (0-1), when it computes one
	Confidence float64
}

// NewTableItem normalizes rows and renders markdown. It returns nil when
// every cell of every row is blank.
func NewTableItem(bbox *Rect, rows [][]string, source Source) *TableItem {
	normalized := NormalizeRows(rows)
	if len(normalized) == 0 {
		return nil
	}
	return &TableItem{
		BBox:     bbox,
		RawData:  normalized,
		Markdown: ToMarkdown(normalized),
		Source:   source,
	}
}

// RowCount returns the number of rows
func (t *TableItem) RowCount() int {
	return len(t.RawData)
}

// ColCount returns the normalized column count
func (t *TableItem) ColCount() int {
	if len(t.RawData) == 0 {
		return 0
	}
	return len(t.RawData[0])
}

// HasBBox reports whether the table carries a usable region
func (t *TableItem) HasBBox() bool {
	return t.BBox != nil && !t.BBox.IsDegenerate()
}

// IsBlankRows reports whether every cell of every row is blank after trimming
func IsBlankRows(rows [][]string) bool {
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}

// NormalizeRows trims every cell, drops rows with no content and pads
// ragged rows with empty cells up to the widest row.
func NormalizeRows(rows [][]string) [][]string {
	var kept [][]string
	width := 0
	for _, row := range rows {
		cells := make([]string, len(row))
		nonBlank := false
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
			if cells[i] != "" {
				nonBlank = true
			}
		}
		if !nonBlank {
			continue
		}
		if len(cells) > width {
			width = len(cells)
		}
		kept = append(kept, cells)
	}

	for i, row := range kept {
		for len(row) < width {
			row = append(row, "")
		}
		kept[i] = row
	}
	return kept
}

// ToMarkdown renders rows as a markdown table. Row 0 is the header. Rows
// are padded to the widest row and pipes/newlines in cells are escaped.
func ToMarkdown(rows [][]string) string {
	rows = NormalizeRows(rows)
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for _, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(escapeCell(cell))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])

	sb.WriteString("|")
	for range rows[0] {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")

	for _, row := range rows[1:] {
		writeRow(row)
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// escapeCell escapes pipes and flattens line breaks inside a cell
func escapeCell(cell string) string {
	cell = strings.ReplaceAll(cell, "|", `\|`)
	cell = strings.ReplaceAll(cell, "\r\n", " ")
	cell = strings.ReplaceAll(cell, "\n", " ")
	cell = strings.ReplaceAll(cell, "\r", " ")
	return strings.TrimSpace(cell)
}
