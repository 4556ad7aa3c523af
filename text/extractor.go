package text

import (
	"sort"
	"strings"

	"github.com/tsawler/pagerag/model"
)

// Config controls free-text extraction
type Config struct {
	// Margin added around each table bbox when testing word containment
	Margin float64

	// LineTolerance is the maximum distance between a word's top and the
	// running top of the current line (points)
	LineTolerance float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Margin:        0.5,
		LineTolerance: 3.0,
	}
}

// Extract returns the page's free text: words inside any table bbox are
// dropped, the rest are rebuilt into lines, lines equal to a table row are
// removed and the result is cleaned. Row matching runs on the raw lines,
// before hyphenation repair can join a row ending in "-" to the next one.
func Extract(words []model.Word, tables []*model.TableItem, config Config) string {
	kept := ExcludeTables(words, tables, config.Margin)
	if len(kept) == 0 {
		return ""
	}

	lines := BuildLines(kept, config.LineTolerance)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text())
	}
	return Clean(RemoveTableLines(strings.Join(out, "\n"), tables))
}

// ExcludeTables returns the words not contained in any table bbox
func ExcludeTables(words []model.Word, tables []*model.TableItem, margin float64) []model.Word {
	var boxes []model.Rect
	for _, t := range tables {
		if t != nil && t.HasBBox() {
			boxes = append(boxes, *t.BBox)
		}
	}
	if len(boxes) == 0 {
		return words
	}

	kept := make([]model.Word, 0, len(words))
	for _, w := range words {
		if !insideAny(w.BBox, boxes, margin) {
			kept = append(kept, w)
		}
	}
	return kept
}

func insideAny(r model.Rect, boxes []model.Rect, margin float64) bool {
	for _, b := range boxes {
		if model.Contains(b, r, margin) {
			return true
		}
	}
	return false
}

// BuildLines groups words into lines. Words are visited by (top, x0); a
// word joins the current line while its top is within tolerance of the
// line's running top. Words in a line read left to right, or right to left
// when the line is predominantly RTL script.
func BuildLines(words []model.Word, tolerance float64) []model.Line {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]model.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var lines []model.Line
	current := []model.Word{sorted[0]}
	top := sorted[0].BBox.Y0

	for _, w := range sorted[1:] {
		d := w.BBox.Y0 - top
		if d <= tolerance && d >= -tolerance {
			current = append(current, w)
			top = (top + w.BBox.Y0) / 2
			continue
		}
		lines = append(lines, makeLine(current))
		current = []model.Word{w}
		top = w.BBox.Y0
	}
	return append(lines, makeLine(current))
}

func makeLine(words []model.Word) model.Line {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	rtl := lineDirection(texts) == RTL

	sort.SliceStable(words, func(i, j int) bool {
		if rtl {
			return words[i].BBox.X0 > words[j].BBox.X0
		}
		return words[i].BBox.X0 < words[j].BBox.X0
	})

	bbox := words[0].BBox
	for _, w := range words[1:] {
		bbox = bbox.Union(w.BBox)
	}
	return model.Line{Words: words, BBox: bbox}
}
