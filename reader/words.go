package reader

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/pagerag/model"
)

// Glyph is a single shown character in PDF user space. (X, Y) is the
// origin on the baseline and W the advance width.
type Glyph struct {
	Text     string
	X, Y     float64
	W        float64
	FontSize float64
}

// Word-building thresholds, as fractions of the font size
const (
	baselineTolerance = 0.5 // max baseline drift within one line
	wordGapRatio      = 0.3 // gap that starts a new word
	ascentRatio       = 0.8
	descentRatio      = 0.2
	duplicateDistance = 1.0 // glyphs overprinted within this distance are dropped
)

func (g Glyph) size() float64 {
	s := math.Abs(g.FontSize)
	if s == 0 {
		return 1
	}
	return s
}

func (g Glyph) width() float64 {
	if g.W > 0 {
		return g.W
	}
	return g.size() * 0.5
}

// BuildWords merges glyphs into words in page-local coordinates. Words are
// returned top to bottom, then left to right.
func BuildWords(page *model.Page, glyphs []Glyph) []model.Word {
	sorted := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.Text != "" {
			sorted = append(sorted, g)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var words []model.Word
	for start := 0; start < len(sorted); {
		base := sorted[start]
		end := start + 1
		for end < len(sorted) && base.Y-sorted[end].Y <= baselineTolerance*base.size() {
			end++
		}

		band := sorted[start:end]
		sort.SliceStable(band, func(i, j int) bool { return band[i].X < band[j].X })
		words = append(words, splitBand(page, band)...)
		start = end
	}
	return words
}

func splitBand(page *model.Page, band []Glyph) []model.Word {
	var words []model.Word
	var cur []Glyph

	flush := func() {
		if len(cur) > 0 {
			words = append(words, makeWord(page, cur))
			cur = nil
		}
	}

	for _, g := range band {
		if strings.TrimSpace(g.Text) == "" {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			if isOverprint(prev, g) {
				continue
			}
			if g.X-(prev.X+prev.width()) > wordGapRatio*prev.size() {
				flush()
			}
		}
		cur = append(cur, g)
	}
	flush()

	return words
}

// isOverprint detects the same glyph drawn twice at nearly the same spot,
// which some producers use to fake bold text.
func isOverprint(a, b Glyph) bool {
	return a.Text == b.Text &&
		math.Abs(a.X-b.X) < duplicateDistance &&
		math.Abs(a.Y-b.Y) < duplicateDistance
}

func makeWord(page *model.Page, glyphs []Glyph) model.Word {
	var sb strings.Builder
	size := 0.0
	for _, g := range glyphs {
		sb.WriteString(g.Text)
		size = math.Max(size, g.size())
	}

	first := glyphs[0]
	last := glyphs[len(glyphs)-1]
	baseline := first.Y

	bbox := page.RectFromPDF(
		model.Point{X: first.X, Y: baseline - descentRatio*size},
		model.Point{X: last.X + last.width(), Y: baseline + ascentRatio*size},
	)

	return model.Word{Text: sb.String(), BBox: bbox, FontSize: size}
}
