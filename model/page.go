package model

import "strings"

// Word is a whitespace-delimited run of glyphs with its page-local bounding box
type Word struct {
	Text     string
	BBox     Rect
	FontSize float64
}

// Line is a group of words sharing a vertical band, ordered left to right
type Line struct {
	Words []Word
	BBox  Rect
}

// Text joins the line's words with single spaces
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// Ruling is a straight stroked or filled segment drawn on the page, in
// page-local coordinates
type Ruling struct {
	Start Point
	End   Point
	Width float64
}

// IsHorizontal reports whether the ruling runs horizontally within tolerance
func (r Ruling) IsHorizontal(tolerance float64) bool {
	dy := r.End.Y - r.Start.Y
	return dy <= tolerance && dy >= -tolerance
}

// IsVertical reports whether the ruling runs vertically within tolerance
func (r Ruling) IsVertical(tolerance float64) bool {
	dx := r.End.X - r.Start.X
	return dx <= tolerance && dx >= -tolerance
}

// Length returns the length of the ruling
func (r Ruling) Length() float64 {
	return r.Start.Distance(r.End)
}

// Page is one page prepared for table detection and text extraction
type Page struct {
	Number int     // 1-indexed page number
	Width  float64 // Page width in points
	Height float64 // Page height in points

	// Origin is the lower-left corner of the MediaBox in PDF user space
	Origin Point

	// Words on the page at word granularity, in page-local coordinates
	Words []Word
}

// NewPage creates a page with the given MediaBox
func NewPage(number int, mediaBox [4]float64) *Page {
	box := NewRect(mediaBox[0], mediaBox[1], mediaBox[2], mediaBox[3])
	return &Page{
		Number: number,
		Width:  box.Width(),
		Height: box.Height(),
		Origin: Point{X: box.X0, Y: box.Y0},
	}
}

// FromPDF converts a point from PDF user space (origin bottom-left, Y up)
// into page-local coordinates (origin top-left, Y down).
func (p *Page) FromPDF(pt Point) Point {
	return Point{
		X: pt.X - p.Origin.X,
		Y: p.Height - (pt.Y - p.Origin.Y),
	}
}

// RectFromPDF converts a rectangle given by two PDF user-space corners
func (p *Page) RectFromPDF(a, b Point) Rect {
	return RectFromPoints(p.FromPDF(a), p.FromPDF(b))
}

// PageRecord is the extraction result for one page
type PageRecord struct {
	Number int          // 1-indexed page number
	Text   string       // Free text with table content removed
	Tables []*TableItem // Tables in detection order
}

// IsEmpty reports whether the page produced neither text nor tables
func (r PageRecord) IsEmpty() bool {
	return strings.TrimSpace(r.Text) == "" && len(r.Tables) == 0
}
