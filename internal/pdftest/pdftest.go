// Package pdftest builds small single-font PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Page describes one page of a generated document. A zero Width or Height
// leaves the MediaBox to be inherited from the page tree (US Letter).
type Page struct {
	Width   float64
	Height  float64
	Content string
}

// Build writes a PDF with one Helvetica font resource named F1. Every glyph
// in the font is 500 units wide.
func Build(pages ...Page) []byte {
	var objects []string

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
			strings.Join(kids, " "), len(pages)),
		font(),
	)

	for i, p := range pages {
		box := ""
		if p.Width > 0 && p.Height > 0 {
			box = fmt.Sprintf(" /MediaBox [0 0 %s %s]", num(p.Width), num(p.Height))
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R%s /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				box, 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(p.Content), p.Content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func font() string {
	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = "500"
	}
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " "))
}

// Text shows s with its baseline starting at (x, y) in PDF user space
func Text(x, y, size float64, s string) string {
	return fmt.Sprintf("BT /F1 %s Tf %s %s Td (%s) Tj ET\n", num(size), num(x), num(y), escape(s))
}

// Line strokes a segment from (x0, y0) to (x1, y1)
func Line(x0, y0, x1, y1 float64) string {
	return fmt.Sprintf("%s %s m %s %s l S\n", num(x0), num(y0), num(x1), num(y1))
}

// Grid strokes a ruled grid whose column and row boundaries are given in
// PDF user space. ys runs top to bottom.
func Grid(xs, ys []float64) string {
	var b strings.Builder
	for _, y := range ys {
		b.WriteString(Line(xs[0], y, xs[len(xs)-1], y))
	}
	for _, x := range xs {
		b.WriteString(Line(x, ys[0], x, ys[len(ys)-1]))
	}
	return b.String()
}

func num(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", f), "0"), ".")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
