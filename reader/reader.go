package reader

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/pagerag/model"
)

// letter is the MediaBox used when a page tree carries none
var letter = [4]float64{0, 0, 612, 792}

// maxTreeDepth bounds the walk up the page tree for inherited attributes
const maxTreeDepth = 32

// Document is an opened PDF. A Document is not safe for concurrent use;
// workers each open their own over the shared Buffer.
type Document struct {
	buf *Buffer
	r   *pdf.Reader
}

// Open parses the document structure from buf
func Open(buf *Buffer) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("failed to open PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(buf.NewReader(), int64(buf.Len()))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &Document{buf: buf, r: r}, nil
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	return d.r.NumPage()
}

// Page loads the words and dimensions of a 1-indexed page. Content that
// cannot be interpreted yields an error wrapping model.ErrMalformedPage.
func (d *Document) Page(n int) (page *model.Page, err error) {
	if n < 1 || n > d.PageCount() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", n, d.PageCount())
	}

	defer func() {
		if r := recover(); r != nil {
			page, err = nil, fmt.Errorf("page %d: %v: %w", n, r, model.ErrMalformedPage)
		}
	}()

	p := d.r.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object: %w", n, model.ErrMalformedPage)
	}

	page = model.NewPage(n, mediaBox(p.V))

	content := p.Content()
	glyphs := make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{Text: t.S, X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize})
	}
	page.Words = BuildWords(page, glyphs)

	return page, nil
}

// PlainText returns the page's text in content order without geometry. It
// serves as the fallback for pages Page cannot interpret.
func (d *Document) PlainText(n int) (text string, err error) {
	if n < 1 || n > d.PageCount() {
		return "", fmt.Errorf("page %d out of range [1, %d]", n, d.PageCount())
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d plain text: %v", n, r)
		}
	}()

	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d: missing page object", n)
	}
	return p.GetPlainText(nil)
}

// mediaBox resolves the page's MediaBox, inheriting from ancestors in the
// page tree when the page itself has none.
func mediaBox(v pdf.Value) [4]float64 {
	for depth := 0; depth < maxTreeDepth && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			var out [4]float64
			for i := range out {
				out[i] = box.Index(i).Float64()
			}
			if out[2] != out[0] && out[3] != out[1] {
				return out
			}
		}
		v = v.Key("Parent")
	}
	return letter
}
