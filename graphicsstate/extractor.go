package graphicsstate

import (
	"fmt"
	"math"
	"sync"

	"github.com/tsawler/pagerag/model"
)

// GraphicsExtractor runs content stream operations through a graphics state
// and collects the rulings they paint
type GraphicsExtractor struct {
	gs            *GraphicsState
	pathExtractor *PathExtractor
}

// NewGraphicsExtractor creates a new graphics extractor
func NewGraphicsExtractor() *GraphicsExtractor {
	gs := NewGraphicsState()
	return &GraphicsExtractor{
		gs:            gs,
		pathExtractor: NewPathExtractor(gs),
	}
}

// Extract processes operations in order
func (ge *GraphicsExtractor) Extract(operations []Operation) error {
	for _, op := range operations {
		if err := ge.processOperation(op); err != nil {
			return err
		}
	}
	return nil
}

// ExtractFromBytes parses and processes a decoded content stream. Rulings
// painted before a syntax error are kept.
func (ge *GraphicsExtractor) ExtractFromBytes(data []byte) error {
	ops, parseErr := Parse(data)
	if err := ge.Extract(ops); err != nil {
		return err
	}
	return parseErr
}

// Rulings returns the rulings painted so far, in PDF user space
func (ge *GraphicsExtractor) Rulings() []model.Ruling {
	return ge.pathExtractor.Rulings()
}

func (ge *GraphicsExtractor) processOperation(op Operation) error {
	n := op.Operands
	pe := ge.pathExtractor

	switch op.Operator {
	case "q":
		ge.gs.Save()
	case "Q":
		return ge.gs.Restore()
	case "cm":
		if len(n) == 6 && allNumbers(n) {
			ge.gs.Transform(model.Matrix{n[0], n[1], n[2], n[3], n[4], n[5]})
		}
	case "w":
		if len(n) == 1 && allNumbers(n) {
			ge.gs.SetLineWidth(n[0])
		}

	// Path construction
	case "m":
		if len(n) == 2 && allNumbers(n) {
			pe.MoveTo(n[0], n[1])
		}
	case "l":
		if len(n) == 2 && allNumbers(n) {
			pe.LineTo(n[0], n[1])
		}
	case "c":
		if len(n) == 6 && allNumbers(n) {
			pe.CurveTo(n[4], n[5])
		}
	case "v", "y":
		if len(n) == 4 && allNumbers(n) {
			pe.CurveTo(n[2], n[3])
		}
	case "h":
		pe.ClosePath()
	case "re":
		if len(n) == 4 && allNumbers(n) {
			pe.Rectangle(n[0], n[1], n[2], n[3])
		}

	// Path painting
	case "S":
		pe.Paint(true, false)
	case "s":
		pe.ClosePath()
		pe.Paint(true, false)
	case "f", "F", "f*":
		pe.Paint(false, true)
	case "B", "B*":
		pe.Paint(true, true)
	case "b", "b*":
		pe.ClosePath()
		pe.Paint(true, true)
	case "n":
		pe.EndPath()
	}

	return nil
}

func allNumbers(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// ============================================================================
// Page rulings
// ============================================================================

// ContentSource provides the decoded content stream of a 1-indexed page
type ContentSource interface {
	PageContent(pageNr int) ([]byte, error)
}

// Source extracts the rulings of document pages through a shared pdfcpu
// context. Each page is interpreted once; later calls return the same
// result. A Source is safe for concurrent use.
type Source struct {
	content ContentSource

	// MinLength drops rulings shorter than this many points
	MinLength float64

	mu    sync.Mutex
	pages map[int]*pageRulings
}

type pageRulings struct {
	once    sync.Once
	rulings []model.Ruling
	err     error
}

// NewSource creates a ruling source over content, usually a *pdfctx.Context
func NewSource(content ContentSource) *Source {
	return &Source{content: content, MinLength: 1.0, pages: make(map[int]*pageRulings)}
}

// Rulings returns the rulings painted on page, in page-local coordinates
func (s *Source) Rulings(page *model.Page) ([]model.Ruling, error) {
	s.mu.Lock()
	pr, ok := s.pages[page.Number]
	if !ok {
		pr = &pageRulings{}
		s.pages[page.Number] = pr
	}
	s.mu.Unlock()

	pr.once.Do(func() {
		pr.rulings, pr.err = s.extract(page)
	})
	return pr.rulings, pr.err
}

func (s *Source) extract(page *model.Page) ([]model.Ruling, error) {
	data, err := s.content.PageContent(page.Number)
	if err != nil {
		return nil, err
	}

	ge := NewGraphicsExtractor()
	extractErr := ge.ExtractFromBytes(data)

	raw := ge.Rulings()
	if extractErr != nil && len(raw) == 0 {
		return nil, fmt.Errorf("page %d content: %w", page.Number, extractErr)
	}

	return ToPage(page, raw, s.MinLength), nil
}

// ToPage converts user-space rulings to page-local coordinates, dropping
// those shorter than minLength
func ToPage(page *model.Page, rulings []model.Ruling, minLength float64) []model.Ruling {
	out := make([]model.Ruling, 0, len(rulings))
	for _, r := range rulings {
		if r.Length() < minLength {
			continue
		}
		out = append(out, model.Ruling{
			Start: page.FromPDF(r.Start),
			End:   page.FromPDF(r.End),
			Width: r.Width,
		})
	}
	return out
}
