package pagerag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/pagerag/graphicsstate"
	"github.com/tsawler/pagerag/internal/pdfctx"
	"github.com/tsawler/pagerag/internal/scope"
	"github.com/tsawler/pagerag/model"
	"github.com/tsawler/pagerag/ocr"
	"github.com/tsawler/pagerag/reader"
	"github.com/tsawler/pagerag/tables"
	"github.com/tsawler/pagerag/text"
)

// wordSource supplies words for pages without a text layer
type wordSource interface {
	Words(page *model.Page) ([]model.Word, error)
}

// pipeline holds what the page workers of one conversion share
type pipeline struct {
	sc      *scope.Scope
	buf     *reader.Buffer
	chain   *tables.Chain
	words   wordSource
	options Options

	close func() error
}

func newPipeline(sc *scope.Scope, buf *reader.Buffer, options Options) *pipeline {
	pc := pdfctx.New(buf)

	p := &pipeline{
		sc:      sc,
		buf:     buf,
		chain:   tables.DefaultChain(options.Tables, graphicsstate.NewSource(pc)),
		options: options,
		close:   func() error { return nil },
	}

	if options.OCR {
		client, err := ocr.New()
		if err != nil {
			sc.Warn(0, scope.KindOCR, err)
			return p
		}
		p.words = ocr.NewSource(pc, &lockedRecognizer{r: client})
		p.close = client.Close
	}
	return p
}

// run processes pages with at most options.Workers in flight. Records are
// returned in the order of pages regardless of completion order.
func (p *pipeline) run(ctx context.Context, pages []int) ([]model.PageRecord, error) {
	records := make([]model.PageRecord, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.options.Workers))

	for i, n := range pages {
		i, n := i, n
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record, err := p.page(n)
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// page converts one page. Each call opens its own reader over the shared
// buffer.
func (p *pipeline) page(n int) (model.PageRecord, error) {
	log := p.sc.Page(n)

	doc, err := reader.Open(p.buf)
	if err != nil {
		return model.PageRecord{}, err
	}

	page, err := doc.Page(n)
	if errors.Is(err, model.ErrMalformedPage) {
		p.sc.Warn(n, scope.KindMalformedPage, err)
		return p.plainText(doc, n), nil
	}
	if err != nil {
		return model.PageRecord{}, fmt.Errorf("page %d: %w", n, err)
	}

	if len(page.Words) == 0 && p.words != nil {
		words, err := p.words.Words(page)
		if err != nil {
			p.sc.Warn(n, scope.KindOCR, err)
		} else {
			log.Debug().Int("words", len(words)).Msg("recognized page image")
			page.Words = words
		}
	}

	record := p.record(page)
	if record.IsEmpty() {
		p.sc.Warn(n, scope.KindEmptyPage, errors.New("no text or tables"))
	}
	log.Debug().Int("tables", len(record.Tables)).Int("chars", len(record.Text)).Msg("page converted")
	return record, nil
}

// record detects the page's tables and extracts the free text around them
func (p *pipeline) record(page *model.Page) model.PageRecord {
	found := p.chain.Detect(p.sc, page)

	body := text.Extract(page.Words, found, p.options.Text)
	return model.PageRecord{Number: page.Number, Text: body, Tables: found}
}

// plainText is the degraded path for a page whose layout cannot be read:
// its plain text with no tables
func (p *pipeline) plainText(doc *reader.Document, n int) model.PageRecord {
	s, err := doc.PlainText(n)
	if err != nil {
		log := p.sc.Page(n)
		log.Debug().Err(err).Msg("plain text unavailable")
		return model.PageRecord{Number: n}
	}
	return model.PageRecord{Number: n, Text: text.Clean(s)}
}

// lockedRecognizer serializes calls to a recognizer that is not safe for
// concurrent use
type lockedRecognizer struct {
	mu sync.Mutex
	r  ocr.Recognizer
}

func (l *lockedRecognizer) RecognizeWords(data []byte) ([]ocr.Box, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.RecognizeWords(data)
}
