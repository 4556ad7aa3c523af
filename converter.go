package pagerag

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tsawler/pagerag/cache"
	"github.com/tsawler/pagerag/internal/scope"
	"github.com/tsawler/pagerag/model"
	"github.com/tsawler/pagerag/rag"
	"github.com/tsawler/pagerag/reader"
	"github.com/tsawler/pagerag/tables"
	"github.com/tsawler/pagerag/text"
)

// Converter provides a fluent interface for converting a PDF into
// Documents. Each configuration method returns a new Converter, so a
// Converter is safe for concurrent use and can serve as a template.
type Converter struct {
	// Source
	filename string
	source   string
	buf      *reader.Buffer

	// Configuration
	options Options
}

// clone creates a copy of the Converter with a deep copy of options.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename: c.filename,
		source:   c.source,
		buf:      c.buf,
		options:  c.options.clone(),
	}
}

// ============================================================================
// Configuration Methods
// ============================================================================

// WithOptions replaces every option at once
func (c *Converter) WithOptions(options Options) *Converter {
	out := c.clone()
	out.options = options.clone()
	return out
}

// Options returns a copy of the current options
func (c *Converter) Options() Options {
	return c.options.clone()
}

// Source overrides the label written to every Document's metadata
func (c *Converter) Source(source string) *Converter {
	out := c.clone()
	out.source = source
	return out
}

// Pages adds pages to convert (1-indexed). Calls accumulate.
//
// Example:
//
//	docs, _, err := pagerag.Open("doc.pdf").Pages(1, 3, 5).Documents(ctx)
func (c *Converter) Pages(pages ...int) *Converter {
	out := c.clone()
	out.options.Pages = append(out.options.Pages, pages...)
	return out
}

// PageRange adds a range of pages to convert (1-indexed, inclusive).
//
// Example:
//
//	docs, _, err := pagerag.Open("doc.pdf").PageRange(5, 10).Documents(ctx)
func (c *Converter) PageRange(start, end int) *Converter {
	out := c.clone()
	for i := start; i <= end; i++ {
		out.options.Pages = append(out.options.Pages, i)
	}
	return out
}

// Workers sets how many pages are processed concurrently. Values below one
// mean one.
func (c *Converter) Workers(n int) *Converter {
	out := c.clone()
	out.options.Workers = max(1, n)
	return out
}

// ChunkSize sets the target chunk size in characters
func (c *Converter) ChunkSize(n int) *Converter {
	out := c.clone()
	out.options.Splitter.ChunkSize = n
	return out
}

// ChunkOverlap sets how many characters consecutive chunks of a page may
// share
func (c *Converter) ChunkOverlap(n int) *Converter {
	out := c.clone()
	out.options.Splitter.ChunkOverlap = n
	return out
}

// Logger sets the logger the conversion reports through
func (c *Converter) Logger(log zerolog.Logger) *Converter {
	out := c.clone()
	out.options.Logger = log
	return out
}

// EnableOCR recognizes the scanned image of pages that have no text layer.
// Without the "ocr" build tag every such page gets an ocr warning instead.
func (c *Converter) EnableOCR() *Converter {
	out := c.clone()
	out.options.OCR = true
	return out
}

// StreamBBox controls whether whitespace-detected tables get the extent of
// their words as bbox. Without one their rows are removed from the free
// text by line deduplication only.
func (c *Converter) StreamBBox(infer bool) *Converter {
	out := c.clone()
	out.options.Tables.InferStreamBBox = infer
	return out
}

// TableConfig replaces the table detector configuration
func (c *Converter) TableConfig(config tables.Config) *Converter {
	out := c.clone()
	out.options.Tables = config
	return out
}

// TextConfig replaces the text extractor configuration
func (c *Converter) TextConfig(config text.Config) *Converter {
	out := c.clone()
	out.options.Text = config
	return out
}

// Cache stores and looks up Documents in store
func (c *Converter) Cache(store *cache.Store) *Converter {
	out := c.clone()
	out.options.Cache = store
	return out
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount returns the number of pages in the document
func (c *Converter) PageCount() (int, error) {
	buf, err := c.buffer()
	if err != nil {
		return 0, err
	}
	doc, err := reader.Open(buf)
	if err != nil {
		return 0, err
	}
	return doc.PageCount(), nil
}

// Records converts the selected pages and returns one record per page, in
// page order. Pages that cannot be read in full degrade to their plain
// text and are reported as warnings.
func (c *Converter) Records(ctx context.Context) ([]model.PageRecord, []Warning, error) {
	sc := scope.New(c.source, c.options.Logger)
	buf, err := c.buffer()
	if err != nil {
		return nil, nil, err
	}
	records, err := c.records(ctx, sc, buf)
	return records, sc.Warnings(), err
}

// Text converts the selected pages and returns the assembled,
// page-delimited text
//
// Example:
//
//	text, warnings, err := pagerag.Open("document.pdf").Text(ctx)
func (c *Converter) Text(ctx context.Context) (string, []Warning, error) {
	records, warnings, err := c.Records(ctx)
	if err != nil {
		return "", warnings, err
	}
	return rag.Assemble(records), warnings, nil
}

// Documents converts the selected pages into chunked Documents. It returns
// ErrEmptyCorpus when the document yields none.
//
// Example:
//
//	docs, warnings, err := pagerag.Open("document.pdf").Documents(ctx)
//	if errors.Is(err, pagerag.ErrEmptyCorpus) {
//	    // nothing to index
//	}
func (c *Converter) Documents(ctx context.Context) ([]model.Document, []Warning, error) {
	splitter, err := rag.NewRecursiveSplitter(c.options.Splitter)
	if err != nil {
		return nil, nil, fmt.Errorf("splitter: %w", err)
	}

	sc := scope.New(c.source, c.options.Logger)
	buf, err := c.buffer()
	if err != nil {
		return nil, nil, err
	}

	key := cache.Key(buf.Digest(), c.options.fingerprint()...)
	if c.options.Cache != nil {
		entry, ok, err := c.options.Cache.Get(ctx, key)
		if err != nil {
			sc.Log.Warn().Err(err).Msg("cache lookup failed")
		} else if ok {
			sc.Log.Info().Int("documents", len(entry.Documents)).Msg("served from cache")
			return relabel(entry.Documents, c.source), entry.Warnings, nil
		}
	}

	records, err := c.records(ctx, sc, buf)
	if err != nil {
		return nil, sc.Warnings(), err
	}

	docs := splitter.Documents(rag.Assemble(records), c.source)
	warnings := sc.Warnings()
	sc.Log.Info().
		Int("pages", len(records)).
		Int("documents", len(docs)).
		Int("warnings", len(warnings)).
		Msg("conversion finished")

	if len(docs) == 0 {
		return nil, warnings, fmt.Errorf("%s: %w", c.source, model.ErrEmptyCorpus)
	}

	if c.options.Cache != nil {
		entry := cache.Entry{Documents: docs, Warnings: warnings}
		if err := c.options.Cache.Put(ctx, key, c.source, entry); err != nil {
			sc.Log.Warn().Err(err).Msg("cache store failed")
		}
	}
	return docs, warnings, nil
}

// ============================================================================
// Internals
// ============================================================================

func (c *Converter) records(ctx context.Context, sc *scope.Scope, buf *reader.Buffer) ([]model.PageRecord, error) {
	pages, err := c.resolvePages(buf)
	if err != nil {
		return nil, err
	}

	p := newPipeline(sc, buf, c.options)
	defer p.close()

	return p.run(ctx, pages)
}

// buffer returns the document bytes, reading the file for Converters made
// by Open
func (c *Converter) buffer() (*reader.Buffer, error) {
	if c.buf != nil {
		return c.buf, nil
	}
	if c.filename == "" {
		return nil, errors.New("no filename specified")
	}
	return reader.ReadFile(c.filename)
}

// resolvePages validates the selected pages and returns them sorted and
// deduplicated. No selection means every page.
func (c *Converter) resolvePages(buf *reader.Buffer) ([]int, error) {
	doc, err := reader.Open(buf)
	if err != nil {
		return nil, err
	}
	pageCount := doc.PageCount()

	if len(c.options.Pages) == 0 {
		pages := make([]int, pageCount)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	seen := make(map[int]bool)
	var pages []int
	for _, p := range c.options.Pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}

	sort.Ints(pages)
	return pages, nil
}

// relabel sets the source of cached Documents, which may have been stored
// under another file name with identical content
func relabel(docs []model.Document, source string) []model.Document {
	out := make([]model.Document, len(docs))
	for i, d := range docs {
		d.Metadata.Source = source
		out[i] = d
	}
	return out
}
