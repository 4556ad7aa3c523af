package pagerag

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tsawler/pagerag/cache"
	"github.com/tsawler/pagerag/rag"
	"github.com/tsawler/pagerag/tables"
	"github.com/tsawler/pagerag/text"
)

// Options holds the configuration of a conversion.
type Options struct {
	// Page selection, 1-indexed. Empty means all pages.
	Pages []int

	// Workers bounds the number of pages processed at once
	Workers int

	// Per-stage configuration
	Tables   tables.Config
	Text     text.Config
	Splitter rag.SplitterConfig

	// OCR recognizes the scanned image of pages with no text layer. It
	// requires a build with the "ocr" tag.
	OCR bool

	// Logger receives the conversion's log output. The zero value is a
	// disabled logger.
	Logger zerolog.Logger

	// Cache, when set, stores Documents keyed by the source digest and
	// these options
	Cache *cache.Store
}

// DefaultOptions returns the default options: all pages, one worker per
// CPU, 800 character chunks with 100 characters of overlap, no OCR and no
// logging.
func DefaultOptions() Options {
	return Options{
		Workers:  runtime.GOMAXPROCS(0),
		Tables:   tables.DefaultConfig(),
		Text:     text.DefaultConfig(),
		Splitter: rag.DefaultSplitterConfig(),
		Logger:   zerolog.Nop(),
	}
}

// clone creates a deep copy of Options.
func (o Options) clone() Options {
	out := o
	if o.Pages != nil {
		out.Pages = append([]int(nil), o.Pages...)
	}
	if o.Splitter.Separators != nil {
		out.Splitter.Separators = append([]string(nil), o.Splitter.Separators...)
	}
	return out
}

// fingerprint lists everything that shapes the produced Documents, for use
// as cache key components
func (o Options) fingerprint() []string {
	seen := make(map[int]bool)
	var pages []int
	for _, p := range o.Pages {
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)

	return []string{
		fmt.Sprintf("pages=%v", pages),
		fmt.Sprintf("tables=%+v", o.Tables),
		fmt.Sprintf("text=%+v", o.Text),
		fmt.Sprintf("chunk=%d", o.Splitter.ChunkSize),
		fmt.Sprintf("overlap=%d", o.Splitter.ChunkOverlap),
		fmt.Sprintf("separators=%q", o.Splitter.Separators),
		fmt.Sprintf("ocr=%t", o.OCR),
	}
}
