package tables

import (
	"errors"
	"fmt"

	"github.com/tsawler/pagerag/internal/scope"
	"github.com/tsawler/pagerag/model"
)

// Strategy is one table detection algorithm. Detect returns tables in
// page-local coordinates; a nil bbox is valid for strategies that cannot
// locate the table precisely.
type Strategy interface {
	// Source tags every table the strategy produces
	Source() model.Source

	// Detect finds tables on a page
	Detect(page *model.Page) ([]*model.TableItem, error)
}

// RulingSource provides the rulings drawn on a page in page-local
// coordinates
type RulingSource interface {
	Rulings(page *model.Page) ([]model.Ruling, error)
}

// Config holds detector configuration
type Config struct {
	// Minimum rows for a valid table
	MinRows int

	// Minimum columns for a valid table
	MinCols int

	// Minimum confidence threshold (0-1) for the geometric detector
	MinConfidence float64

	// Maximum gap between words to consider them in same cell (points)
	MaxCellGap float64

	// Gap, as a fraction of the font size, that always stays inside a cell.
	// Keeps ordinary word spacing of large fonts from splitting cells.
	CellGapRatio float64

	// Tolerance for row/column alignment (points)
	AlignmentTolerance float64

	// Vertical gap that separates candidate table regions (points)
	ClusterGap float64

	// Minimum ruling length for lattice detection (points)
	MinLineLength float64

	// Tolerance for grouping and joining rulings (points)
	LineTolerance float64

	// InferStreamBBox gives whitespace-detected tables the tight extent of
	// their words as bbox. When false they carry no bbox and their text is
	// removed from the page only by line deduplication.
	InferStreamBBox bool
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:            2,
		MinCols:            2,
		MinConfidence:      0.5,
		MaxCellGap:         5.0,
		CellGapRatio:       0.6,
		AlignmentTolerance: 2.0,
		ClusterGap:         50.0,
		MinLineLength:      10.0,
		LineTolerance:      3.0,
		InferStreamBBox:    true,
	}
}

// cellGap returns the horizontal gap above which two words of the given
// size belong to different cells
func (c Config) cellGap(fontSize float64) float64 {
	return max(c.MaxCellGap, c.CellGapRatio*fontSize)
}

// ============================================================================
// Chain
// ============================================================================

// Chain runs strategies in fixed priority order and stops at the first one
// that yields a non-blank table
type Chain struct {
	strategies []Strategy
}

// NewChain creates a chain trying strategies in the given order
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// DefaultChain builds the primary, fallback-lines, fallback-stream chain.
// rulings may be nil, in which case the lattice strategy reports itself
// unavailable and the geometric detector scores without drawn lines.
func DefaultChain(config Config, rulings RulingSource) *Chain {
	return NewChain(
		NewGeometricDetector(config, rulings),
		NewLatticeDetector(config, rulings),
		NewStreamDetector(config),
	)
}

// Strategies returns the chain's strategies in priority order
func (c *Chain) Strategies() []Strategy {
	return c.strategies
}

// Detect returns the tables of the first strategy that finds any. A
// strategy that fails or panics is recorded on sc and skipped; if every
// strategy fails the page is treated as table-free.
func (c *Chain) Detect(sc *scope.Scope, page *model.Page) []*model.TableItem {
	log := sc.Page(page.Number)

	for _, s := range c.strategies {
		found, err := run(s, page)
		if err != nil {
			sc.Warn(page.Number, scope.KindDetectorUnavailable, err)
			continue
		}

		kept := keepNonBlank(found, s.Source())
		if len(kept) > 0 {
			log.Debug().Str("strategy", string(s.Source())).Int("tables", len(kept)).Msg("tables detected")
			return kept
		}
		log.Debug().Str("strategy", string(s.Source())).Msg("no tables")
	}
	return nil
}

// run calls the strategy, converting a panic into ErrDetectorUnavailable
func run(s Strategy, page *model.Page) (found []*model.TableItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = fmt.Errorf("%s: panic: %v: %w", s.Source(), r, model.ErrDetectorUnavailable)
		}
	}()

	found, err = s.Detect(page)
	switch {
	case err == nil:
		return found, nil
	case errors.Is(err, model.ErrDetectorUnavailable):
		return nil, fmt.Errorf("%s: %w", s.Source(), err)
	default:
		return nil, fmt.Errorf("%s: %v: %w", s.Source(), err, model.ErrDetectorUnavailable)
	}
}

func keepNonBlank(found []*model.TableItem, source model.Source) []*model.TableItem {
	var kept []*model.TableItem
	for _, t := range found {
		if t == nil || model.IsBlankRows(t.RawData) {
			continue
		}
		t.Source = source
		kept = append(kept, t)
	}
	return kept
}
