// Package scope carries the per-conversion context through every pipeline
// stage: the provenance label, the logger and the warnings gathered along
// the way. A Scope lives for exactly one top-level conversion call.
package scope

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Warning kinds
const (
	KindMalformedPage       = "malformed_page"
	KindDetectorUnavailable = "detector_unavailable"
	KindOCR                 = "ocr"
	KindEmptyPage           = "empty_page"
)

// Warning is a non-fatal problem met while converting one page
type Warning struct {
	Page    int    `json:"page"` // 1-indexed page, 0 for document-level warnings
	Kind    string `json:"kind"` // one of the Kind constants
	Message string `json:"message"`
}

// String renders the warning on a single line
func (w Warning) String() string {
	if w.Page == 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("page %d: %s: %s", w.Page, w.Kind, w.Message)
}

// Scope is shared by all workers of one conversion. Its methods are safe
// for concurrent use.
type Scope struct {
	Source string
	Log    zerolog.Logger

	mu       sync.Mutex
	warnings []Warning
}

// New creates a scope for the given provenance label
func New(source string, log zerolog.Logger) *Scope {
	return &Scope{
		Source: source,
		Log:    log.With().Str("source", source).Logger(),
	}
}

// Nop creates a scope that discards log output
func Nop(source string) *Scope {
	return New(source, zerolog.Nop())
}

// Page returns a child logger annotated with the page number
func (s *Scope) Page(number int) zerolog.Logger {
	return s.Log.With().Int("page", number).Logger()
}

// Warn records a warning and logs it at warn level
func (s *Scope) Warn(page int, kind string, err error) {
	s.Log.Warn().Err(err).Int("page", page).Str("kind", kind).Msg("page degraded")

	s.mu.Lock()
	s.warnings = append(s.warnings, Warning{Page: page, Kind: kind, Message: err.Error()})
	s.mu.Unlock()
}

// Warnings returns the recorded warnings ordered by page
func (s *Scope) Warnings() []Warning {
	s.mu.Lock()
	out := append([]Warning(nil), s.warnings...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Page < out[j].Page
	})
	return out
}
