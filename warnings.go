package pagerag

import (
	"strings"

	"github.com/tsawler/pagerag/internal/scope"
	"github.com/tsawler/pagerag/model"
)

// Warning is a non-fatal problem met during a conversion. The result is
// still usable but may be degraded for the page it names.
type Warning = scope.Warning

// Warning kinds
const (
	WarnMalformedPage       = scope.KindMalformedPage
	WarnDetectorUnavailable = scope.KindDetectorUnavailable
	WarnOCR                 = scope.KindOCR
	WarnEmptyPage           = scope.KindEmptyPage
)

// Errors returned by terminal operations, re-exported for errors.Is
var (
	ErrMalformedPage       = model.ErrMalformedPage
	ErrDetectorUnavailable = model.ErrDetectorUnavailable
	ErrEmptyCorpus         = model.ErrEmptyCorpus
)

// FormatWarnings renders warnings one per line
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
