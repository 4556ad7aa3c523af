package text

import (
	"regexp"
	"strings"
)

var (
	hyphenBreak = regexp.MustCompile(`-\s*\n\s*`)
	blankRun    = regexp.MustCompile(`[ \t]+`)
	newlineRun  = regexp.MustCompile(`\n{3,}`)
)

// FixHyphenation joins words split across lines with a trailing hyphen:
// "exam-\nple" becomes "example"
func FixHyphenation(s string) string {
	return hyphenBreak.ReplaceAllString(s, "")
}

// Clean repairs hyphenation, collapses runs of spaces and tabs, limits
// blank lines to one and trims the result
func Clean(s string) string {
	s = FixHyphenation(s)
	s = blankRun.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
