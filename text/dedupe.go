package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pagerag/model"
)

// MinRowCells is the number of non-blank cells a table row needs before it
// is used to remove matching text lines. Single-cell rows match ordinary
// headings and words too easily.
const MinRowCells = 2

// LineSet holds normalized table rows
type LineSet map[string]struct{}

// Has reports whether the normalized form of line is in the set
func (s LineSet) Has(line string) bool {
	n := Normalize(line)
	if n == "" {
		return false
	}
	_, ok := s[n]
	return ok
}

// Normalize canonicalizes a line for comparison: NFKC, whitespace runs
// collapsed to single spaces, and commas between two digits removed so
// "1,234" equals "1234".
func Normalize(s string) string {
	s = strings.Join(strings.Fields(norm.NFKC.String(s)), " ")

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		if r == ',' && i > 0 && i < len(runes)-1 &&
			unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BuildLineSet returns the normalized rows of a table that hold at least
// MinRowCells non-blank cells, each row's cells joined by single spaces
func BuildLineSet(rows [][]string) LineSet {
	set := make(LineSet)
	addRows(set, rows)
	return set
}

func addRows(set LineSet, rows [][]string) {
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) < MinRowCells {
			continue
		}
		if n := Normalize(strings.Join(cells, " ")); n != "" {
			set[n] = struct{}{}
		}
	}
}

// RemoveTableLines drops every line of s that exactly equals, after
// normalization, a row of one of the tables. Matching is whole-line only;
// prose sharing words with a cell is kept. Surviving lines are rejoined
// without blank lines. Applying it twice gives the same result as once.
func RemoveTableLines(s string, tables []*model.TableItem) string {
	if s == "" {
		return s
	}

	set := make(LineSet)
	for _, t := range tables {
		if t != nil {
			addRows(set, t.RawData)
		}
	}
	if len(set) == 0 {
		return s
	}

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" || set.Has(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
