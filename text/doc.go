// Package text turns a page's words into free text with table content
// removed.
//
// # Extraction
//
// [Extract] drops every word whose bbox lies inside a table bbox, rebuilds
// lines from the remaining words and cleans the result:
//
//	body := text.Extract(page.Words, tables, text.DefaultConfig())
//
// Lines are rebuilt by [BuildLines]: words sorted by top then left edge,
// grouped while their tops stay within a tolerance of the line's running
// top. Lines dominated by right-to-left script ([DetectDirection]) read
// right to left.
//
// [Clean] repairs end-of-line hyphenation ("exam-\nple" becomes "example"),
// collapses runs of spaces and limits blank lines.
//
// # Deduplication
//
// Tables found without a bbox cannot mask their words, so their rows
// survive extraction. [RemoveTableLines] removes any text line that equals
// a table row after [Normalize]:
//
//	body = text.RemoveTableLines(body, tables)
//
// Matching is whole-line and exact. A sentence that merely shares words
// with a table cell is never touched.
package text
