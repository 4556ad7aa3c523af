package rag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tsawler/pagerag/model"
)

// Labels of the assembled text
const (
	TextLabel = "[Text]"
	ruleWidth = 20
)

// pageMarker matches the line that opens each page block
var pageMarker = regexp.MustCompile(`(?m)^=== Page (\d+) ===$`)

// PageMarker returns the marker line for a page
func PageMarker(page int) string {
	return fmt.Sprintf("=== Page %d ===", page)
}

// Assemble renders page records into one page-delimited string. Each page
// opens with its marker, followed by the free text under [Text] when there
// is any, then every table's markdown under [Tables: K] headed by its
// 1-based index and source.
func Assemble(records []model.PageRecord) string {
	var sb strings.Builder
	for _, r := range records {
		writePage(&sb, r)
	}
	return sb.String()
}

func writePage(sb *strings.Builder, r model.PageRecord) {
	sb.WriteString(PageMarker(r.Number))
	sb.WriteString("\n\n")

	if text := strings.TrimSpace(r.Text); text != "" {
		sb.WriteString(TextLabel)
		sb.WriteString("\n")
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	if len(r.Tables) > 0 {
		fmt.Fprintf(sb, "[Tables: %d]\n", len(r.Tables))
		for i, t := range r.Tables {
			fmt.Fprintf(sb, "\n--- Table %d (%s) ---\n", i+1, t.Source)
			sb.WriteString(t.Markdown)
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

// PageBlock is the assembled content of one page, without its marker
type PageBlock struct {
	Page int
	Text string
}

// SplitPages recovers the page blocks of an assembled string. Text before
// the first marker is ignored. The closing rule of each page is stripped.
func SplitPages(assembled string) []PageBlock {
	locs := pageMarker.FindAllStringSubmatchIndex(assembled, -1)

	blocks := make([]PageBlock, 0, len(locs))
	for i, loc := range locs {
		page, err := strconv.Atoi(assembled[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		end := len(assembled)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimLeft(assembled[loc[1]:end], "\n")
		body = strings.TrimRight(body, "\n")
		body = strings.TrimSuffix(body, strings.Repeat("=", ruleWidth))

		blocks = append(blocks, PageBlock{Page: page, Text: body})
	}
	return blocks
}
