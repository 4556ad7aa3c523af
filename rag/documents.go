package rag

import (
	"strings"

	"github.com/tsawler/pagerag/model"
)

// Documents splits an assembled string into retrieval Documents with the
// default splitter
func Documents(assembled, source string) []model.Document {
	s, _ := NewRecursiveSplitter(DefaultSplitterConfig())
	return s.Documents(assembled, source)
}

// Documents recovers the page blocks of assembled and emits one Document
// per chunk of each page. Pages with no content produce no Document.
func (s *RecursiveSplitter) Documents(assembled, source string) []model.Document {
	var docs []model.Document
	for _, block := range SplitPages(assembled) {
		if strings.TrimSpace(block.Text) == "" {
			continue
		}

		var contents []string
		for _, c := range s.Split(block.Text) {
			if text := strings.TrimSpace(c.Text); text != "" {
				contents = append(contents, text)
			}
		}

		for i, text := range contents {
			page := block.Page
			docs = append(docs, model.Document{
				PageContent: text,
				Metadata: model.Metadata{
					Source:      source,
					Page:        &page,
					ChunkIndex:  i,
					IsPageSplit: len(contents) > 1,
				},
			})
		}
	}
	return docs
}
