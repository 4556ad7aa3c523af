package model

// Metadata is the provenance attached to every Document
type Metadata struct {
	// Source is the file name or identifier of the converted document
	Source string `json:"source"`

	// Page is the 1-indexed page number, nil when the page is unknown
	Page *int `json:"page"`

	// ChunkIndex is the position of this chunk within its page (0-indexed)
	ChunkIndex int `json:"chunk_index"`

	// IsPageSplit is true when the page produced more than one chunk
	IsPageSplit bool `json:"is_page_split"`
}

// Document is one retrieval-ready chunk handed to the indexing consumer
type Document struct {
	PageContent string   `json:"page_content"`
	Metadata    Metadata `json:"metadata"`
}

// PageNumber returns the page number, or 0 when it is unknown
func (d Document) PageNumber() int {
	if d.Metadata.Page == nil {
		return 0
	}
	return *d.Metadata.Page
}
