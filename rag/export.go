package rag

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/pagerag/model"
)

// ExportFormat defines the available export formats
type ExportFormat int

const (
	// ExportFormatJSONL exports as JSON Lines (one JSON object per line)
	ExportFormatJSONL ExportFormat = iota
	// ExportFormatJSON exports as a JSON array
	ExportFormatJSON
	// ExportFormatCSV exports as comma-separated values
	ExportFormatCSV
	// ExportFormatTSV exports as tab-separated values
	ExportFormatTSV
)

// String returns the format name
func (ef ExportFormat) String() string {
	switch ef {
	case ExportFormatJSONL:
		return "jsonl"
	case ExportFormatJSON:
		return "json"
	case ExportFormatCSV:
		return "csv"
	case ExportFormatTSV:
		return "tsv"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (ef ExportFormat) FileExtension() string {
	switch ef {
	case ExportFormatJSONL:
		return ".jsonl"
	case ExportFormatJSON:
		return ".json"
	case ExportFormatCSV:
		return ".csv"
	case ExportFormatTSV:
		return ".tsv"
	default:
		return ".txt"
	}
}

// ParseExportFormat returns the format with the given name
func ParseExportFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "jsonl", "ndjson":
		return ExportFormatJSONL, nil
	case "json":
		return ExportFormatJSON, nil
	case "csv":
		return ExportFormatCSV, nil
	case "tsv":
		return ExportFormatTSV, nil
	default:
		return 0, fmt.Errorf("unsupported export format: %q", name)
	}
}

// ExportConfig holds configuration options for export
type ExportConfig struct {
	Format ExportFormat

	// IncludeHeader includes a header row in CSV/TSV exports
	IncludeHeader bool

	// PrettyPrint enables indentation for JSON formats
	PrettyPrint bool
}

// DefaultExportConfig returns JSON Lines without indentation
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Format:        ExportFormatJSONL,
		IncludeHeader: true,
	}
}

// Exporter writes Documents in one of the export formats
type Exporter struct {
	config ExportConfig
}

// NewExporter creates a new exporter with default configuration
func NewExporter() *Exporter {
	return &Exporter{config: DefaultExportConfig()}
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config ExportConfig) *Exporter {
	return &Exporter{config: config}
}

// Export writes docs to w
func (e *Exporter) Export(docs []model.Document, w io.Writer) error {
	switch e.config.Format {
	case ExportFormatJSONL:
		return e.exportJSONL(docs, w)
	case ExportFormatJSON:
		return e.exportJSON(docs, w)
	case ExportFormatCSV:
		return e.exportCSV(docs, w, ',')
	case ExportFormatTSV:
		return e.exportCSV(docs, w, '\t')
	default:
		return fmt.Errorf("unsupported export format: %v", e.config.Format)
	}
}

// ExportToFile writes docs to a file
func (e *Exporter) ExportToFile(docs []model.Document, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := e.Export(docs, f); err != nil {
		return err
	}
	return f.Close()
}

// ExportToString returns docs rendered in the configured format
func (e *Exporter) ExportToString(docs []model.Document) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(docs, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) encoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	if e.config.PrettyPrint {
		enc.SetIndent("", "  ")
	}
	return enc
}

func (e *Exporter) exportJSONL(docs []model.Document, w io.Writer) error {
	enc := e.encoder(w)
	for i, d := range docs {
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encoding document %d: %w", i, err)
		}
	}
	return nil
}

func (e *Exporter) exportJSON(docs []model.Document, w io.Writer) error {
	if docs == nil {
		docs = []model.Document{}
	}
	return e.encoder(w).Encode(docs)
}

var csvColumns = []string{"source", "page", "chunk_index", "is_page_split", "page_content"}

func (e *Exporter) exportCSV(docs []model.Document, w io.Writer, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if e.config.IncludeHeader {
		if err := cw.Write(csvColumns); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
	}

	for i, d := range docs {
		page := ""
		if d.Metadata.Page != nil {
			page = strconv.Itoa(*d.Metadata.Page)
		}
		row := []string{
			d.Metadata.Source,
			page,
			strconv.Itoa(d.Metadata.ChunkIndex),
			strconv.FormatBool(d.Metadata.IsPageSplit),
			d.PageContent,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
