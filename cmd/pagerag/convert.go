package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tsawler/pagerag"
	"github.com/tsawler/pagerag/cache"
	"github.com/tsawler/pagerag/model"
	"github.com/tsawler/pagerag/rag"
)

type convertFlags struct {
	text         bool
	output       string
	pages        string
	format       string
	chunkSize    int
	chunkOverlap int
	workers      int
	cache        string
	ocr          bool
	noStreamBBox bool
}

func newConvertCmd(g *globalFlags) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert PDF files to Documents",
		Long: `Convert PDF files to retrieval Documents, written as JSON lines by
default. With --text the assembled page-delimited text is written instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, g, f)
			if err != nil {
				return err
			}
			return runConvert(cmd, cfg, f, args)
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.text, "text", false, "write the assembled page text instead of Documents")
	fl.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fl.StringVarP(&f.pages, "pages", "p", "", "pages to convert, e.g. 1-3,7")
	fl.StringVarP(&f.format, "format", "f", "", "Document format (jsonl, json, csv, tsv)")
	fl.IntVar(&f.chunkSize, "chunk-size", 0, "target chunk size in characters")
	fl.IntVar(&f.chunkOverlap, "overlap", 0, "characters shared by consecutive chunks")
	fl.IntVarP(&f.workers, "workers", "w", 0, "pages converted concurrently")
	fl.StringVar(&f.cache, "cache", "", "sqlite cache of converted Documents")
	fl.BoolVar(&f.ocr, "ocr", false, "recognize pages without a text layer (needs -tags ocr)")
	fl.BoolVar(&f.noStreamBBox, "no-stream-bbox", false, "do not infer bounding boxes for whitespace tables")
	return cmd
}

// resolveConfig overlays the flags that were set on the config file
func resolveConfig(cmd *cobra.Command, g *globalFlags, f *convertFlags) (Config, error) {
	cfg, err := loadConfig(g.configFile)
	if err != nil {
		return Config{}, err
	}

	fl := cmd.Flags()
	if fl.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if fl.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if fl.Changed("format") {
		cfg.Format = f.format
	}
	if fl.Changed("chunk-size") {
		cfg.ChunkSize = f.chunkSize
	}
	if fl.Changed("overlap") {
		cfg.ChunkOverlap = f.chunkOverlap
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("cache") {
		cfg.Cache = f.cache
	}
	if fl.Changed("ocr") {
		cfg.OCR = f.ocr
	}
	if fl.Changed("no-stream-bbox") {
		cfg.StreamBBox = !f.noStreamBBox
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, cfg Config, f *convertFlags, files []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	format, err := rag.ParseExportFormat(cfg.Format)
	if err != nil {
		return err
	}

	pages, err := parsePages(f.pages)
	if err != nil {
		return err
	}

	opts := cfg.options(log)
	opts.Pages = pages
	if cfg.Cache != "" {
		store, err := cache.Open(cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Cache = store
	}

	out := cmd.OutOrStdout()
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		out = file
	}

	var all []model.Document
	var errs []error
	for _, name := range files {
		conv := pagerag.Open(name).WithOptions(opts)

		if f.text {
			text, warnings, err := conv.Text(ctx)
			logWarnings(log, name, warnings)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			if _, err := io.WriteString(out, text); err != nil {
				return err
			}
			continue
		}

		docs, warnings, err := conv.Documents(ctx)
		logWarnings(log, name, warnings)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		all = append(all, docs...)
	}

	if !f.text && len(all) > 0 {
		exporter := rag.NewExporterWithConfig(rag.ExportConfig{Format: format, IncludeHeader: true})
		if err := exporter.Export(all, out); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

// logWarnings summarizes a file's warnings; each one was already logged
// when it was recorded
func logWarnings(log zerolog.Logger, name string, warnings []pagerag.Warning) {
	if len(warnings) == 0 {
		return
	}
	log.Info().Str("file", name).Int("warnings", len(warnings)).Msg("converted with warnings")
}

// parsePages parses a page list such as "1-3,7". An empty string selects
// every page.
func parsePages(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")

		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		if start < 1 || end < start {
			return nil, fmt.Errorf("invalid page range %q", part)
		}
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}

	sort.Ints(pages)
	return pages, nil
}
