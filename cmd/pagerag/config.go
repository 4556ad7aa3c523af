package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/pagerag"
)

// Config is the CLI configuration. A YAML file sets it, flags override it.
type Config struct {
	ChunkSize     int     `yaml:"chunk_size"`
	ChunkOverlap  int     `yaml:"chunk_overlap"`
	Workers       int     `yaml:"workers"`
	Format        string  `yaml:"format"`     // jsonl | json | csv | tsv
	LogLevel      string  `yaml:"log_level"`  // zerolog level name
	LogFormat     string  `yaml:"log_format"` // console | json
	Cache         string  `yaml:"cache"`      // sqlite path, empty disables caching
	OCR           bool    `yaml:"ocr"`
	StreamBBox    bool    `yaml:"stream_bbox"`
	MinConfidence float64 `yaml:"min_confidence"`
}

func defaultConfig() Config {
	opts := pagerag.DefaultOptions()
	return Config{
		ChunkSize:     opts.Splitter.ChunkSize,
		ChunkOverlap:  opts.Splitter.ChunkOverlap,
		Workers:       runtime.GOMAXPROCS(0),
		Format:        "jsonl",
		LogLevel:      "info",
		LogFormat:     "console",
		StreamBBox:    opts.Tables.InferStreamBBox,
		MinConfidence: opts.Tables.MinConfidence,
	}
}

// loadConfig reads a YAML file over the defaults. Keys missing from the
// file keep their default value. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// options maps the configuration onto conversion options
func (c Config) options(log zerolog.Logger) pagerag.Options {
	opts := pagerag.DefaultOptions()
	opts.Splitter.ChunkSize = c.ChunkSize
	opts.Splitter.ChunkOverlap = c.ChunkOverlap
	opts.Workers = max(1, c.Workers)
	opts.OCR = c.OCR
	opts.Tables.InferStreamBBox = c.StreamBBox
	opts.Tables.MinConfidence = c.MinConfidence
	opts.Logger = log
	return opts
}

// newLogger builds the CLI logger writing to w
func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}

	switch format {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
