// Package docparse converts source documents into markdown text. Three
// interchangeable backends exist: a hosted agentic document analysis
// service, a local docling-serve container, and a plain loader for
// pre-extracted text files.
package docparse

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Page holds the markdown extracted from one page or page batch of a
// source document.
type Page struct {
	Number   int    `json:"number"` // first 1-indexed page covered by this batch
	Markdown string `json:"markdown"`
}

// Parser converts a source document into markdown pages.
type Parser interface {
	// Parse extracts markdown from the document at path, in page order.
	Parse(ctx context.Context, path string) ([]Page, error)

	// Name returns the parser identifier.
	Name() string
}

// Text joins extracted pages into a single document string.
func Text(pages []Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Markdown)
	}
	return strings.Join(parts, "\n")
}

// Parser modes.
const (
	ModeHosted = "hosted"
	ModeLocal  = "local"
	ModeText   = "text"
)

// Config selects and configures a parser backend.
type Config struct {
	Mode       string
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	BatchPages int
	Port       string
}

// NewParser creates a parser for the configured mode. An empty mode means
// hosted.
func NewParser(cfg Config) (Parser, error) {
	switch cfg.Mode {
	case ModeHosted, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("parser.api_key is required for the hosted parser")
		}
		return NewHostedClient(HostedConfig{
			Endpoint:   cfg.Endpoint,
			APIKey:     cfg.APIKey,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			BatchPages: cfg.BatchPages,
		}), nil
	case ModeLocal:
		return NewLocalClient(LocalConfig{
			Port:       cfg.Port,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
		}), nil
	case ModeText:
		return NewTextLoader(), nil
	default:
		return nil, fmt.Errorf("unknown parser mode: %q", cfg.Mode)
	}
}

// YearNA marks documents whose filename carries no 4-digit year.
const YearNA = "NA"

var yearRE = regexp.MustCompile(`\d{4}`)

// YearFromFilename returns the first 4-digit group in the base filename,
// or YearNA when there is none.
func YearFromFilename(name string) string {
	if m := yearRE.FindString(filepath.Base(name)); m != "" {
		return m
	}
	return YearNA
}

// Stem returns the filename without directory or extension. Stems key the
// extracted-text cache.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
