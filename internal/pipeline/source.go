package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/hamiltonlab/bluebook/internal/docparse"
	"github.com/hamiltonlab/bluebook/internal/metrics"
)

// textSource reads document text through the optional extraction cache.
// Both run lanes share it so cache layout and parse accounting stay
// identical.
type textSource struct {
	parser  docparse.Parser
	cache   *docparse.Cache
	metrics *metrics.Recorder
	runID   string
	logger  *slog.Logger
}

// text returns the extracted text for one document. A cache hit skips the
// parser entirely; cache failures degrade to a fresh parse rather than
// failing the document.
func (s *textSource) text(ctx context.Context, path, stem, year string) (string, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(stem)
		if err != nil {
			s.logger.Warn("cache read failed", "document", stem, "error", err)
		} else if ok {
			s.logger.Debug("using cached text", "document", stem)
			return cached, nil
		}
	}

	opts := metrics.RecordOpts{RunID: s.runID, Stage: StageParse, ItemKey: stem, Year: year}
	start := time.Now()
	pages, err := s.parser.Parse(ctx, path)
	if err != nil {
		s.metrics.RecordError(opts, "parse_failed", time.Since(start))
		return "", fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	text := docparse.Text(pages)
	if strings.TrimSpace(text) == "" {
		s.metrics.RecordError(opts, "empty_text", time.Since(start))
		return "", fmt.Errorf("parser returned no text for %s", filepath.Base(path))
	}
	s.metrics.RecordCount(opts, len(pages))

	if s.cache != nil {
		if err := s.cache.Put(stem, text); err != nil {
			s.logger.Warn("cache write failed", "document", stem, "error", err)
		}
	}
	return text, nil
}
