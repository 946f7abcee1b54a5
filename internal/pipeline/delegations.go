// Package pipeline orchestrates the document runs: delegation extraction
// across session documents, contribution table extraction per document
// year, and the combine and fill steps over their outputs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hamiltonlab/bluebook/internal/delegation"
	"github.com/hamiltonlab/bluebook/internal/docparse"
	"github.com/hamiltonlab/bluebook/internal/llmcall"
	"github.com/hamiltonlab/bluebook/internal/metrics"
	"github.com/hamiltonlab/bluebook/internal/segment"
)

// Stage names stamped onto run metrics.
const (
	StageParse   = "parse"
	StageSegment = "segment"
	StageExtract = "extract"
	StageTables  = "tables"
	StageCombine = "combine"
)

const defaultConcurrency = 4

// DelegationsConfig configures a delegation extraction run.
type DelegationsConfig struct {
	InputDir string

	Parser    docparse.Parser
	Cache     *docparse.Cache // nil disables text caching
	Extractor *delegation.Extractor

	// Concurrency bounds the per-chunk extraction fan-out. Request rate is
	// the client's business: the LLM client throttles itself.
	Concurrency int

	RunID   string
	Metrics *metrics.Recorder
	Calls   *llmcall.Recorder
	Logger  *slog.Logger
}

// DelegationsRun drives session documents through parse, segment and
// extract into one delegation record stream. Documents are processed one
// at a time; within a document the per-country extraction calls fan out
// concurrently, with results slotted by chunk position so output order
// never depends on completion order.
type DelegationsRun struct {
	cfg    DelegationsConfig
	source textSource
	logger *slog.Logger
}

// NewDelegationsRun creates a run from its configuration, applying
// defaults for concurrency, run ID and logging.
func NewDelegationsRun(cfg DelegationsConfig) *DelegationsRun {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &DelegationsRun{
		cfg: cfg,
		source: textSource{
			parser:  cfg.Parser,
			cache:   cfg.Cache,
			metrics: cfg.Metrics,
			runID:   cfg.RunID,
			logger:  cfg.Logger,
		},
		logger: cfg.Logger,
	}
}

// RunID returns the identifier metrics and call records are stamped with.
func (r *DelegationsRun) RunID() string {
	return r.cfg.RunID
}

// DelegationsResult summarizes one run. Records appear in document order,
// chunks in heading order within each document.
type DelegationsResult struct {
	Records   []*delegation.Record
	Documents int // documents that produced records
	Skipped   int // documents with no text or no detectable headings
	Chunks    int
}

// Run processes every document under the input directory. Per-document
// failures are logged and skipped; only cancellation or an unreadable
// input directory fails the run.
func (r *DelegationsRun) Run(ctx context.Context) (*DelegationsResult, error) {
	paths, err := r.listDocuments()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s documents found in %s", strings.Join(r.extensions(), "/"), r.cfg.InputDir)
	}
	r.logger.Info("starting delegation run",
		"run_id", r.cfg.RunID, "documents", len(paths), "concurrency", r.cfg.Concurrency)

	result := &DelegationsResult{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := r.processDocument(ctx, path)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			result.Skipped++
			continue
		}
		result.Documents++
		result.Chunks += len(records)
		result.Records = append(result.Records, records...)
	}

	r.logger.Info("delegation run complete",
		"run_id", r.cfg.RunID,
		"documents", result.Documents,
		"skipped", result.Skipped,
		"records", len(result.Records))
	return result, nil
}

// processDocument turns one document into records, exactly one per
// detected country chunk. A document that yields no text or no chunks
// returns zero records and a nil error; the batch continues.
func (r *DelegationsRun) processDocument(ctx context.Context, path string) ([]*delegation.Record, error) {
	stem := docparse.Stem(path)
	year := docparse.YearFromFilename(path)
	log := r.logger.With("document", stem, "year", year)

	text, err := r.source.text(ctx, path, stem, year)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Error("no text extracted, skipping document", "error", err)
		return nil, nil
	}

	chunks := segment.Split(text)
	r.cfg.Metrics.RecordCount(r.opts(StageSegment, stem, year), len(chunks))
	if len(chunks) == 0 {
		log.Warn("no country headings detected, document produced no records")
		return nil, nil
	}
	log.Info("segmented document", "chunks", len(chunks))

	records := make([]*delegation.Record, len(chunks))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			rec, callResult, err := r.cfg.Extractor.Extract(gCtx, chunk)
			r.cfg.Metrics.RecordLLMCall(metrics.RecordOpts{
				RunID:   r.cfg.RunID,
				Stage:   StageExtract,
				ItemKey: chunk.Label,
				Year:    year,
			}, callResult)
			r.cfg.Calls.Record(callResult, llmcall.RecordOptions{
				RunID:     r.cfg.RunID,
				Document:  stem,
				Chunk:     chunk.Label,
				Year:      year,
				PromptKey: delegation.PromptKey,
			})

			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				log.Warn("extraction degraded to empty record", "country", chunk.Label, "error", err)
				rec = delegation.EmptyRecord(chunk.Label, year)
			}

			// The filename year always wins; the model never sees the filename.
			rec.Year = year
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// listDocuments returns the run's input files in name order.
func (r *DelegationsRun) listDocuments() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir: %w", err)
	}

	exts := r.extensions()
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				paths = append(paths, filepath.Join(r.cfg.InputDir, e.Name()))
				break
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// extensions selects input file types by parser: the text loader consumes
// pre-extracted text, everything else consumes PDFs.
func (r *DelegationsRun) extensions() []string {
	if r.cfg.Parser != nil && r.cfg.Parser.Name() == docparse.ModeText {
		return []string{".txt", ".md"}
	}
	return []string{".pdf"}
}

func (r *DelegationsRun) opts(stage, stem, year string) metrics.RecordOpts {
	return metrics.RecordOpts{RunID: r.cfg.RunID, Stage: stage, ItemKey: stem, Year: year}
}
