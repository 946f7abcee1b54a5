package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hamiltonlab/bluebook/internal/contrib"
	"github.com/hamiltonlab/bluebook/internal/docparse"
	"github.com/hamiltonlab/bluebook/internal/export"
	"github.com/hamiltonlab/bluebook/internal/metrics"
	"github.com/hamiltonlab/bluebook/internal/tables"
)

// ContributionsExtractConfig configures table extraction from the annual
// status-of-contributions documents.
type ContributionsExtractConfig struct {
	InputDir  string
	TablesDir string // root dir; tables land in a per-year subdir

	Parser docparse.Parser
	Cache  *docparse.Cache

	RunID   string
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// ContributionsExtractRun pulls the embedded tables out of each document
// and persists them as per-year CSV files for the combine step.
type ContributionsExtractRun struct {
	cfg    ContributionsExtractConfig
	source textSource
	logger *slog.Logger
}

// NewContributionsExtractRun creates a run from its configuration.
func NewContributionsExtractRun(cfg ContributionsExtractConfig) *ContributionsExtractRun {
	if cfg.RunID == "" {
		cfg.RunID = uuid.New().String()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ContributionsExtractRun{
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

// ContributionsExtractResult summarizes one extraction run.
type ContributionsExtractResult struct {
	Documents int // documents whose tables were written
	Skipped   int // out-of-range years, parse failures, documents with no tables
	Tables    int
}

// Run processes every PDF under the input directory. Documents whose
// filename year falls outside the covered contribution years are skipped
// up front; per-document failures are logged and the batch continues.
func (r *ContributionsExtractRun) Run(ctx context.Context) (*ContributionsExtractResult, error) {
	entries, err := os.ReadDir(r.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(r.cfg.InputDir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF documents found in %s", r.cfg.InputDir)
	}
	r.logger.Info("starting contribution table extraction",
		"run_id", r.cfg.RunID, "documents", len(paths))

	result := &ContributionsExtractResult{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.processDocument(ctx, path)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			result.Skipped++
			continue
		}
		result.Documents++
		result.Tables += n
	}

	r.logger.Info("contribution table extraction complete",
		"run_id", r.cfg.RunID,
		"documents", result.Documents,
		"skipped", result.Skipped,
		"tables", result.Tables)
	return result, nil
}

// processDocument extracts and persists one document's tables, returning
// how many were written. Zero with a nil error means the document was
// skipped.
func (r *ContributionsExtractRun) processDocument(ctx context.Context, path string) (int, error) {
	stem := docparse.Stem(path)
	yearStr := docparse.YearFromFilename(path)
	log := r.logger.With("document", stem, "year", yearStr)

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		log.Warn("no year in filename, skipping document")
		return 0, nil
	}
	if _, ok := contrib.ForYear(year); !ok {
		log.Warn("year outside covered contribution range, skipping document",
			"min", contrib.MinYear, "max", contrib.MaxYear)
		return 0, nil
	}

	text, err := r.source.text(ctx, path, stem, yearStr)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		log.Error("no text extracted, skipping document", "error", err)
		return 0, nil
	}

	tbls := tables.Find(text)
	r.cfg.Metrics.RecordCount(metrics.RecordOpts{
		RunID:   r.cfg.RunID,
		Stage:   StageTables,
		ItemKey: stem,
		Year:    yearStr,
	}, len(tbls))
	if len(tbls) == 0 {
		log.Warn("no tables detected, document produced no output")
		return 0, nil
	}

	dir := filepath.Join(r.cfg.TablesDir, yearStr)
	if err := tables.WriteDir(dir, tbls); err != nil {
		log.Error("failed to write tables, skipping document", "error", err)
		return 0, nil
	}
	log.Info("wrote extracted tables", "tables", len(tbls), "dir", dir)
	return len(tbls), nil
}

// CombineConfig configures the merge of per-year table files into one
// contribution record stream.
type CombineConfig struct {
	TablesDir string

	RunID   string
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// CombineResult carries the merged records plus what was skipped on the
// way, so schema drift stays visible in run output.
type CombineResult struct {
	Records       []contrib.Record
	Years         int
	Tables        int
	SkippedTables int
}

// CombineTables folds every per-year table directory into one sorted
// record stream. Year directories are processed in ascending order;
// unusable tables are counted and skipped, never fatal.
func CombineTables(cfg CombineConfig) (*CombineResult, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	entries, err := os.ReadDir(cfg.TablesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables dir: %w", err)
	}

	var years []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		year, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		years = append(years, year)
	}
	sort.Ints(years)
	if len(years) == 0 {
		return nil, fmt.Errorf("no year directories found in %s", cfg.TablesDir)
	}

	result := &CombineResult{}
	for _, year := range years {
		yearStr := strconv.Itoa(year)
		tbls, err := tables.ReadDir(filepath.Join(cfg.TablesDir, yearStr))
		if err != nil {
			return nil, fmt.Errorf("failed to load tables for %d: %w", year, err)
		}
		if len(tbls) == 0 {
			continue
		}

		records, skipped := contrib.CombineAll(tbls, year)
		cfg.Metrics.RecordCount(metrics.RecordOpts{
			RunID:   cfg.RunID,
			Stage:   StageCombine,
			ItemKey: yearStr,
			Year:    yearStr,
		}, len(records))
		cfg.Logger.Info("combined year tables",
			"year", year, "tables", len(tbls), "records", len(records), "skipped_tables", skipped)

		result.Years++
		result.Tables += len(tbls)
		result.SkippedTables += skipped
		result.Records = append(result.Records, records...)
	}

	contrib.SortRecords(result.Records)
	return result, nil
}

// FillConfig configures the contribution fill over delegation-side CSVs.
type FillConfig struct {
	ContributionsFile string // combined contributions CSV
	SourceDir         string // directory of CSVs to fill
	OutputDir         string // empty means overwrite in place

	Logger *slog.Logger
}

// FillResult summarizes one fill pass.
type FillResult struct {
	Filled  int
	Skipped int
}

// FillContributions joins the combined contribution figures onto every CSV
// under the source directory, matching rows on normalized country and
// year. Files that cannot be filled are logged and skipped.
func FillContributions(cfg FillConfig) (*FillResult, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	f, err := os.Open(cfg.ContributionsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open contributions file: %w", err)
	}
	records, err := export.ReadContributions(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	idx := export.NewIndex(records)
	cfg.Logger.Info("loaded contribution index", "records", len(records))

	entries, err := os.ReadDir(cfg.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source dir: %w", err)
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	result := &FillResult{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		src := filepath.Join(cfg.SourceDir, e.Name())
		dst := src
		if cfg.OutputDir != "" {
			dst = filepath.Join(cfg.OutputDir, e.Name())
		}
		if err := fillFile(src, dst, idx); err != nil {
			cfg.Logger.Error("failed to fill file, skipping", "file", e.Name(), "error", err)
			result.Skipped++
			continue
		}
		cfg.Logger.Info("filled contributions", "file", e.Name())
		result.Filled++
	}
	if result.Filled == 0 && result.Skipped == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", cfg.SourceDir)
	}
	return result, nil
}

// fillFile buffers the whole rewrite so overwriting a file in place never
// truncates it on a mid-stream failure.
func fillFile(src, dst string, idx export.Index) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.FillCSV(&buf, bytes.NewReader(data), idx); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}
