package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hamiltonlab/bluebook/internal/cliout"
	"github.com/hamiltonlab/bluebook/internal/delegation"
	"github.com/hamiltonlab/bluebook/internal/docparse"
	"github.com/hamiltonlab/bluebook/internal/export"
	"github.com/hamiltonlab/bluebook/internal/llmcall"
	"github.com/hamiltonlab/bluebook/internal/metrics"
	"github.com/hamiltonlab/bluebook/internal/pipeline"
	"github.com/hamiltonlab/bluebook/internal/providers"
)

var delegationsWorkers int

// delegationsSummary is the structured result printed after a run.
type delegationsSummary struct {
	RunID       string                            `json:"run_id" yaml:"run_id"`
	Documents   int                               `json:"documents" yaml:"documents"`
	Skipped     int                               `json:"skipped" yaml:"skipped"`
	Records     int                               `json:"records" yaml:"records"`
	CountsFile  string                            `json:"counts_file" yaml:"counts_file"`
	DetailsFile string                            `json:"details_file" yaml:"details_file"`
	Usage       llmcall.Summary                   `json:"usage" yaml:"usage"`
	Stages      map[string]*metrics.DetailedStats `json:"stages" yaml:"stages"`
}

var delegationsCmd = &cobra.Command{
	Use:   "delegations <input-dir>",
	Short: "Extract delegation rosters from session documents",
	Long: `Extract per-country delegation records from the session documents in
a directory.

Each document is parsed to text (cached under the home directory), split
into country chunks, and every chunk is sent through one structured
extraction call. A chunk whose call fails becomes an empty record for
that country rather than being dropped, so the output always carries one
row per detected country heading.

Filenames must carry the session year (for example 2013_0.pdf); the year
from the filename overrides anything the model reports. With the "text"
parser mode the input directory holds pre-extracted .txt or .md files
instead of PDFs.

Outputs are written into the home exports directory:
  delegation_counts_<start>-<end>.csv   per-country counts by category
  delegation_details_<start>-<end>.json full rosters for manual audit

Examples:
  bluebook delegations ./sessions
  bluebook delegations ./sessions --workers 8
  bluebook delegations ./sessions -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		h, err := getHome()
		if err != nil {
			return err
		}
		cm, err := getConfig(h)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		parser, err := docparse.NewParser(cfg.ToParserConfig())
		if err != nil {
			return err
		}
		client, err := providers.NewClientFromConfig(cfg.ToClientConfig())
		if err != nil {
			return err
		}

		prompt, err := newPromptResolver(h).Resolve(delegation.PromptKey)
		if err != nil {
			return err
		}
		if prompt.IsOverride {
			logger.Info("using prompt override", "key", delegation.PromptKey)
		}

		extractor := delegation.NewExtractor(client, delegation.ExtractorConfig{
			SystemPrompt: prompt.Text,
			Timeout:      time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
			Logger:       logger,
		})

		runID := uuid.New().String()
		callsDir, err := h.EnsureRunCallsDir(runID)
		if err != nil {
			return err
		}
		store, err := llmcall.NewStore(callsDir)
		if err != nil {
			return err
		}

		workers := cfg.Pipeline.MaxWorkers
		if delegationsWorkers > 0 {
			workers = delegationsWorkers
		}

		rec := metrics.NewRecorder()
		run := pipeline.NewDelegationsRun(pipeline.DelegationsConfig{
			InputDir:    args[0],
			Parser:      parser,
			Cache:       docparse.NewCache(h),
			Extractor:   extractor,
			Concurrency: workers,
			RunID:       runID,
			Metrics:     rec,
			Calls:       llmcall.NewRecorder(store, logger),
			Logger:      logger,
		})

		result, err := run.Run(ctx)
		if err != nil {
			return err
		}

		delegation.SortRecords(result.Records)

		countsPath := filepath.Join(h.ExportsPath(), export.DelegationCountsFilename(result.Records))
		detailsPath := filepath.Join(h.ExportsPath(), export.DelegationDetailsFilename(result.Records))
		if err := writeExport(countsPath, func(w io.Writer) error {
			return export.WriteDelegationCounts(w, result.Records)
		}); err != nil {
			return err
		}
		if err := writeExport(detailsPath, func(w io.Writer) error {
			return export.WriteDelegationDetails(w, result.Records)
		}); err != nil {
			return err
		}

		calls, err := store.List()
		if err != nil {
			return err
		}

		return cliout.Output(delegationsSummary{
			RunID:       runID,
			Documents:   result.Documents,
			Skipped:     result.Skipped,
			Records:     len(result.Records),
			CountsFile:  countsPath,
			DetailsFile: detailsPath,
			Usage:       llmcall.Summarize(calls),
			Stages:      metrics.StatsByStage(rec.List()),
		})
	},
}

func init() {
	delegationsCmd.Flags().IntVar(
		&delegationsWorkers, "workers", 0, "Concurrent extraction calls (default: pipeline.max_workers)",
	)

	rootCmd.AddCommand(delegationsCmd)
}

// writeExport writes one export file, creating it fresh.
func writeExport(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
