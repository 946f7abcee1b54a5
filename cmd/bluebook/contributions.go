package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hamiltonlab/bluebook/internal/cliout"
	"github.com/hamiltonlab/bluebook/internal/contrib"
	"github.com/hamiltonlab/bluebook/internal/docparse"
	"github.com/hamiltonlab/bluebook/internal/export"
	"github.com/hamiltonlab/bluebook/internal/metrics"
	"github.com/hamiltonlab/bluebook/internal/pipeline"
)

var contributionsCmd = &cobra.Command{
	Use:   "contributions",
	Short: "Extract, combine and join financial contribution tables",
	Long: `Work with the financial contribution reports that accompany each
session year.

The contribution lane runs in three steps:
  extract  pull tables out of per-year PDFs into the home tables directory
  combine  merge the per-year tables into one contributions CSV
  fill     join contribution figures onto delegation CSVs by country and year

Examples:
  bluebook contributions extract ./reports
  bluebook contributions combine
  bluebook contributions fill ~/.bluebook/exports/contributions_2000-2016.csv ./by_country`,
}

// contributionsExtractSummary is the structured result of an extract run.
type contributionsExtractSummary struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	Documents int    `json:"documents" yaml:"documents"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
	Tables    int    `json:"tables" yaml:"tables"`
	TablesDir string `json:"tables_dir" yaml:"tables_dir"`
}

var contributionsExtractCmd = &cobra.Command{
	Use:   "extract <input-dir>",
	Short: "Extract contribution tables from report PDFs",
	Long: fmt.Sprintf(`Extract the contribution tables embedded in each report PDF into
per-year CSV files under the home tables directory.

Filenames must carry the report year (for example 2008_status.pdf).
Reports whose year falls outside the covered contribution years
(%d through %d) are skipped.`, contrib.MinYear, contrib.MaxYear),
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

		parser, err := docparse.NewParser(cm.Get().ToParserConfig())
		if err != nil {
			return err
		}

		runID := uuid.New().String()
		run := pipeline.NewContributionsExtractRun(pipeline.ContributionsExtractConfig{
			InputDir:  args[0],
			TablesDir: h.TablesPath(),
			Parser:    parser,
			Cache:     docparse.NewCache(h),
			RunID:     runID,
			Metrics:   metrics.NewRecorder(),
			Logger:    logger,
		})

		result, err := run.Run(ctx)
		if err != nil {
			return err
		}

		return cliout.Output(contributionsExtractSummary{
			RunID:     runID,
			Documents: result.Documents,
			Skipped:   result.Skipped,
			Tables:    result.Tables,
			TablesDir: h.TablesPath(),
		})
	},
}

// contributionsCombineSummary is the structured result of a combine pass.
type contributionsCombineSummary struct {
	Years         int    `json:"years" yaml:"years"`
	Tables        int    `json:"tables" yaml:"tables"`
	SkippedTables int    `json:"skipped_tables" yaml:"skipped_tables"`
	Records       int    `json:"records" yaml:"records"`
	File          string `json:"file" yaml:"file"`
}

var contributionsCombineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine per-year tables into one contributions CSV",
	Long: `Combine the extracted per-year tables into a single contributions
CSV in the home exports directory.

Each year is read with its reporting-era strategy: through 2010 assessed
contributions are derived from annual plus outstanding, from 2011 the
reports carry assessed amounts directly. Aggregate "total" rows are
filtered out and records are sorted by country and year.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		h, err := getHome()
		if err != nil {
			return err
		}

		result, err := pipeline.CombineTables(pipeline.CombineConfig{
			TablesDir: h.TablesPath(),
			RunID:     uuid.New().String(),
			Metrics:   metrics.NewRecorder(),
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		path := filepath.Join(h.ExportsPath(), export.ContributionsFilename(result.Records))
		if err := writeExport(path, func(w io.Writer) error {
			return export.WriteContributions(w, result.Records)
		}); err != nil {
			return err
		}

		return cliout.Output(contributionsCombineSummary{
			Years:         result.Years,
			Tables:        result.Tables,
			SkippedTables: result.SkippedTables,
			Records:       len(result.Records),
			File:          path,
		})
	},
}

var fillOutputDir string

// contributionsFillSummary is the structured result of a fill pass.
type contributionsFillSummary struct {
	Filled  int `json:"filled" yaml:"filled"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

var contributionsFillCmd = &cobra.Command{
	Use:   "fill <contributions-csv> <source-dir>",
	Short: "Join contribution figures onto delegation CSVs",
	Long: `Join the combined contribution figures onto every CSV under the
source directory, matching rows on normalized country name and year.

Rows without a match keep their shape and gain empty contribution cells.
Files are rewritten in place unless --output-dir is given. Re-running the
fill is safe: stale contribution columns are replaced, not duplicated.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		result, err := pipeline.FillContributions(pipeline.FillConfig{
			ContributionsFile: args[0],
			SourceDir:         args[1],
			OutputDir:         fillOutputDir,
			Logger:            logger,
		})
		if err != nil {
			return err
		}

		return cliout.Output(contributionsFillSummary{
			Filled:  result.Filled,
			Skipped: result.Skipped,
		})
	},
}

func init() {
	contributionsCmd.AddCommand(contributionsExtractCmd)
	contributionsCmd.AddCommand(contributionsCombineCmd)
	contributionsCmd.AddCommand(contributionsFillCmd)

	contributionsFillCmd.Flags().StringVar(
		&fillOutputDir, "output-dir", "", "Write filled files here instead of overwriting in place",
	)

	rootCmd.AddCommand(contributionsCmd)
}
