package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamiltonlab/bluebook/internal/cliout"
	"github.com/hamiltonlab/bluebook/internal/config"
	"github.com/hamiltonlab/bluebook/internal/home"
	"github.com/hamiltonlab/bluebook/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "bluebook",
	Short: "Extract delegation rosters and contributions from UN session documents",
	Long: `Bluebook turns scanned UN Protocol List ("Blue Book") PDFs into
per-country datasets.

The pipeline includes:
  - Document-to-markdown parsing (hosted service or local container)
  - Country-heading segmentation of session documents
  - LLM-backed delegation roster extraction with structured output
  - Contribution table extraction and year-strategy combination
  - CSV/JSON export with delegation counts joined to contributions`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bluebook/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "bluebook home directory (default: ~/.bluebook)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)

	// Set output format and load .env before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cliout.SetFormat(outputFormat)
		config.LoadDotEnv()
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the home directory manager.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// getConfig loads configuration, preferring --config, then the home config
// file, then viper's default search paths.
func getConfig(h *home.Dir) (*config.Manager, error) {
	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	cm, err := config.NewManager(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cm, nil
}

// newLogger builds the command logger. Logs go to stderr so structured
// command output owns stdout.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
