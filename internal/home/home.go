package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// DefaultDirName is the default name for the bluebook home directory.
	DefaultDirName = ".bluebook"

	// CacheDirName holds extracted document text, one file per source.
	CacheDirName = "cache"

	// TablesDirName holds extracted contribution tables, one subdirectory
	// per session year.
	TablesDirName = "tables"

	// ExportsDirName holds generated CSV and JSON outputs.
	ExportsDirName = "exports"

	// CallsDirName holds inference call logs, one subdirectory per run.
	CallsDirName = "calls"

	// PromptsDirName holds operator prompt overrides, one .tmpl per key.
	PromptsDirName = "prompts"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the bluebook home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.bluebook).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// CachePath returns the extracted-text cache directory.
func (d *Dir) CachePath() string {
	return filepath.Join(d.path, CacheDirName)
}

// CacheFile returns the cache file path for a source document stem.
func (d *Dir) CacheFile(stem string) string {
	return filepath.Join(d.CachePath(), stem+".txt")
}

// TablesPath returns the extracted-tables directory.
func (d *Dir) TablesPath() string {
	return filepath.Join(d.path, TablesDirName)
}

// YearTablesDir returns the tables directory for a session year.
func (d *Dir) YearTablesDir(year int) string {
	return filepath.Join(d.TablesPath(), strconv.Itoa(year))
}

// ExportsPath returns the directory for exported files.
func (d *Dir) ExportsPath() string {
	return filepath.Join(d.path, ExportsDirName)
}

// CallsPath returns the inference call log directory.
func (d *Dir) CallsPath() string {
	return filepath.Join(d.path, CallsDirName)
}

// RunCallsDir returns the call log directory for a run.
func (d *Dir) RunCallsDir(runID string) string {
	return filepath.Join(d.CallsPath(), runID)
}

// PromptsPath returns the prompt override directory.
func (d *Dir) PromptsPath() string {
	return filepath.Join(d.path, PromptsDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{
		d.CachePath(),
		d.TablesPath(),
		d.ExportsPath(),
		d.CallsPath(),
		d.PromptsPath(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// EnsureYearTablesDir creates and returns the tables directory for a year.
func (d *Dir) EnsureYearTablesDir(year int) (string, error) {
	dir := d.YearTablesDir(year)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create tables directory: %w", err)
	}
	return dir, nil
}

// EnsureRunCallsDir creates and returns the call log directory for a run.
func (d *Dir) EnsureRunCallsDir(runID string) (string, error) {
	dir := d.RunCallsDir(runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create calls directory: %w", err)
	}
	return dir, nil
}
