package tables

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// WriteDir persists tables as numbered CSV files under dir, one file per
// table, headers first. Later runs overwrite in place.
func WriteDir(dir string, tbls []Table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating table dir: %w", err)
	}
	for i, t := range tbls {
		path := filepath.Join(dir, fmt.Sprintf("table_%02d.csv", i+1))
		if err := writeCSV(path, t); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// ReadDir loads every table_*.csv under dir in filename order. A missing or
// empty directory yields zero tables, not an error.
func ReadDir(dir string) ([]Table, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "table_*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	var out []Table
	for _, p := range paths {
		t, err := readCSV(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func writeCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var rows [][]string
	if len(t.Headers) > 0 {
		rows = append(rows, t.Headers)
	}
	rows = append(rows, t.Rows...)
	if err := csv.NewWriter(f).WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	grid, err := r.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(grid) == 0 {
		return Table{}, nil
	}
	t := Table{Headers: grid[0], Rows: grid[1:]}
	padRows(t.Rows, len(t.Headers))
	return t, nil
}
