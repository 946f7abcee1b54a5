package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hamiltonlab/bluebook/internal/contrib"
	"github.com/hamiltonlab/bluebook/internal/countries"
)

// Index maps normalized (country, year) pairs to contribution figures for
// the fill join. Keys never leave the index; output rows keep the display
// country from the delegation side.
type Index map[indexKey]contrib.Record

type indexKey struct {
	country string
	year    int
}

// NewIndex builds a join index from combined contribution records. When
// overlapping documents produced duplicate (country, year) rows, the first
// wins here; the duplicates themselves stay visible in the contributions
// export for audit.
func NewIndex(records []contrib.Record) Index {
	idx := make(Index, len(records))
	for _, r := range records {
		k := indexKey{country: countries.Key(r.Country), year: r.Year}
		if _, ok := idx[k]; ok {
			continue
		}
		idx[k] = r
	}
	return idx
}

// Lookup finds the contribution record for a display-cased country name and
// year.
func (idx Index) Lookup(country string, year int) (contrib.Record, bool) {
	r, ok := idx[indexKey{country: countries.Key(country), year: year}]
	return r, ok
}

// FillCSV copies a delegation-side CSV to dst with the three contribution
// columns appended, matched on normalized country and year. Any
// pre-existing contribution columns are dropped first so repeated fills are
// idempotent. Rows whose year does not parse or whose country has no match
// get empty contribution cells.
func FillCSV(dst io.Writer, src io.Reader, idx Index) error {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	grid, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read fill source: %w", err)
	}
	if len(grid) == 0 {
		return fmt.Errorf("fill source is empty")
	}

	header := grid[0]
	cols := columnIndex(header)
	countryCol, ok := cols["country"]
	if !ok {
		return fmt.Errorf("fill source has no country column")
	}
	yearCol, ok := cols["year"]
	if !ok {
		return fmt.Errorf("fill source has no year column")
	}

	keep := make([]int, 0, len(header))
	for i, h := range header {
		if isContributionColumn(h) {
			continue
		}
		keep = append(keep, i)
	}

	cw := csv.NewWriter(dst)
	outHeader := make([]string, 0, len(keep)+3)
	for _, i := range keep {
		outHeader = append(outHeader, header[i])
	}
	outHeader = append(outHeader, ContributionColumns[2:]...)
	if err := cw.Write(outHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range grid[1:] {
		out := make([]string, 0, len(keep)+3)
		for _, i := range keep {
			out = append(out, cell(row, i))
		}

		var figures contrib.Record
		if year, err := strconv.Atoi(strings.TrimSpace(cell(row, yearCol))); err == nil {
			figures, _ = idx.Lookup(cell(row, countryCol), year)
		}
		out = append(out, amountCell(figures.Annual), amountCell(figures.Outstanding), amountCell(figures.Assessed))

		if err := cw.Write(out); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func isContributionColumn(header string) bool {
	name := strings.ToLower(strings.TrimSpace(header))
	for _, c := range ContributionColumns[2:] {
		if name == c {
			return true
		}
	}
	return false
}
