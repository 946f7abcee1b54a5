// Package export renders record streams as the tabular files operators
// consume: delegation counts, contribution figures, and contribution-filled
// joins. Column orders are fixed; country display names are title-cased
// here and nowhere else.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hamiltonlab/bluebook/internal/contrib"
	"github.com/hamiltonlab/bluebook/internal/countries"
	"github.com/hamiltonlab/bluebook/internal/delegation"
)

// DelegationColumns is the fixed column order of the counts export.
var DelegationColumns = []string{
	"country",
	"year",
	"officials",
	"leader_present",
	"representatives",
	"alternate_representatives",
	"advisers",
	"attendees",
}

// ContributionColumns is the fixed column order of the contributions export.
var ContributionColumns = []string{
	"country",
	"year",
	"annual_contributions",
	"total_outstanding_contributions",
	"assessed_contributions",
}

// WriteDelegationCounts writes one row per record with name lists reduced
// to counts and the attendee total recomputed. Countries are title-cased
// for display, then rows are stably sorted by (country, year).
func WriteDelegationCounts(w io.Writer, records []*delegation.Record) error {
	type row struct {
		country string
		year    string
		cells   []string
	}

	rows := make([]row, 0, len(records))
	for _, r := range records {
		country := countries.Title(r.Country)
		rows = append(rows, row{
			country: country,
			year:    r.Year,
			cells: []string{
				country,
				r.Year,
				strconv.Itoa(len(r.Officials)),
				boolCell(r.LeaderPresent),
				strconv.Itoa(len(r.Representatives)),
				strconv.Itoa(len(r.AlternateRepresentatives)),
				strconv.Itoa(len(r.Advisers)),
				strconv.Itoa(r.Attendees()),
			},
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].country != rows[j].country {
			return rows[i].country < rows[j].country
		}
		return rows[i].year < rows[j].year
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(DelegationColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.cells); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.country, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteContributions writes contribution records in the order given.
// Country cells keep their source rendering; absent figures become empty
// cells so missing stays distinguishable from zero.
func WriteContributions(w io.Writer, records []contrib.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ContributionColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		cells := []string{
			r.Country,
			strconv.Itoa(r.Year),
			amountCell(r.Annual),
			amountCell(r.Outstanding),
			amountCell(r.Assessed),
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Country, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadContributions loads a contributions CSV written by WriteContributions.
// Columns are located by header name, so reordered or extended files still
// read. Empty figure cells come back nil.
func ReadContributions(r io.Reader) ([]contrib.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read contributions CSV: %w", err)
	}
	if len(grid) == 0 {
		return nil, nil
	}

	idx := columnIndex(grid[0])
	countryCol, ok := idx["country"]
	if !ok {
		return nil, fmt.Errorf("contributions CSV has no country column")
	}
	yearCol, ok := idx["year"]
	if !ok {
		return nil, fmt.Errorf("contributions CSV has no year column")
	}

	records := make([]contrib.Record, 0, len(grid)-1)
	for _, row := range grid[1:] {
		year, err := strconv.Atoi(strings.TrimSpace(cell(row, yearCol)))
		if err != nil {
			continue
		}
		records = append(records, contrib.Record{
			Country:     strings.TrimSpace(cell(row, countryCol)),
			Year:        year,
			Annual:      parseAmountCell(row, idx, "annual_contributions"),
			Outstanding: parseAmountCell(row, idx, "total_outstanding_contributions"),
			Assessed:    parseAmountCell(row, idx, "assessed_contributions"),
		})
	}
	return records, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseAmountCell(row []string, idx map[string]int, name string) *float64 {
	i, ok := idx[name]
	if !ok {
		return nil
	}
	s := strings.TrimSpace(cell(row, i))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func amountCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func boolCell(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
