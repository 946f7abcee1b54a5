// Package contrib extracts per-country financial contribution figures from
// the annual status-of-contributions tables and merges them across years.
//
// Table layouts drifted over the covered years: early documents carry
// separate collections and outstanding columns under a spanning
// super-header, later ones a single assessed column. Each document year
// resolves to one column strategy up front instead of scattering year
// conditionals through the pipeline.
package contrib

import "sort"

// Record is one country's contribution figures for one document year. A nil
// amount means the source did not state a figure; that is distinct from an
// explicit zero and must stay distinct through every join and export.
type Record struct {
	Country     string   `json:"country"`
	Year        int      `json:"year"`
	Annual      *float64 `json:"annual_contributions"`
	Outstanding *float64 `json:"total_outstanding_contributions"`
	Assessed    *float64 `json:"assessed_contributions"`
}

// SortRecords orders records ascending by (country, year) for presentation.
// The sort is stable so rows produced from overlapping documents keep their
// input order; duplicates are preserved for manual audit, never collapsed.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Country != records[j].Country {
			return records[i].Country < records[j].Country
		}
		return records[i].Year < records[j].Year
	})
}
