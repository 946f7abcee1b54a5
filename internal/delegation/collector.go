package delegation

import "sort"

// SortRecords orders records by country then year. The sort is stable so
// records that compare equal keep their extraction order.
func SortRecords(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Country != records[j].Country {
			return records[i].Country < records[j].Country
		}
		return records[i].Year < records[j].Year
	})
}
