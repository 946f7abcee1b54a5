package export

import (
	"fmt"
	"strconv"

	"github.com/hamiltonlab/bluebook/internal/contrib"
	"github.com/hamiltonlab/bluebook/internal/delegation"
	"github.com/hamiltonlab/bluebook/internal/docparse"
)

// YearRange reports the numeric span covered by a set of year strings.
// Non-numeric years (the unknown-year sentinel included) are ignored; when
// nothing numeric remains, both ends are the sentinel so filenames stay
// well-formed.
func YearRange(years []string) (start, end string) {
	min, max := 0, 0
	found := false
	for _, y := range years {
		n, err := strconv.Atoi(y)
		if err != nil {
			continue
		}
		if !found || n < min {
			min = n
		}
		if !found || n > max {
			max = n
		}
		found = true
	}
	if !found {
		return docparse.YearNA, docparse.YearNA
	}
	return strconv.Itoa(min), strconv.Itoa(max)
}

// DelegationCountsFilename names the counts export after the span of
// session years it covers, e.g. "delegation_counts_2008-2016.csv".
func DelegationCountsFilename(records []*delegation.Record) string {
	years := make([]string, 0, len(records))
	for _, r := range records {
		years = append(years, r.Year)
	}
	start, end := YearRange(years)
	return fmt.Sprintf("delegation_counts_%s-%s.csv", start, end)
}

// DelegationDetailsFilename names the full-extraction JSON dump that
// accompanies the counts export.
func DelegationDetailsFilename(records []*delegation.Record) string {
	years := make([]string, 0, len(records))
	for _, r := range records {
		years = append(years, r.Year)
	}
	start, end := YearRange(years)
	return fmt.Sprintf("delegation_details_%s-%s.json", start, end)
}

// ContributionsFilename names the combined contributions export after the
// span of document years it covers.
func ContributionsFilename(records []contrib.Record) string {
	years := make([]string, 0, len(records))
	for _, r := range records {
		years = append(years, strconv.Itoa(r.Year))
	}
	start, end := YearRange(years)
	return fmt.Sprintf("contributions_%s-%s.csv", start, end)
}
