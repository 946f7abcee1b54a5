package contrib

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hamiltonlab/bluebook/internal/tables"
)

var (
	// ErrUnsupportedYear marks a document year outside the covered range.
	ErrUnsupportedYear = errors.New("year outside covered range")
	// ErrNoCountryColumn marks a table whose country column could not be
	// resolved; the table is unusable and should be skipped.
	ErrNoCountryColumn = errors.New("no country column resolved")
	// ErrTableTooNarrow marks fragments (footnote boxes, legends) that are
	// not contribution tables at all.
	ErrTableTooNarrow = errors.New("table too narrow")
)

// minTableWidth filters out the small non-data tables the parser also
// renders (legends, footnote boxes).
const minTableWidth = 3

// Combine converts one extracted table into contribution records for the
// given document year.
//
// Legacy documents hide the real column headers under a spanning
// super-header row; when the header row yields no usable resolution,
// resolution retries with the first data row promoted to headers. Aggregate
// rows (any country containing "total") and rows with an empty country cell
// are dropped. Figures that fail numeric parsing stay nil: missing, not
// zero.
func Combine(tbl tables.Table, year int) ([]Record, error) {
	strat, ok := ForYear(year)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedYear, year)
	}
	if tbl.Width() < minTableWidth {
		return nil, fmt.Errorf("%w: %d columns", ErrTableTooNarrow, tbl.Width())
	}

	rows := tbl.Rows
	cols := ResolveColumns(tbl.Headers, year)
	if incomplete(cols) && len(rows) > 0 {
		if shifted := ResolveColumns(rows[0], year); !incomplete(shifted) {
			rows = rows[1:]
			cols = shifted
		}
	}
	countryIdx, found := cols[FieldCountry]
	if !found {
		return nil, ErrNoCountryColumn
	}

	var records []Record
	for _, row := range rows {
		country := strings.TrimSpace(cellAt(row, countryIdx))
		if country == "" || strings.Contains(strings.ToLower(country), "total") {
			continue
		}
		if isHeaderEcho(country) {
			continue
		}
		rec := Record{Country: country, Year: year}
		switch strat.Kind {
		case LegacyColumns:
			rec.Annual = amountField(row, cols, FieldAnnual)
			rec.Outstanding = amountField(row, cols, FieldOutstanding)
			if rec.Annual != nil && rec.Outstanding != nil {
				sum := *rec.Annual + *rec.Outstanding
				rec.Assessed = &sum
			}
		case DirectAssessed:
			rec.Assessed = amountField(row, cols, FieldAssessed)
		}
		records = append(records, rec)
	}
	return records, nil
}

// CombineAll folds every table of one document year into a single record
// stream, skipping unusable tables. The skipped count lets callers log
// schema drift without failing the document.
func CombineAll(tbls []tables.Table, year int) (records []Record, skipped int) {
	for _, tbl := range tbls {
		recs, err := Combine(tbl, year)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, recs...)
	}
	return records, skipped
}

// incomplete reports a resolution that cannot produce any figures: the
// country column is missing, or no financial column mapped at all.
func incomplete(cols Columns) bool {
	if !hasField(cols, FieldCountry) {
		return true
	}
	return !hasField(cols, FieldAnnual) && !hasField(cols, FieldOutstanding) && !hasField(cols, FieldAssessed)
}

// isHeaderEcho drops body rows whose country cell is itself a column
// header, which happens when a spanning super-header already satisfied the
// country match and the real header row fell through into the data rows.
func isHeaderEcho(country string) bool {
	lowered := strings.ToLower(country)
	for _, term := range fieldCandidates[FieldCountry] {
		if lowered == term || lowered == term+"s" {
			return true
		}
	}
	return false
}

func hasField(cols Columns, f Field) bool {
	_, ok := cols[f]
	return ok
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func amountField(row []string, cols Columns, f Field) *float64 {
	idx, ok := cols[f]
	if !ok {
		return nil
	}
	return amount(cellAt(row, idx))
}
