package contrib

import "strings"

// Field is a canonical column role in a contributions table.
type Field string

const (
	FieldCountry     Field = "country"
	FieldAnnual      Field = "annual_contributions"
	FieldOutstanding Field = "total_outstanding_contributions"
	FieldAssessed    Field = "assessed_contributions"
)

// Columns maps canonical fields to zero-based column indexes. The mapping
// is partial: a missing country column means the table cannot be used at
// all, a missing financial column leaves that field undefined for every
// row of the table.
type Columns map[Field]int

// Candidate header terms per field, most specific first. Header wording
// drifts across years ("Member State" vs "Member States", "Collections and
// adjustments" vs plain "Collections"), so resolution is case-insensitive
// substring matching with first match winning.
var fieldCandidates = map[Field][]string{
	FieldCountry:     {"member state", "country", "member", "state"},
	FieldAnnual:      {"collections and adjustments", "collections", "annual contributions", "contributions payable", "annual"},
	FieldOutstanding: {"total outstanding", "outstanding"},
	FieldAssessed:    {"total assessed", "assessed contributions", "assessments", "assessed"},
}

// ResolveColumns maps the table headers onto canonical fields for the given
// document year. Legacy years resolve the collections and outstanding pair,
// later years the single assessed column. For legacy years any header
// containing "outstanding" is excluded from the collections match so the
// two columns cannot cross-resolve.
func ResolveColumns(headers []string, year int) Columns {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := Columns{}
	if idx, ok := matchColumn(lowered, fieldCandidates[FieldCountry], nil); ok {
		cols[FieldCountry] = idx
	}
	if year <= legacyMaxYear {
		exclude := func(h string) bool { return strings.Contains(h, "outstanding") }
		if idx, ok := matchColumn(lowered, fieldCandidates[FieldAnnual], exclude); ok {
			cols[FieldAnnual] = idx
		}
		if idx, ok := matchColumn(lowered, fieldCandidates[FieldOutstanding], nil); ok {
			cols[FieldOutstanding] = idx
		}
	} else {
		if idx, ok := matchColumn(lowered, fieldCandidates[FieldAssessed], nil); ok {
			cols[FieldAssessed] = idx
		}
	}
	return cols
}

func matchColumn(headers []string, terms []string, exclude func(string) bool) (int, bool) {
	for _, term := range terms {
		for i, h := range headers {
			if h == "" {
				continue
			}
			if exclude != nil && exclude(h) {
				continue
			}
			if strings.Contains(h, term) {
				return i, true
			}
		}
	}
	return 0, false
}
