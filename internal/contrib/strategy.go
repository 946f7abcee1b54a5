package contrib

// Covered document years. Outside this range the table layouts are
// unverified and documents are skipped rather than guessed at.
const (
	MinYear = 2000
	MaxYear = 2016

	legacyMaxYear = 2010
)

// StrategyKind selects how assessed contributions are derived for a year.
type StrategyKind int

const (
	// LegacyColumns layouts (through 2010) carry separate collections and
	// outstanding columns; assessed is their sum, defined only when both
	// figures are present.
	LegacyColumns StrategyKind = iota
	// DirectAssessed layouts (2011 on) carry a single assessed column and
	// leave the other two fields undefined.
	DirectAssessed
)

func (k StrategyKind) String() string {
	switch k {
	case LegacyColumns:
		return "legacy-columns"
	case DirectAssessed:
		return "direct-assessed"
	default:
		return "unknown"
	}
}

// Strategy is the year-scoped column handling for one document.
type Strategy struct {
	Kind StrategyKind
}

// ForYear resolves the column strategy for a document year. ok is false for
// years outside the covered range, including the unknown-year zero value.
func ForYear(year int) (Strategy, bool) {
	switch {
	case year < MinYear || year > MaxYear:
		return Strategy{}, false
	case year <= legacyMaxYear:
		return Strategy{Kind: LegacyColumns}, true
	default:
		return Strategy{Kind: DirectAssessed}, true
	}
}
