// Package delegation turns per-country roster chunks into structured
// delegation records via schema-constrained model calls.
package delegation

// Record is one country's delegation for one session year. Name lists keep
// insertion order and are never deduplicated: source documents legitimately
// repeat a name under different honorifics, and that imprecision is carried
// through rather than patched.
type Record struct {
	Country                  string   `json:"country"`
	Year                     string   `json:"year"`
	Officials                []string `json:"officials"`
	Representatives          []string `json:"representatives"`
	AlternateRepresentatives []string `json:"alternate_representatives"`
	Advisers                 []string `json:"advisers"`
	LeaderPresent            bool     `json:"leader_present"`
	LeaderName               string   `json:"leader_name,omitempty"`
}

// Attendees recomputes the total attendee count from the name lists. Any
// total claimed upstream is ignored.
func (r *Record) Attendees() int {
	return len(r.Officials) + len(r.Representatives) + len(r.AlternateRepresentatives) + len(r.Advisers)
}

// EmptyRecord returns the degraded record used when extraction fails for a
// chunk: all lists empty, no leader, original label and year preserved.
// Degrading instead of dropping keeps one output record per input chunk, so
// downstream counts are never silently short.
func EmptyRecord(label, year string) *Record {
	return &Record{
		Country:                  label,
		Year:                     year,
		Officials:                []string{},
		Representatives:          []string{},
		AlternateRepresentatives: []string{},
		Advisers:                 []string{},
	}
}
