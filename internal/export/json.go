package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hamiltonlab/bluebook/internal/delegation"
)

// DelegationDetail is one delegation record with its name lists intact and
// the attendee total made explicit. The counts CSV is the presentation
// artifact; this dump is the audit trail behind it, so records keep their
// source casing.
type DelegationDetail struct {
	delegation.Record
	Attendees int `json:"attendees"`
}

// WriteDelegationDetails writes the full extraction results as indented
// JSON, in the order given.
func WriteDelegationDetails(w io.Writer, records []*delegation.Record) error {
	details := make([]DelegationDetail, 0, len(records))
	for _, r := range records {
		details = append(details, DelegationDetail{Record: *r, Attendees: r.Attendees()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(details); err != nil {
		return fmt.Errorf("failed to encode delegation details: %w", err)
	}
	return nil
}
