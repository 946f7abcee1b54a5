package delegation

import (
	"encoding/json"
	"fmt"

	"github.com/hamiltonlab/bluebook/internal/providers"
)

const schemaName = "delegation_record"

// schemaProperties is shared by the request schema and the validation
// schema so the two can never drift apart.
const schemaProperties = `{
	"country": {"type": "string"},
	"year": {"type": "string"},
	"officials": {"type": "array", "items": {"type": "string"}},
	"representatives": {"type": "array", "items": {"type": "string"}},
	"alternate_representatives": {"type": "array", "items": {"type": "string"}},
	"advisers": {"type": "array", "items": {"type": "string"}},
	"leader_present": {"type": "boolean"},
	"leader_name": {"type": ["string", "null"]}
}`

// ResponseFormat returns the strict schema constraint for the extraction
// call. Every field is required here because strict structured output
// demands it; the looser ValidationSchema governs what we accept back.
func ResponseFormat() *providers.ResponseFormat {
	wrapper := fmt.Sprintf(
		`{"name":%q,"strict":true,"schema":{"type":"object","properties":%s,"required":["country","year","officials","representatives","alternate_representatives","advisers","leader_present","leader_name"],"additionalProperties":false}}`,
		schemaName, schemaProperties,
	)
	return &providers.ResponseFormat{
		Type:       "json_schema",
		JSONSchema: json.RawMessage(wrapper),
	}
}

// ValidationSchema is the type-only schema used to detect drift in
// returned payloads. Required is deliberately omitted: a missing field
// decodes to its zero value rather than failing the chunk, only a field of
// the wrong type does.
func ValidationSchema() json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"type":"object","properties":%s}`, schemaProperties))
}
