package providers

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseStructuredJSON_PassesThroughValidJSON(t *testing.T) {
	got, err := parseStructuredJSON(`{"country":"France","officials":3}`)
	if err != nil {
		t.Fatalf("parseStructuredJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatalf("failed to unmarshal parsed JSON: %v", err)
	}
	if parsed["country"] != "France" {
		t.Fatalf("expected country=France, got %#v", parsed)
	}
}

func TestParseStructuredJSON_StripsCodeFence(t *testing.T) {
	content := "```json\n{\"ok\":true}\n```"
	got, err := parseStructuredJSON(content)
	if err != nil {
		t.Fatalf("parseStructuredJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatalf("failed to unmarshal parsed JSON: %v", err)
	}
	if ok, _ := parsed["ok"].(bool); !ok {
		t.Fatalf("expected ok=true, got %#v", parsed)
	}
}

func TestParseStructuredJSON_ExtractsFromProse(t *testing.T) {
	content := `Here is the delegation record you asked for: {"country":"Chad","officials":2} Let me know if you need anything else.`
	got, err := parseStructuredJSON(content)
	if err != nil {
		t.Fatalf("parseStructuredJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatalf("failed to unmarshal parsed JSON: %v", err)
	}
	if parsed["country"] != "Chad" {
		t.Fatalf("expected country=Chad, got %#v", parsed)
	}
}

func TestParseStructuredJSON_RepairsSingleQuotes(t *testing.T) {
	content := `{'country': 'France', 'officials': 3,}`
	got, err := parseStructuredJSON(content)
	if err != nil {
		t.Fatalf("parseStructuredJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(got, &parsed); err != nil {
		t.Fatalf("failed to unmarshal repaired JSON: %v", err)
	}
	if parsed["country"] != "France" {
		t.Fatalf("expected country=France, got %#v", parsed)
	}
}

func TestParseStructuredJSON_EmptyContent(t *testing.T) {
	if _, err := parseStructuredJSON("   "); err == nil {
		t.Fatal("parseStructuredJSON(blank) expected error, got nil")
	}
}

func TestParseStructuredJSON_ProseWithoutJSON(t *testing.T) {
	if _, err := parseStructuredJSON("I could not find any delegation information."); err == nil {
		t.Fatal("parseStructuredJSON(prose) expected error, got nil")
	}
}

func TestValidateStructuredJSON_AcceptsMatchingDocument(t *testing.T) {
	schema := json.RawMessage(`{
		"name":"delegation",
		"strict":true,
		"schema":{
			"type":"object",
			"properties":{
				"country":{"type":"string"},
				"officials":{"type":"integer"}
			},
			"additionalProperties":false
		}
	}`)

	valid := json.RawMessage(`{"country":"France","officials":3}`)
	if err := validateStructuredJSON(schema, valid); err != nil {
		t.Fatalf("validateStructuredJSON(valid) error = %v", err)
	}
}

func TestValidateStructuredJSON_RejectsTypeDrift(t *testing.T) {
	schema := json.RawMessage(`{
		"name":"delegation",
		"strict":true,
		"schema":{
			"type":"object",
			"properties":{
				"officials":{"type":"integer"}
			}
		}
	}`)

	invalid := json.RawMessage(`{"officials":"three"}`)
	err := validateStructuredJSON(schema, invalid)
	if err == nil {
		t.Fatal("validateStructuredJSON(invalid) expected error, got nil")
	}
	if !strings.Contains(err.Error(), "does not match schema") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractValidationSchema_UnwrapsEnvelopes(t *testing.T) {
	wrapped := json.RawMessage(`{"name":"x","strict":true,"schema":{"type":"object"}}`)
	got, err := extractValidationSchema(wrapped)
	if err != nil {
		t.Fatalf("extractValidationSchema() error = %v", err)
	}
	if !strings.Contains(string(got), `"type":"object"`) || strings.Contains(string(got), `"strict"`) {
		t.Fatalf("expected bare schema document, got: %s", string(got))
	}

	doubleWrapped := json.RawMessage(`{"type":"json_schema","json_schema":{"name":"x","schema":{"type":"array"}}}`)
	got, err = extractValidationSchema(doubleWrapped)
	if err != nil {
		t.Fatalf("extractValidationSchema() error = %v", err)
	}
	if !strings.Contains(string(got), `"type":"array"`) {
		t.Fatalf("expected inner schema document, got: %s", string(got))
	}

	bare := json.RawMessage(`{"type":"object","properties":{}}`)
	got, err = extractValidationSchema(bare)
	if err != nil {
		t.Fatalf("extractValidationSchema() error = %v", err)
	}
	if string(got) != string(bare) {
		t.Fatalf("bare schema should pass through, got: %s", string(got))
	}
}
