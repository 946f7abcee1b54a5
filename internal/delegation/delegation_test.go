package delegation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/hamiltonlab/bluebook/internal/providers"
	"github.com/hamiltonlab/bluebook/internal/segment"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testChunk() segment.Chunk {
	return segment.Chunk{
		Label: "ALBANIA",
		Body: []string{
			"H.E. Mr. Ilir Meta, President of the Republic",
			"Representatives",
			"Mr. Ferit Hoxha",
			"Ms. Besiana Kadare",
			"Advisers",
			"Mr. Arben Idrizi",
		},
	}
}

func TestExtractorExtract(t *testing.T) {
	payload := `{
		"country": "ALBANIA",
		"year": "",
		"officials": ["H.E. Mr. Ilir Meta"],
		"representatives": ["Mr. Ferit Hoxha", "Ms. Besiana Kadare"],
		"alternate_representatives": [],
		"advisers": ["Mr. Arben Idrizi"],
		"leader_present": true,
		"leader_name": "Ilir Meta"
	}`

	client := providers.NewMockClient()
	client.Latency = 0
	client.ResponseJSON = json.RawMessage(payload)

	ex := NewExtractor(client, ExtractorConfig{Logger: discardLogger()})

	rec, result, err := ex.Extract(context.Background(), testChunk())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.Country != "ALBANIA" {
		t.Errorf("Country = %q, want ALBANIA", rec.Country)
	}
	if len(rec.Officials) != 1 || len(rec.Representatives) != 2 || len(rec.Advisers) != 1 {
		t.Errorf("unexpected list sizes: officials=%d representatives=%d advisers=%d",
			len(rec.Officials), len(rec.Representatives), len(rec.Advisers))
	}
	if rec.AlternateRepresentatives == nil {
		t.Error("AlternateRepresentatives should be empty, not nil")
	}
	if !rec.LeaderPresent || rec.LeaderName != "Ilir Meta" {
		t.Errorf("leader fields = (%v, %q), want (true, Ilir Meta)", rec.LeaderPresent, rec.LeaderName)
	}
	if rec.Attendees() != 4 {
		t.Errorf("Attendees() = %d, want 4", rec.Attendees())
	}
	if result == nil || !result.Success {
		t.Fatalf("expected successful chat result, got %+v", result)
	}
}

func TestExtractorRequestShape(t *testing.T) {
	var captured *providers.ChatRequest

	client := providers.NewMockClient()
	client.RespondFunc = func(_ context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
		captured = req
		return &providers.ChatResult{
			Success:    true,
			ParsedJSON: json.RawMessage(`{"country":"ALBANIA"}`),
		}, nil
	}

	ex := NewExtractor(client, ExtractorConfig{Model: "gpt-5-mini", Logger: discardLogger()})

	if _, _, err := ex.Extract(context.Background(), testChunk()); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if captured == nil {
		t.Fatal("request never reached the client")
	}
	if captured.Model != "gpt-5-mini" {
		t.Errorf("Model = %q, want gpt-5-mini", captured.Model)
	}
	if captured.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", captured.Temperature)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_schema" {
		t.Fatalf("ResponseFormat = %+v, want json_schema", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content == "" {
		t.Errorf("first message should be a non-empty system prompt, got %+v", captured.Messages[0])
	}
	user := captured.Messages[1]
	if user.Role != "user" {
		t.Errorf("second message role = %q, want user", user.Role)
	}
	if !strings.Contains(user.Content, "ALBANIA") || !strings.Contains(user.Content, "Ferit Hoxha") {
		t.Errorf("user prompt missing label or body text:\n%s", user.Content)
	}
}

func TestExtractorArrayPayload(t *testing.T) {
	client := providers.NewMockClient()
	client.Latency = 0
	client.ResponseJSON = json.RawMessage(`[
		{"country": "ANDORRA", "officials": ["Mr. A"], "leader_present": false},
		{"country": "ANDORRA", "officials": ["Mr. B"], "leader_present": false}
	]`)

	ex := NewExtractor(client, ExtractorConfig{Logger: discardLogger()})

	rec, _, err := ex.Extract(context.Background(), testChunk())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.Country != "ANDORRA" {
		t.Errorf("Country = %q, want ANDORRA (first array element)", rec.Country)
	}
	if !reflect.DeepEqual(rec.Officials, []string{"Mr. A"}) {
		t.Errorf("Officials = %v, want [Mr. A]", rec.Officials)
	}
}

func TestExtractorSessionsEnvelope(t *testing.T) {
	client := providers.NewMockClient()
	client.Latency = 0
	client.ResponseJSON = json.RawMessage(`{"sessions": [
		{"country": "ANGOLA", "representatives": ["Ms. C"], "leader_present": true, "leader_name": "X"}
	]}`)

	ex := NewExtractor(client, ExtractorConfig{Logger: discardLogger()})

	rec, _, err := ex.Extract(context.Background(), testChunk())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.Country != "ANGOLA" {
		t.Errorf("Country = %q, want ANGOLA (first session)", rec.Country)
	}
	if !rec.LeaderPresent {
		t.Error("LeaderPresent should survive envelope unwrapping")
	}
}

func TestExtractorCountryFallback(t *testing.T) {
	client := providers.NewMockClient()
	client.Latency = 0
	client.ResponseJSON = json.RawMessage(`{"officials": ["Mr. D"], "leader_present": false}`)

	ex := NewExtractor(client, ExtractorConfig{Logger: discardLogger()})

	rec, _, err := ex.Extract(context.Background(), testChunk())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if rec.Country != "ALBANIA" {
		t.Errorf("Country = %q, want chunk label ALBANIA", rec.Country)
	}
}

func TestExtractorRejectsTypeDrift(t *testing.T) {
	client := providers.NewMockClient()
	client.Latency = 0
	client.ResponseJSON = json.RawMessage(`{"country": "ALBANIA", "officials": "Mr. E"}`)

	ex := NewExtractor(client, ExtractorConfig{Logger: discardLogger()})

	rec, result, err := ex.Extract(context.Background(), testChunk())
	if err == nil {
		t.Fatal("Extract() should fail when a field has the wrong type")
	}
	if rec != nil {
		t.Errorf("record should be nil on decode failure, got %+v", rec)
	}
	if result == nil {
		t.Error("chat result should still be returned for accounting")
	}
}

func TestExtractorProseResponse(t *testing.T) {
	client := providers.NewMockClient()
	client.Latency = 0
	client.ResponseText = "I could not find any delegation data in this text."

	ex := NewExtractor(client, ExtractorConfig{Logger: discardLogger()})

	rec, _, err := ex.Extract(context.Background(), testChunk())
	if err == nil {
		t.Fatalf("Extract() should fail on a prose response, got record %+v", rec)
	}
}

func TestExtractorCallFailure(t *testing.T) {
	client := providers.NewMockClient()
	client.ShouldFail = true

	ex := NewExtractor(client, ExtractorConfig{Logger: discardLogger()})

	rec, result, err := ex.Extract(context.Background(), testChunk())
	if err == nil {
		t.Fatal("Extract() should propagate the client error")
	}
	if !strings.Contains(err.Error(), "ALBANIA") {
		t.Errorf("error should name the chunk label: %v", err)
	}
	if rec != nil {
		t.Errorf("record should be nil on call failure, got %+v", rec)
	}
	if result == nil || result.ErrorType == "" {
		t.Errorf("failed result should carry an error type, got %+v", result)
	}
}

func TestEmptyRecord(t *testing.T) {
	rec := EmptyRecord("SAINT LUCIA", "2013")

	if rec.Country != "SAINT LUCIA" || rec.Year != "2013" {
		t.Errorf("identity fields = (%q, %q), want (SAINT LUCIA, 2013)", rec.Country, rec.Year)
	}
	if rec.Officials == nil || rec.Representatives == nil || rec.AlternateRepresentatives == nil || rec.Advisers == nil {
		t.Error("degraded record lists must be empty, not nil")
	}
	if rec.Attendees() != 0 {
		t.Errorf("Attendees() = %d, want 0", rec.Attendees())
	}
	if rec.LeaderPresent {
		t.Error("degraded record should not claim a leader")
	}
}

func TestSortRecords(t *testing.T) {
	a2010 := &Record{Country: "Albania", Year: "2010"}
	a2013 := &Record{Country: "Albania", Year: "2013"}
	z2010 := &Record{Country: "Zimbabwe", Year: "2010"}
	dupFirst := &Record{Country: "Brazil", Year: "2012", LeaderName: "first"}
	dupSecond := &Record{Country: "Brazil", Year: "2012", LeaderName: "second"}

	records := []*Record{z2010, dupFirst, a2013, dupSecond, a2010}
	SortRecords(records)

	want := []*Record{a2010, a2013, dupFirst, dupSecond, z2010}
	for i := range want {
		if records[i] != want[i] {
			t.Fatalf("position %d = %s/%s (%s), want %s/%s (%s)",
				i, records[i].Country, records[i].Year, records[i].LeaderName,
				want[i].Country, want[i].Year, want[i].LeaderName)
		}
	}
}

func TestSystemPromptEmbedded(t *testing.T) {
	p := SystemPrompt()
	if p == "" {
		t.Fatal("embedded system prompt is empty")
	}
	for _, want := range []string{"officials", "Representatives", "Advisers", "leader_present"} {
		if !strings.Contains(p, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
