package llmcall

import (
	"math"
	"testing"
	"time"

	"github.com/hamiltonlab/bluebook/internal/providers"
)

func TestFromChatResult(t *testing.T) {
	result := &providers.ChatResult{
		Content:          `{"country":"France"}`,
		PromptTokens:     120,
		CompletionTokens: 30,
		CostUSD:          0.0006,
		ExecutionTime:    1500 * time.Millisecond,
		Provider:         "openai",
		ModelUsed:        "gpt-4o",
		Success:          true,
	}

	temp := 0.0
	call := FromChatResult(result, RecordOptions{
		RunID:       "run-1",
		Document:    "2013_0",
		Chunk:       "FRANCE",
		Year:        "2013",
		PromptKey:   "delegation_extract",
		Temperature: &temp,
	})

	if call == nil {
		t.Fatal("FromChatResult() = nil, want call")
	}
	if call.ID == "" {
		t.Error("expected generated call ID")
	}
	if call.LatencyMs != 1500 {
		t.Errorf("LatencyMs = %d, want 1500", call.LatencyMs)
	}
	if call.Document != "2013_0" || call.Chunk != "FRANCE" || call.Year != "2013" {
		t.Errorf("context fields not carried: %+v", call)
	}
	if call.InputTokens != 120 || call.OutputTokens != 30 {
		t.Errorf("token counts not carried: %+v", call)
	}
	if call.Temperature == nil || *call.Temperature != 0 {
		t.Errorf("temperature not carried: %+v", call.Temperature)
	}
	if !call.Success || call.Error != "" {
		t.Errorf("expected success call, got %+v", call)
	}
}

func TestFromChatResult_Failure(t *testing.T) {
	result := &providers.ChatResult{
		Provider:     "openai",
		ModelUsed:    "gpt-4o",
		Success:      false,
		ErrorMessage: "rate limited",
	}

	call := FromChatResult(result, RecordOptions{PromptKey: "delegation_extract"})
	if call.Success {
		t.Error("expected failed call")
	}
	if call.Error != "rate limited" {
		t.Errorf("Error = %q, want rate limited", call.Error)
	}
}

func TestFromChatResult_Nil(t *testing.T) {
	if call := FromChatResult(nil, RecordOptions{}); call != nil {
		t.Fatalf("FromChatResult(nil) = %+v, want nil", call)
	}
}

func TestStoreAppendAndList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	// Empty store lists nothing.
	calls, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(calls))
	}

	first := &Call{ID: "a", PromptKey: "delegation_extract", Success: true, InputTokens: 100}
	second := &Call{ID: "b", PromptKey: "delegation_extract", Success: false, Error: "timeout"}
	if err := store.Append(first); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(second); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	calls, err = store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].ID != "a" || calls[1].ID != "b" {
		t.Errorf("calls out of order: %+v", calls)
	}
	if calls[1].Error != "timeout" {
		t.Errorf("second call error = %q, want timeout", calls[1].Error)
	}
}

func TestSummarize(t *testing.T) {
	calls := []Call{
		{Success: true, InputTokens: 100, OutputTokens: 20, CostUSD: 0.001},
		{Success: true, InputTokens: 50, OutputTokens: 10, CostUSD: 0.0005},
		{Success: false},
	}

	s := Summarize(calls)
	if s.Calls != 3 {
		t.Errorf("Calls = %d, want 3", s.Calls)
	}
	if s.Failures != 1 {
		t.Errorf("Failures = %d, want 1", s.Failures)
	}
	if s.InputTokens != 150 || s.OutputTokens != 30 {
		t.Errorf("token totals = %d/%d, want 150/30", s.InputTokens, s.OutputTokens)
	}
	if math.Abs(s.CostUSD-0.0015) > 1e-12 {
		t.Errorf("CostUSD = %f, want 0.0015", s.CostUSD)
	}
}
