// Package llmcall provides inference call recording for traceability. Every
// extraction call is recorded with its source document, chunk, response and
// usage, one JSONL file per run under the home calls directory.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/hamiltonlab/bluebook/internal/providers"
)

// Call represents a recorded inference call.
type Call struct {
	// Unique identifier
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Context references
	RunID    string `json:"run_id,omitempty"`
	Document string `json:"document,omitempty"` // Source file stem
	Chunk    string `json:"chunk,omitempty"`    // Country heading
	Year     string `json:"year,omitempty"`

	// Prompt traceability
	PromptKey string `json:"prompt_key"`

	// Model info
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`

	// Token usage
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`

	// Response
	Response string `json:"response"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording an inference call.
type RecordOptions struct {
	// Context references (all optional)
	RunID    string
	Document string
	Chunk    string
	Year     string

	// Prompt identification (required for traceability)
	PromptKey string

	// Request parameters (pointer to distinguish "not set" from "set to 0")
	Temperature *float64
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		RunID:        opts.RunID,
		Document:     opts.Document,
		Chunk:        opts.Chunk,
		Year:         opts.Year,
		PromptKey:    opts.PromptKey,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		CostUSD:      result.CostUSD,
		Response:     result.Content,
		Success:      result.Success,
	}

	if opts.Temperature != nil {
		call.Temperature = opts.Temperature
	}

	if !result.Success {
		call.Error = result.ErrorMessage
	}

	return call
}
