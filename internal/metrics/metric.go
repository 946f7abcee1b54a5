// Package metrics provides in-memory cost and usage tracking for extraction
// runs.
package metrics

import "time"

// Metric represents a single recorded operation within a run.
type Metric struct {
	// Attribution (for filtering/aggregation)
	RunID   string `json:"run_id,omitempty"`
	Stage   string `json:"stage,omitempty"`    // e.g. "parse", "segment", "extract", "tables", "combine"
	ItemKey string `json:"item_key,omitempty"` // e.g. source stem or country label
	Year    string `json:"year,omitempty"`

	// Provider info
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// Cost and tokens
	CostUSD          float64 `json:"cost_usd,omitempty"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	TotalTokens      int     `json:"total_tokens,omitempty"`

	// Counter payload for non-call stages (chunks segmented, tables found)
	Count int `json:"count,omitempty"`

	// Timing
	ExecutionSeconds float64 `json:"execution_seconds,omitempty"`

	// Status
	Success   bool   `json:"success"`
	ErrorType string `json:"error_type,omitempty"`

	// Metadata
	CreatedAt time.Time `json:"created_at,omitempty"`
}
