package metrics

import (
	"sync"
	"time"

	"github.com/hamiltonlab/bluebook/internal/providers"
)

// Recorder collects metrics in memory for the duration of a run. All methods
// are safe for concurrent use and are no-ops on a nil receiver, so callers can
// run without metrics wired in.
type Recorder struct {
	mu      sync.Mutex
	metrics []Metric
}

// NewRecorder creates an empty metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordOpts provides attribution for a metric recording.
type RecordOpts struct {
	RunID   string
	Stage   string
	ItemKey string
	Year    string
}

// Record stores a single metric.
func (r *Recorder) Record(m Metric) {
	if r == nil {
		return
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, m)
}

// RecordLLMCall records a metric from a chat result.
func (r *Recorder) RecordLLMCall(opts RecordOpts, result *providers.ChatResult) {
	if r == nil || result == nil {
		return
	}
	r.Record(Metric{
		RunID:            opts.RunID,
		Stage:            opts.Stage,
		ItemKey:          opts.ItemKey,
		Year:             opts.Year,
		Provider:         result.Provider,
		Model:            result.ModelUsed,
		CostUSD:          result.CostUSD,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		ExecutionSeconds: result.ExecutionTime.Seconds(),
		Success:          result.Success,
		ErrorType:        result.ErrorType,
	})
}

// RecordCount records a successful stage operation with a counter payload,
// such as the number of chunks produced for a document.
func (r *Recorder) RecordCount(opts RecordOpts, count int) {
	if r == nil {
		return
	}
	r.Record(Metric{
		RunID:   opts.RunID,
		Stage:   opts.Stage,
		ItemKey: opts.ItemKey,
		Year:    opts.Year,
		Count:   count,
		Success: true,
	})
}

// RecordError records a failed operation without an associated chat result.
func (r *Recorder) RecordError(opts RecordOpts, errorType string, duration time.Duration) {
	if r == nil {
		return
	}
	r.Record(Metric{
		RunID:            opts.RunID,
		Stage:            opts.Stage,
		ItemKey:          opts.ItemKey,
		Year:             opts.Year,
		ExecutionSeconds: duration.Seconds(),
		Success:          false,
		ErrorType:        errorType,
	})
}

// List returns a snapshot of all recorded metrics in recording order.
func (r *Recorder) List() []Metric {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Metric, len(r.metrics))
	copy(out, r.metrics)
	return out
}

// Summary aggregates everything recorded so far.
func (r *Recorder) Summary() *Summary {
	return Summarize(r.List())
}
