package llmcall

import (
	"log/slog"

	"github.com/hamiltonlab/bluebook/internal/providers"
)

// Recorder handles fire-and-forget call recording. Write errors are logged,
// never returned; recording must not fail a run.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a new call recorder.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Record captures an inference call. A nil recorder or store is a no-op so
// callers can run with recording disabled.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) {
	if r == nil || r.store == nil {
		return
	}

	call := FromChatResult(result, opts)
	if call == nil {
		return
	}
	if err := r.store.Append(call); err != nil {
		r.logger.Warn("failed to record llm call", "error", err, "call_id", call.ID)
	}
}
