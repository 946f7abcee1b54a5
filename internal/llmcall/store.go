package llmcall

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const callsFileName = "calls.jsonl"

// Store appends call records to a JSONL file, one file per run.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store writing into dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create call log directory: %w", err)
	}
	return &Store{path: filepath.Join(dir, callsFileName)}, nil
}

// Path returns the JSONL file path.
func (s *Store) Path() string {
	return s.path
}

// Append writes one call record.
func (s *Store) Append(call *Call) error {
	if call == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open call log: %w", err)
	}

	if err := json.NewEncoder(f).Encode(call); err != nil {
		f.Close()
		return fmt.Errorf("failed to write call record: %w", err)
	}
	return f.Close()
}

// List reads back all recorded calls. A missing file yields zero calls.
func (s *Store) List() ([]Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open call log: %w", err)
	}
	defer f.Close()

	var calls []Call
	dec := json.NewDecoder(f)
	for {
		var c Call
		if err := dec.Decode(&c); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to decode call record: %w", err)
		}
		calls = append(calls, c)
	}
	return calls, nil
}

// Summary aggregates usage across recorded calls.
type Summary struct {
	Calls        int     `json:"calls"`
	Failures     int     `json:"failures"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Summarize totals calls, failures, tokens and cost.
func Summarize(calls []Call) Summary {
	var s Summary
	for _, c := range calls {
		s.Calls++
		if !c.Success {
			s.Failures++
		}
		s.InputTokens += c.InputTokens
		s.OutputTokens += c.OutputTokens
		s.CostUSD += c.CostUSD
	}
	return s
}
