package docparse

import (
	"context"
	"sync/atomic"
)

// MockParser is a configurable parser for testing.
type MockParser struct {
	// Pages to return from Parse.
	Pages []Page

	// Err, when set, is returned by every Parse call.
	Err error

	// ParseFunc, when set, overrides the canned behavior.
	ParseFunc func(ctx context.Context, path string) ([]Page, error)

	calls atomic.Int64
}

// NewMockParser creates a mock parser returning a single page of text.
func NewMockParser(text string) *MockParser {
	return &MockParser{Pages: []Page{{Number: 1, Markdown: text}}}
}

// Name returns the parser identifier.
func (m *MockParser) Name() string {
	return "mock"
}

// Parse returns the configured pages or error.
func (m *MockParser) Parse(ctx context.Context, path string) ([]Page, error) {
	m.calls.Add(1)

	if m.ParseFunc != nil {
		return m.ParseFunc(ctx, path)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Pages, nil
}

// Calls returns the number of Parse invocations.
func (m *MockParser) Calls() int64 {
	return m.calls.Load()
}

var _ Parser = (*MockParser)(nil)
