package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string
	ResponseJSON json.RawMessage // Returned when the request has a ResponseFormat

	// RespondFunc, when set, handles the request entirely. Tests use it to
	// vary the reply per request.
	RespondFunc func(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// State
	requestCount atomic.Int64
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		Latency:      5 * time.Millisecond,
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// HealthCheck always succeeds.
func (c *MockClient) HealthCheck(_ context.Context) error {
	return nil
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	if c.RespondFunc != nil {
		return c.RespondFunc(ctx, req)
	}

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: "mock-model",
		Attempts:  1,
	}
	if req != nil {
		if req.RequestID != "" {
			result.RequestID = req.RequestID
		}
		if req.Model != "" {
			result.ModelUsed = req.Model
		}
	}

	// Check if we should fail
	if c.ShouldFail {
		result.ErrorType = "mock_failure"
		result.ErrorMessage = "mock client configured to fail"
		result.ExecutionTime = time.Since(start)
		return result, fmt.Errorf("mock client configured to fail")
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		result.ErrorType = "mock_failure"
		result.ErrorMessage = fmt.Sprintf("mock client failed after %d requests", c.FailAfter)
		result.ExecutionTime = time.Since(start)
		return result, fmt.Errorf("mock client failed after %d requests", c.FailAfter)
	}

	// Simulate latency
	select {
	case <-time.After(c.Latency):
	case <-ctx.Done():
		result.ErrorType = ErrorTypeTimeout
		result.ErrorMessage = ctx.Err().Error()
		result.ExecutionTime = time.Since(start)
		return result, ctx.Err()
	}

	// Build response
	result.Success = true
	result.Content = c.ResponseText
	if req != nil && req.ResponseFormat != nil && len(c.ResponseJSON) > 0 {
		result.Content = string(c.ResponseJSON)
		result.ParsedJSON = c.ResponseJSON
	}
	result.ExecutionTime = time.Since(start)

	// Simulate token counting
	promptTokens := 0
	if req != nil {
		for _, m := range req.Messages {
			promptTokens += len(m.Content) / 4 // Rough estimate
		}
	}
	completionTokens := len(result.Content) / 4

	result.PromptTokens = promptTokens
	result.CompletionTokens = completionTokens
	result.TotalTokens = promptTokens + completionTokens
	result.CostUSD = 0.001 // Mock cost

	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Reset resets the request counter.
func (c *MockClient) Reset() {
	c.requestCount.Store(0)
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
var _ HealthChecker = (*MockClient)(nil)
