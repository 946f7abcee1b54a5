package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMockClient(t *testing.T) {
	t.Run("chat", func(t *testing.T) {
		c := NewMockClient()
		c.ResponseText = "hello world"

		result, err := c.Chat(context.Background(), &ChatRequest{
			Model: "test-model",
			Messages: []Message{
				{Role: "user", Content: "test"},
			},
		})

		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Errorf("Success = false, want true")
		}
		if result.Content != "hello world" {
			t.Errorf("Content = %q, want %q", result.Content, "hello world")
		}
		if result.ModelUsed != "test-model" {
			t.Errorf("ModelUsed = %q, want test-model", result.ModelUsed)
		}
		if c.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", c.RequestCount())
		}
	})

	t.Run("structured output", func(t *testing.T) {
		c := NewMockClient()
		c.ResponseJSON = json.RawMessage(`{"key": "value"}`)

		result, err := c.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
			ResponseFormat: &ResponseFormat{
				Type: "json_schema",
			},
		})

		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.ParsedJSON == nil {
			t.Error("expected ParsedJSON")
		}
		if result.Content != `{"key": "value"}` {
			t.Errorf("Content = %q, want raw JSON", result.Content)
		}
	})

	t.Run("respond func", func(t *testing.T) {
		c := NewMockClient()
		c.RespondFunc = func(_ context.Context, req *ChatRequest) (*ChatResult, error) {
			return &ChatResult{
				Success:   true,
				Content:   fmt.Sprintf("saw %d messages", len(req.Messages)),
				Provider:  MockClientName,
				ModelUsed: "scripted",
				Attempts:  1,
			}, nil
		}

		result, err := c.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "a"}, {Role: "user", Content: "b"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Content != "saw 2 messages" {
			t.Errorf("Content = %q, want scripted response", result.Content)
		}
		if c.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", c.RequestCount())
		}
	})

	t.Run("failure", func(t *testing.T) {
		c := NewMockClient()
		c.ShouldFail = true

		result, err := c.Chat(context.Background(), &ChatRequest{})
		if err == nil {
			t.Error("expected error, got nil")
		}
		if result.Success {
			t.Error("expected Success = false")
		}
	})

	t.Run("fail after N", func(t *testing.T) {
		c := NewMockClient()
		c.FailAfter = 2

		// First two should succeed
		_, err := c.Chat(context.Background(), &ChatRequest{})
		if err != nil {
			t.Fatalf("first request should succeed: %v", err)
		}
		_, err = c.Chat(context.Background(), &ChatRequest{})
		if err != nil {
			t.Fatalf("second request should succeed: %v", err)
		}

		// Third should fail
		_, err = c.Chat(context.Background(), &ChatRequest{})
		if err == nil {
			t.Error("third request should fail")
		}

		c.Reset()
		if _, err := c.Chat(context.Background(), &ChatRequest{}); err != nil {
			t.Fatalf("request after Reset should succeed: %v", err)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		c := NewMockClient()
		c.Latency = 5 * time.Second

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := c.Chat(ctx, &ChatRequest{})
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows initial requests", func(t *testing.T) {
		limiter := NewRateLimiter(600)

		// The bucket starts full, so a short burst never waits.
		start := time.Now()
		for i := 0; i < 5; i++ {
			if err := limiter.Wait(context.Background()); err != nil {
				t.Fatalf("request %d failed: %v", i, err)
			}
		}
		elapsed := time.Since(start)

		if elapsed > time.Second {
			t.Errorf("took too long: %v", elapsed)
		}
	})

	t.Run("status", func(t *testing.T) {
		limiter := NewRateLimiter(60)

		status := limiter.Status()

		if status.TokensLimit != 60 {
			t.Errorf("TokensLimit = %d, want 60", status.TokensLimit)
		}
		if status.TokensAvailable <= 0 {
			t.Error("expected positive tokens available")
		}
	})

	t.Run("record 429 drains bucket", func(t *testing.T) {
		limiter := NewRateLimiter(60)

		limiter.Record429(time.Second)

		status := limiter.Status()
		if status.Last429.IsZero() {
			t.Error("Last429 should be set")
		}
		if status.TokensAvailable != 0 {
			t.Errorf("TokensAvailable = %d, want 0 after 429", status.TokensAvailable)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := limiter.Wait(ctx); err == nil {
			t.Error("Wait should block during Retry-After hold")
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		limiter := NewRateLimiter(1)

		// Consume the single token.
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("first Wait() error = %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := limiter.Wait(ctx)
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("concurrent requests", func(t *testing.T) {
		limiter := NewRateLimiter(6000)

		var wg sync.WaitGroup
		var errCount atomic.Int32

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := limiter.Wait(context.Background()); err != nil {
					errCount.Add(1)
				}
			}()
		}

		wg.Wait()

		if errCount.Load() > 0 {
			t.Errorf("had %d errors", errCount.Load())
		}

		status := limiter.Status()
		if status.TotalConsumed != 10 {
			t.Errorf("TotalConsumed = %d, want 10", status.TotalConsumed)
		}
	})
}

func TestNewClientFromConfig(t *testing.T) {
	t.Run("mock", func(t *testing.T) {
		client, err := NewClientFromConfig(ClientConfig{Type: "mock"})
		if err != nil {
			t.Fatalf("NewClientFromConfig() error = %v", err)
		}
		if _, ok := client.(*MockClient); !ok {
			t.Fatalf("expected *MockClient, got %T", client)
		}
	})

	t.Run("openai", func(t *testing.T) {
		client, err := NewClientFromConfig(ClientConfig{Type: "openai", APIKey: "test-key", RateLimit: 30})
		if err != nil {
			t.Fatalf("NewClientFromConfig() error = %v", err)
		}
		oc, ok := client.(*OpenAIClient)
		if !ok {
			t.Fatalf("expected *OpenAIClient, got %T", client)
		}
		if oc.Model() != "gpt-4o" {
			t.Errorf("default model = %q, want gpt-4o", oc.Model())
		}
		if oc.limiter == nil {
			t.Error("expected rate limiter for rate_limit > 0")
		} else if got := oc.limiter.Status().TokensLimit; got != 30 {
			t.Errorf("TokensLimit = %d, want 30", got)
		}
	})

	t.Run("openai no rate limit", func(t *testing.T) {
		client, err := NewClientFromConfig(ClientConfig{Type: "openai", APIKey: "test-key"})
		if err != nil {
			t.Fatalf("NewClientFromConfig() error = %v", err)
		}
		if oc := client.(*OpenAIClient); oc.limiter != nil {
			t.Error("expected no rate limiter for rate_limit = 0")
		}
	})

	t.Run("openai requires key", func(t *testing.T) {
		if _, err := NewClientFromConfig(ClientConfig{Type: "openai"}); err == nil {
			t.Fatal("expected error for missing API key")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewClientFromConfig(ClientConfig{Type: "llamacpp"}); err == nil {
			t.Fatal("expected error for unknown client type")
		}
	})
}
