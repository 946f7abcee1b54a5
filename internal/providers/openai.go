package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIClientName   = "openai"
	openAIDefaultModel = openai.ChatModelGPT4o
)

// Chat token pricing in USD per 1M tokens, used for run cost estimates.
// Longest prefix wins so "gpt-4o-mini" is not priced as "gpt-4o".
var openAIChatPricing = []struct {
	prefix string
	in     float64
	out    float64
}{
	{"gpt-4o-mini", 0.15, 0.60},
	{"gpt-4o", 2.50, 10.00},
	{"gpt-4.1-mini", 0.40, 1.60},
	{"gpt-4.1", 2.00, 8.00},
}

// OpenAIConfig holds configuration for the OpenAI chat client.
type OpenAIConfig struct {
	APIKey     string
	Model      string        // "gpt-4o" (default)
	MaxRetries int           // Retry attempts for SDK transport
	Timeout    time.Duration // HTTP timeout
	RateLimit  int           // Requests per minute; 0 disables throttling
	BaseURL    string        // Optional (tests)
	HTTPClient *http.Client  // Optional (tests)
}

// OpenAIClient implements LLMClient using the official OpenAI SDK.
type OpenAIClient struct {
	model   string
	client  openai.Client
	limiter *RateLimiter
}

// NewOpenAIClient creates a new OpenAI chat client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	var limiter *RateLimiter
	if cfg.RateLimit > 0 {
		limiter = NewRateLimiter(cfg.RateLimit)
	}

	return &OpenAIClient{
		model:   cfg.Model,
		client:  openai.NewClient(opts...),
		limiter: limiter,
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIClientName
}

// Model returns the configured default model.
func (c *OpenAIClient) Model() string {
	return c.model
}

// HealthCheck verifies the API is reachable and the key is valid.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("openai models list failed: %w", mapOpenAIError(err))
	}
	if page == nil {
		return fmt.Errorf("openai models list returned nil response")
	}
	return nil
}

// Chat sends a chat completion request. When a ResponseFormat is set the
// response content is additionally run through the JSON recovery ladder and
// the parsed document placed on the result; parse failure leaves ParsedJSON
// nil without failing the call, since the caller owns degradation policy.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	result := &ChatResult{
		Provider:  OpenAIClientName,
		ModelUsed: c.model,
		Attempts:  1,
	}

	if req == nil || len(req.Messages) == 0 {
		err := fmt.Errorf("at least one message is required")
		result.ErrorType = ErrorTypeAPI
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}
	result.RequestID = req.RequestID

	model := req.Model
	if model == "" {
		model = c.model
	}
	result.ModelUsed = model

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    buildChatMessages(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.ResponseFormat != nil {
		rf, err := buildResponseFormat(req.ResponseFormat)
		if err != nil {
			result.ErrorType = ErrorTypeValidation
			result.ErrorMessage = err.Error()
			result.ExecutionTime = time.Since(start)
			return result, err
		}
		if rf != nil {
			params.ResponseFormat = *rf
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			result.ErrorType = ErrorTypeTimeout
			result.ErrorMessage = err.Error()
			result.ExecutionTime = time.Since(start)
			return result, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = mapOpenAIError(err)
		var rle *RateLimitError
		if errors.As(err, &rle) && c.limiter != nil {
			c.limiter.Record429(rle.RetryAfter)
		}
		result.ErrorType = classifyChatError(err)
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}
	if len(completion.Choices) == 0 {
		err := fmt.Errorf("openai returned no choices")
		result.ErrorType = ErrorTypeAPI
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	result.Success = true
	result.Content = completion.Choices[0].Message.Content
	result.PromptTokens = int(completion.Usage.PromptTokens)
	result.CompletionTokens = int(completion.Usage.CompletionTokens)
	result.TotalTokens = int(completion.Usage.TotalTokens)
	result.CostUSD = estimateChatCostUSD(model, result.PromptTokens, result.CompletionTokens)
	result.ExecutionTime = time.Since(start)
	if completion.Model != "" {
		result.ModelUsed = completion.Model
	}

	if req.ResponseFormat != nil {
		if parsed, perr := parseStructuredJSON(result.Content); perr == nil {
			result.ParsedJSON = parsed
		}
	}

	return result, nil
}

func buildChatMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// buildResponseFormat converts the wrapped {"name","strict","schema"} form
// into the SDK's json_schema response format.
func buildResponseFormat(rf *ResponseFormat) (*openai.ChatCompletionNewParamsResponseFormatUnion, error) {
	if rf == nil || len(rf.JSONSchema) == 0 {
		return nil, nil
	}

	var wrapper struct {
		Name   string          `json:"name"`
		Strict *bool           `json:"strict"`
		Schema json.RawMessage `json:"schema"`
	}
	if err := json.Unmarshal(rf.JSONSchema, &wrapper); err != nil {
		return nil, fmt.Errorf("invalid response format schema: %w", err)
	}
	if wrapper.Name == "" {
		wrapper.Name = "structured_output"
	}

	var schemaDoc any
	if len(wrapper.Schema) > 0 {
		if err := json.Unmarshal(wrapper.Schema, &schemaDoc); err != nil {
			return nil, fmt.Errorf("invalid response format inner schema: %w", err)
		}
	}

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   wrapper.Name,
		Schema: schemaDoc,
	}
	if wrapper.Strict != nil {
		schemaParam.Strict = openai.Bool(*wrapper.Strict)
	}

	return &openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}, nil
}

func estimateChatCostUSD(model string, promptTokens, completionTokens int) float64 {
	m := strings.ToLower(strings.TrimSpace(model))
	for _, p := range openAIChatPricing {
		if strings.HasPrefix(m, p.prefix) {
			return float64(promptTokens)*(p.in/1_000_000.0) +
				float64(completionTokens)*(p.out/1_000_000.0)
		}
	}
	return 0
}

func classifyChatError(err error) string {
	var rle *RateLimitError
	switch {
	case errors.As(err, &rle):
		return ErrorTypeRateLimit
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	default:
		return ErrorTypeAPI
	}
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := time.Duration(0)
			if apiErr.Response != nil {
				retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
			}
			return &RateLimitError{
				Message:    fmt.Sprintf("OpenAI rate limited: %s", apiErr.Message),
				RetryAfter: retryAfter,
				StatusCode: apiErr.StatusCode,
			}
		}
		if apiErr.Message != "" {
			return fmt.Errorf("OpenAI chat error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("OpenAI chat error (status %d)", apiErr.StatusCode)
	}
	return err
}

var _ LLMClient = (*OpenAIClient)(nil)
