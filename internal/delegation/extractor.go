package delegation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hamiltonlab/bluebook/internal/providers"
	"github.com/hamiltonlab/bluebook/internal/segment"
)

// Extractor issues one schema-constrained chat call per country chunk and
// decodes the result into a Record. It reports failures explicitly; the
// caller decides whether to degrade to an empty record.
type Extractor struct {
	client       providers.LLMClient
	systemPrompt string
	model        string
	timeout      time.Duration
	logger       *slog.Logger
}

// ExtractorConfig holds configuration for the extractor.
type ExtractorConfig struct {
	SystemPrompt string        // override for the embedded default
	Model        string        // override for the client default model
	Timeout      time.Duration // per-call timeout
	Logger       *slog.Logger
}

// NewExtractor creates an extractor around an injected chat client.
func NewExtractor(client providers.LLMClient, cfg ExtractorConfig) *Extractor {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = systemPrompt
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Extractor{
		client:       client,
		systemPrompt: cfg.SystemPrompt,
		model:        cfg.Model,
		timeout:      cfg.Timeout,
		logger:       cfg.Logger,
	}
}

// Extract runs one extraction call for a country chunk. The chat result is
// returned alongside the record so callers can account cost and latency
// even when decoding fails.
func (e *Extractor) Extract(ctx context.Context, chunk segment.Chunk) (*Record, *providers.ChatResult, error) {
	req := &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: e.systemPrompt},
			{Role: "user", Content: BuildUserPrompt(chunk.Label, chunk.BodyText())},
		},
		Model:          e.model,
		Temperature:    0,
		Timeout:        e.timeout,
		ResponseFormat: ResponseFormat(),
	}

	result, err := e.client.Chat(ctx, req)
	if err != nil {
		return nil, result, fmt.Errorf("extraction call for %s failed: %w", chunk.Label, err)
	}

	record, err := decodeRecord(result, chunk.Label)
	if err != nil {
		return nil, result, fmt.Errorf("failed to decode record for %s: %w", chunk.Label, err)
	}

	return record, result, nil
}

// decodeRecord turns a chat result into a Record. The payload may be a
// single object, an array of session objects, or a sessions envelope; all
// collapse to the first record. Missing fields decode to zero values, only
// type drift against the schema fails the chunk.
func decodeRecord(result *providers.ChatResult, label string) (*Record, error) {
	raw := result.ParsedJSON
	if len(raw) == 0 {
		parsed, err := providers.ParseStructured(result.Content)
		if err != nil {
			return nil, fmt.Errorf("no JSON in model output: %w", err)
		}
		raw = parsed
	}

	raw = firstRecordPayload(raw)

	if err := providers.ValidateAgainstSchema(ValidationSchema(), raw); err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	if rec.Country == "" {
		rec.Country = label
	}
	if rec.Officials == nil {
		rec.Officials = []string{}
	}
	if rec.Representatives == nil {
		rec.Representatives = []string{}
	}
	if rec.AlternateRepresentatives == nil {
		rec.AlternateRepresentatives = []string{}
	}
	if rec.Advisers == nil {
		rec.Advisers = []string{}
	}

	return &rec, nil
}

// firstRecordPayload unwraps array and {"sessions": [...]} payload shapes
// down to a single record object. Anything unrecognized passes through for
// schema validation to judge.
func firstRecordPayload(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return raw
	}

	if trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil || len(arr) == 0 {
			return raw
		}
		return firstRecordPayload(arr[0])
	}

	if trimmed[0] == '{' {
		var envelope struct {
			Sessions []json.RawMessage `json:"sessions"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Sessions) > 0 {
			return firstRecordPayload(envelope.Sessions[0])
		}
	}

	return raw
}
