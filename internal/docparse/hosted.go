package docparse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	HostedParserName = "hosted"

	// HostedDefaultURL is the agentic document analysis endpoint.
	HostedDefaultURL = "https://api.va.landing.ai/v1/tools/agentic-document-analysis"

	hostedDefaultTimeout    = 300 * time.Second
	hostedDefaultBatchPages = 10
	hostedRetryDelay        = 2 * time.Second
)

// HostedConfig holds configuration for the hosted parser client.
type HostedConfig struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int           // total attempts per upload
	BatchPages int           // pages per upload; longer PDFs are split locally first
	RetryDelay time.Duration // base delay between attempts
	HTTPClient *http.Client
}

// HostedClient posts PDFs to an agentic document analysis service and
// returns the markdown it extracted.
type HostedClient struct {
	endpoint   string
	apiKey     string
	maxRetries int
	batchPages int
	retryDelay time.Duration
	client     *http.Client
}

// NewHostedClient creates a hosted parser client.
func NewHostedClient(cfg HostedConfig) *HostedClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = HostedDefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = hostedDefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchPages <= 0 {
		cfg.BatchPages = hostedDefaultBatchPages
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = hostedRetryDelay
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &HostedClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		batchPages: cfg.BatchPages,
		retryDelay: cfg.RetryDelay,
		client:     client,
	}
}

// Name returns the parser identifier.
func (c *HostedClient) Name() string {
	return HostedParserName
}

// Parse uploads the PDF at path and returns one Page per uploaded batch,
// in page order. PDFs longer than the batch size are split locally before
// upload so the service never sees more than BatchPages pages at once.
func (c *HostedClient) Parse(ctx context.Context, path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}

	filename := filepath.Base(path)
	var pages []Page

	for _, r := range batchRanges(pageCount, c.batchPages) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind %s: %w", path, err)
		}

		var reader io.Reader = f
		if pageCount > c.batchPages {
			var buf bytes.Buffer
			sel := []string{fmt.Sprintf("%d-%d", r.from, r.to)}
			if err := api.Trim(f, &buf, sel, nil); err != nil {
				return nil, fmt.Errorf("failed to split pages %d-%d of %s: %w", r.from, r.to, path, err)
			}
			reader = &buf
		}

		md, err := c.convert(ctx, filename, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to convert pages %d-%d of %s: %w", r.from, r.to, path, err)
		}

		pages = append(pages, Page{Number: r.from, Markdown: md})
	}

	return pages, nil
}

// pageRange is an inclusive 1-indexed page span.
type pageRange struct {
	from, to int
}

// batchRanges splits a page count into spans of at most batch pages each.
func batchRanges(pageCount, batch int) []pageRange {
	if pageCount <= 0 {
		return nil
	}
	if batch <= 0 {
		return []pageRange{{from: 1, to: pageCount}}
	}

	var ranges []pageRange
	for from := 1; from <= pageCount; from += batch {
		to := from + batch - 1
		if to > pageCount {
			to = pageCount
		}
		ranges = append(ranges, pageRange{from: from, to: to})
	}
	return ranges
}

// convert uploads one PDF (or PDF slice) and returns the extracted
// markdown, retrying transient failures.
func (c *HostedClient) convert(ctx context.Context, filename string, r io.Reader) (string, error) {
	var form bytes.Buffer
	w := multipart.NewWriter(&form)

	part, err := w.CreateFormFile("pdf", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	_ = w.WriteField("include_marginalia", "true")
	_ = w.WriteField("include_metadata_in_markdown", "true")
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	var markdown string
	err = retry.Do(
		func() error {
			md, err := c.doConvert(ctx, form.Bytes(), w.FormDataContentType())
			if err != nil {
				return err
			}
			markdown = md
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}
	return markdown, nil
}

// doConvert makes a single conversion request.
func (c *HostedClient) doConvert(ctx context.Context, form []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(form))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("parser error (status %d): %s", resp.StatusCode, string(respBody))
		// Client errors other than 429 will not improve on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", retry.Unrecoverable(err)
		}
		return "", err
	}

	var parsed hostedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", retry.Unrecoverable(fmt.Errorf("failed to unmarshal response: %w", err))
	}

	return parsed.Data.Markdown, nil
}

// Hosted parser API types.

type hostedResponse struct {
	Data   hostedData        `json:"data"`
	Errors []hostedPageError `json:"errors,omitempty"`
}

type hostedData struct {
	Markdown string        `json:"markdown"`
	Chunks   []hostedChunk `json:"chunks,omitempty"`
}

type hostedChunk struct {
	Text      string `json:"text"`
	ChunkType string `json:"chunk_type"`
}

type hostedPageError struct {
	PageNum   int    `json:"page_num"`
	Error     string `json:"error"`
	ErrorCode int    `json:"error_code"`
}

var _ Parser = (*HostedClient)(nil)
