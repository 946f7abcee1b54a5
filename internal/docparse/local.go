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
)

const (
	LocalParserName = "local"

	// LocalDefaultPort is the host port the docling-serve container binds.
	LocalDefaultPort = "5001"

	localConvertPath    = "/v1alpha/convert/file"
	localHealthPath     = "/health"
	localDefaultTimeout = 300 * time.Second
	localRetryDelay     = 2 * time.Second
)

// LocalConfig holds configuration for the local parser client.
type LocalConfig struct {
	BaseURL    string // defaults to http://localhost:<Port>
	Port       string
	Timeout    time.Duration
	MaxRetries int           // total attempts per conversion
	RetryDelay time.Duration // base delay between attempts
	HTTPClient *http.Client
}

// LocalClient posts documents to a docling-serve container on localhost.
// The container owns page handling, so no local batch split happens here.
type LocalClient struct {
	baseURL    string
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
}

// NewLocalClient creates a local parser client.
func NewLocalClient(cfg LocalConfig) *LocalClient {
	if cfg.Port == "" {
		cfg.Port = LocalDefaultPort
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = localDefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = localRetryDelay
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &LocalClient{
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     client,
	}
}

// Name returns the parser identifier.
func (c *LocalClient) Name() string {
	return LocalParserName
}

// HealthCheck reports whether the container is up and serving.
func (c *LocalClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+localHealthPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("parser container unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("parser container unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Parse converts the document in a single request and returns the result
// as one page.
func (c *LocalClient) Parse(ctx context.Context, path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var form bytes.Buffer
	w := multipart.NewWriter(&form)

	part, err := w.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write upload form: %w", err)
	}
	_ = w.WriteField("to_formats", "md")
	_ = w.WriteField("image_export_mode", "placeholder")
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	var md string
	err = retry.Do(
		func() error {
			out, err := c.doConvert(ctx, form.Bytes(), w.FormDataContentType())
			if err != nil {
				return err
			}
			md = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}

	return []Page{{Number: 1, Markdown: md}}, nil
}

// doConvert makes a single conversion request.
func (c *LocalClient) doConvert(ctx context.Context, form []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+localConvertPath, bytes.NewReader(form))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

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
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", retry.Unrecoverable(err)
		}
		return "", err
	}

	var parsed localResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", retry.Unrecoverable(fmt.Errorf("failed to unmarshal response: %w", err))
	}

	if parsed.Status == "failure" {
		return "", retry.Unrecoverable(fmt.Errorf("conversion failed: %s", parsed.Status))
	}

	return parsed.Document.MDContent, nil
}

// docling-serve API types.

type localResponse struct {
	Document localDocument `json:"document"`
	Status   string        `json:"status"`
}

type localDocument struct {
	Filename  string `json:"filename"`
	MDContent string `json:"md_content"`
}

var _ Parser = (*LocalClient)(nil)
