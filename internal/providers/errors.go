package providers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Error type labels recorded on ChatResult and in call logs.
const (
	ErrorTypeRateLimit  = "rate_limit"
	ErrorTypeTimeout    = "timeout"
	ErrorTypeAPI        = "api_error"
	ErrorTypeParse      = "parse_error"
	ErrorTypeValidation = "validation_error"
)

// RateLimitError signals a 429 from the provider, carrying the server's
// Retry-After hint when one was sent.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
	StatusCode int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// IsRateLimitError reports whether err is (or wraps) a RateLimitError.
func IsRateLimitError(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}

// parseRetryAfter interprets a Retry-After header value, either delta
// seconds or an HTTP date. Unparseable values yield zero.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := time.Parse(time.RFC1123, value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
