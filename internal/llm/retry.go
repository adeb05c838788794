package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultBackoff is the wait before each retry attempt
var DefaultBackoff = []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

// RetryClient retries transient provider failures (rate limits and 5xx).
// Other errors, including context cancellation, are returned immediately.
type RetryClient struct {
	inner      Client
	maxRetries int
	backoff    []time.Duration
}

// NewRetryClient wraps inner with up to maxRetries extra attempts.
// When backoff is shorter than maxRetries its last entry is reused.
func NewRetryClient(inner Client, maxRetries int, backoff []time.Duration) *RetryClient {
	return &RetryClient{inner: inner, maxRetries: maxRetries, backoff: backoff}
}

// Complete calls the wrapped client, retrying transient failures
func (c *RetryClient) Complete(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, err := c.inner.Complete(ctx, prompt, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if attempt == c.maxRetries || !isRetryable(err) {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.wait(attempt)):
		}
	}
	return "", lastErr
}

// Close closes the wrapped client
func (c *RetryClient) Close() error {
	return c.inner.Close()
}

func (c *RetryClient) wait(attempt int) time.Duration {
	if len(c.backoff) == 0 {
		return 0
	}
	if attempt < len(c.backoff) {
		return c.backoff[attempt]
	}
	return c.backoff[len(c.backoff)-1]
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return isRateLimitError(err) || isServerError(err)
}

func isRateLimitError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "resource exhausted")
}

func isServerError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error") ||
		strings.Contains(errStr, "unavailable")
}
