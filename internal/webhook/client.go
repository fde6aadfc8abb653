// Package webhook is the resilient transport for the external n8n
// workflow endpoints. Every outbound call is a JSON POST with a bounded
// timeout, exponential-backoff retries on transient server failures, and
// a sentinel for disabled workflows (HTTP 404).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/medilens/patient-portal/internal/observability/metrics"
)

// ErrServiceDisabled reports a 404 from the workflow engine, which means
// the workflow is inactive rather than the request being wrong. Callers
// substitute their canned offline payload instead of retrying.
var ErrServiceDisabled = errors.New("webhook: workflow inactive")

// Config controls how the webhook client behaves.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.WebhookMetrics
}

// Client performs resilient JSON POSTs against workflow endpoints.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	metrics    *metrics.WebhookMetrics
}

// New creates a configured Client with sane defaults.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		timeout:    timeout,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
		metrics:    cfg.Metrics,
	}
}

// CallOption adjusts a single request.
type CallOption func(*callSettings)

type callSettings struct {
	maxRetries int
}

// WithMaxRetries overrides the retry bound for one call. Zero disables
// retries entirely (the lab relay sends exactly one attempt).
func WithMaxRetries(n int) CallOption {
	return func(s *callSettings) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// StatusError reports a non-2xx, non-404 response after retries ran out.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	detail := strings.TrimSpace(e.Body)
	if len(detail) > 200 {
		detail = detail[:200]
	}
	if detail != "" {
		return fmt.Sprintf("webhook: http status %d: %s", e.StatusCode, detail)
	}
	return fmt.Sprintf("webhook: http status %d", e.StatusCode)
}

// IsServerError reports whether err is a StatusError in the 5xx range.
func IsServerError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 500
}

// PostJSON sends payload to url and returns the raw response body.
// target is a short label used for logs and metrics.
//
// Transient failures (502/503/504 and transport errors other than a
// caller cancellation) are retried with exponential backoff starting at
// the configured base delay and doubling per attempt. A 404 returns
// ErrServiceDisabled without retrying.
func (c *Client) PostJSON(ctx context.Context, target, url string, payload any, opts ...CallOption) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("webhook: url required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("webhook: encode payload: %w", err)
	}

	settings := callSettings{maxRetries: c.maxRetries}
	for _, opt := range opts {
		opt(&settings)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := c.invoke(ctx, target, url, body, settings.maxRetries)
	c.metrics.ObserveLatency(target, time.Since(start).Seconds())
	if err != nil {
		c.metrics.ObserveRequest(target, outcomeFor(err))
		return nil, err
	}
	c.metrics.ObserveRequest(target, "ok")
	return data, nil
}

func (c *Client) invoke(ctx context.Context, target, url string, body []byte, maxRetries int) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("webhook: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt == maxRetries {
				return nil, fmt.Errorf("webhook: http error: %w", err)
			}
			lastErr = err
			c.metrics.ObserveRetry(target)
			c.logRetry(target, attempt, 0, err)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("webhook: read response: %w", readErr)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return data, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrServiceDisabled
		}

		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
		if attempt < maxRetries && retryableStatus(resp.StatusCode) {
			lastErr = statusErr
			c.metrics.ObserveRetry(target)
			c.logRetry(target, attempt, resp.StatusCode, statusErr)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		return nil, statusErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("webhook: request failed without response")
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(target string, attempt, status int, err error) {
	c.logger.Warn("webhook retry",
		"target", target,
		"attempt", attempt+1,
		"status", status,
		"error", err,
	)
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrServiceDisabled):
		return "disabled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
