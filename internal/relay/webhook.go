package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Sink delivers messages.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg Message) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

const (
	// DefaultRate is the sustained webhook rate, per second. Discord allows
	// roughly 5 requests per 2 seconds per webhook.
	DefaultRate = 2.5

	// DefaultBurst is the number of messages sent back to back before the
	// rate applies.
	DefaultBurst = 5

	// maxRetryAfter caps how long a 429 response may stall the sink.
	maxRetryAfter = 30 * time.Second
)

// ErrEmptyURL is returned by NewWebhook for an empty URL.
var ErrEmptyURL = errors.New("webhook URL is empty")

// StatusError is a non-2xx webhook response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned %d: %s", e.StatusCode, e.Body)
}

// Webhook posts messages as JSON to a webhook URL, throttled by a token
// bucket.
type Webhook struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithHTTPClient sets the HTTP client. Default: a client with a 10s timeout.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) {
		if c != nil {
			w.client = c
		}
	}
}

// WithRate sets the sustained rate (messages per second) and burst.
func WithRate(perSecond float64, burst int) WebhookOption {
	return func(w *Webhook) {
		w.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewWebhook returns a sink posting to url.
func NewWebhook(url string, opts ...WebhookOption) (*Webhook, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	w := &Webhook{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(DefaultRate, DefaultBurst),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Send posts msg, waiting for the rate limiter first. A 429 response is
// retried once after the delay the server asks for.
func (w *Webhook) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding webhook message: %w", err)
	}

	for attempt := 0; ; attempt++ {
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}

		retryAfter, err := w.post(ctx, body)
		if err == nil {
			return nil
		}
		var se *StatusError
		if attempt > 0 || !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
			return err
		}

		timer := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (w *Webhook) post(ctx context.Context, body []byte) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return parseRetryAfter(resp.Header.Get("Retry-After")), &StatusError{
		StatusCode: resp.StatusCode,
		Body:       string(snippet),
	}
}

// parseRetryAfter reads a Retry-After header in (possibly fractional)
// seconds, defaulting to one second.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs <= 0 {
		return time.Second
	}
	return min(time.Duration(secs*float64(time.Second)), maxRetryAfter)
}
