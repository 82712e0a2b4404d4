package embedding

import (
	"context"
	"net/http"
	"time"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option customizes a Client.
type Option func(*Client)

// WithSleeper replaces the backoff sleep, e.g. with a recorder in tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

// WithBackoffUnit changes the base of the 2^attempt backoff. Default time.Second.
func WithBackoffUnit(d time.Duration) Option {
	return func(c *Client) { c.backoffUnit = d }
}

// WithHTTPClient replaces the default traced HTTP client. The client's own
// Timeout is kept as-is.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the logger receiving retry diagnostics.
func WithLogger(l observability.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the observer notified after every EmbedQuery call.
func WithObserver(o observability.Observer) Option {
	return func(c *Client) { c.observer = o }
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}
