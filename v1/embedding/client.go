package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
)

// Client embeds text through a remote inference endpoint, absorbing rate
// limiting and transient failures with exponential backoff.
//
// It satisfies vectordb.Embedder and is safe for concurrent use.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	sleep       Sleeper
	backoffUnit time.Duration
	logger      observability.Logger
	observer    observability.Observer
}

// NewClient validates cfg and builds a client. Zero-valued retry, timeout and
// concurrency settings take their defaults.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		sleep:       sleepContext,
		backoffUnit: time.Second,
		logger:      observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// EmbedQuery embeds a single text. It blocks until the endpoint answers
// successfully or the retry budget is spent.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, attempts, err := c.embedOne(ctx, text)
	c.observeOperation("embed_query", time.Since(start), err, attempts)
	return vec, err
}

// EmbedDocuments embeds each text independently through EmbedQuery. The
// result order matches the input order. At most Config.Concurrency texts are
// in flight at once; the first failure cancels the rest.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			vec, err := c.EmbedQuery(gctx, text)
			if err != nil {
				return fmt.Errorf("embedding: text %d: %w", i, err)
			}
			out[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) observeOperation(operation string, duration time.Duration, err error, attempts int) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: "embedding",
		Operation: operation,
		Resource:  c.cfg.Endpoint,
		Duration:  duration,
		Error:     err,
		Size:      1,
		Metadata:  map[string]interface{}{"attempts": attempts},
	})
}
