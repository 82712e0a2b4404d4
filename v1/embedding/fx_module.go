package embedding

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// FXModule wires the embedding client into Fx.
//
// It expects a Config in the graph and provides:
//   - *Client
//   - vectordb.Embedder     (the same client)
//   - Lifecycle hook        (RegisterEmbeddingLifecycle)
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewClientWithDI,
		func(c *Client) vectordb.Embedder { return c },
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// ClientParams groups the dependencies of NewClientWithDI.
type ClientParams struct {
	fx.In

	Config   Config
	Logger   observability.Logger   `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI builds a Client from the Fx graph.
func NewClientWithDI(p ClientParams) (*Client, error) {
	return NewClient(p.Config, WithLogger(p.Logger), WithObserver(p.Observer))
}

// RegisterEmbeddingLifecycle releases idle connections on shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
