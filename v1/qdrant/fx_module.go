package qdrant

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
)

// FXModule provides a *QdrantClient built from a *Config in the graph and
// closes it on shutdown. It is meant for services that administer
// collections; document access goes through the vectorstore factory.
var FXModule = fx.Module(
	"qdrant",
	fx.Provide(NewQdrantClientWithDI),
	fx.Invoke(RegisterQdrantLifecycle),
)

// QdrantParams groups the dependencies of NewQdrantClientWithDI.
type QdrantParams struct {
	fx.In

	Config *Config
	Logger observability.Logger `optional:"true"`
}

// NewQdrantClientWithDI builds the client from the Fx graph.
func NewQdrantClientWithDI(p QdrantParams) (*QdrantClient, error) {
	return NewQdrantClient(p.Config, p.Logger)
}

// RegisterQdrantLifecycle closes the client when the application stops.
func RegisterQdrantLifecycle(lc fx.Lifecycle, client *QdrantClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
