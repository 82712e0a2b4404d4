package vectorstore

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// FXModule provides the vectordb.Store selected by the Config in the graph
// and closes it when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    embedding.FXModule,
//	    vectorstore.FXModule,
//	    fx.Supply(vectorstore.DefaultConfig().WithCollection("documents")),
//	    fx.Supply(*embedding.DefaultConfig().WithEndpoint(url)),
//	)
var FXModule = fx.Module(
	"vectorstore",
	fx.Provide(NewStoreWithDI),
	fx.Invoke(RegisterStoreLifecycle),
)

// StoreParams groups the dependencies of NewStoreWithDI.
type StoreParams struct {
	fx.In

	Config   Config
	Embedder vectordb.Embedder
	Logger   observability.Logger   `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewStoreWithDI builds the store from the Fx graph.
func NewStoreWithDI(p StoreParams) (vectordb.Store, error) {
	return New(context.Background(), p.Config, p.Embedder, WithLogger(p.Logger), WithObserver(p.Observer))
}

// RegisterStoreLifecycle closes the store on shutdown.
func RegisterStoreLifecycle(lc fx.Lifecycle, store vectordb.Store) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close(ctx)
		},
	})
}
