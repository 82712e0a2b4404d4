// Package main implements the ragstore CLI for manual operations against a
// configured vector store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/config"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/embedding"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/logger"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/metrics"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/tracer"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectorstore"
)

// version is set at build time
var version = "dev"

func main() {
	if err := newRootCmd(openStoreFx).Execute(); err != nil {
		os.Exit(1)
	}
}

// session is what a subcommand runs against.
type session struct {
	store vectordb.Store
	// tracer and log are nil when the command runs without them
	tracer *tracer.Tracer
	log    *logger.LoggerClient
	stop   func(context.Context) error
}

// opener builds the session for a command.
type opener func(ctx context.Context, opts globalOptions) (*session, error)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath   string
	serveMetrics bool
	timeout      time.Duration
}

type cli struct {
	opts globalOptions
	open opener
}

func newRootCmd(open opener) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:   "ragstore",
		Short: "Inspect and edit a RAG vector store",
		Long: `ragstore runs document operations against the vector store selected by
the configuration (sync, async, atlas-mongo or qdrant).

Configuration is read from --config and RAGSTORE_ environment variables,
e.g. RAGSTORE_VECTORSTORE__MODE=qdrant.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.opts.configPath, "config", os.Getenv("RAGSTORE_CONFIG_FILE"), "YAML config file")
	root.PersistentFlags().BoolVar(&c.opts.serveMetrics, "metrics", false, "serve Prometheus metrics while running")
	root.PersistentFlags().DurationVar(&c.opts.timeout, "timeout", time.Minute, "overall timeout")

	root.AddCommand(
		c.idsCmd(),
		c.getCmd(),
		c.deleteCmd(),
		c.addCmd(),
		c.searchCmd(),
	)
	return root
}

// openStoreFx loads the configuration and starts an Fx application holding
// the logger, tracer, embedding client and store.
func openStoreFx(ctx context.Context, opts globalOptions) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	modules := []fx.Option{
		fx.NopLogger,
		fx.Supply(cfg.Logger, cfg.Tracer, cfg.Embedding, cfg.VectorStore),
		logger.FXModule,
		tracer.FXModule,
		embedding.FXModule,
		vectorstore.FXModule,
	}
	if opts.serveMetrics {
		modules = append(modules, fx.Supply(cfg.Metrics), metrics.FXModule)
	}

	s := &session{}
	app := fx.New(append(modules, fx.Populate(&s.store, &s.tracer, &s.log))...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	s.stop = app.Stop
	return s, nil
}

// withStore runs fn against a freshly opened store inside a
// "ragstore.<command>" span and shuts everything down afterwards.
func (c *cli) withStore(cmd *cobra.Command, fn func(ctx context.Context, store vectordb.Store) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.opts.timeout)
	defer cancel()

	s, err := c.open(ctx, c.opts)
	if err != nil {
		return err
	}

	runErr := s.run(ctx, "ragstore."+cmd.Name(), fn)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := s.stop(stopCtx); err != nil && runErr == nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return runErr
}

func (s *session) run(ctx context.Context, name string, fn func(ctx context.Context, store vectordb.Store) error) error {
	if s.tracer == nil {
		return fn(ctx, s.store)
	}
	ctx, span := s.tracer.StartSpan(ctx, name)
	defer span.End()
	s.tracer.SetAttributes(span, map[string]interface{}{"command": name})

	err := fn(ctx, s.store)
	s.tracer.RecordErrorOnSpan(span, err)
	if s.log != nil {
		fields := map[string]interface{}{"command": name}
		if err != nil {
			s.log.ErrorWithContext(ctx, "command failed", err, fields)
		} else {
			s.log.InfoWithContext(ctx, "command finished", nil, fields)
		}
	}
	return err
}
