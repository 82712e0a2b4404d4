package pgvector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// PoolStore is the "async" pgvector store. It talks to Postgres through a
// native pgx connection pool.
type PoolStore struct {
	*store
	pool *pgxpool.Pool
}

var _ vectordb.Store = (*PoolStore)(nil)

// NewPoolStore opens a pgxpool, pings it, creates the langchain tables if
// missing and registers cfg.Collection.
func NewPoolStore(ctx context.Context, cfg *Config, embedder vectordb.Embedder, opts ...Option) (*PoolStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("[pgvector] invalid connection string: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.ConnectionDetails.MaxOpenConns)
	poolCfg.MaxConnLifetime = cfg.ConnectionDetails.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("[pgvector] failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[pgvector] failed to connect to PostgreSQL: %w", err)
	}

	return NewPoolStoreFromPool(ctx, pool, cfg.Collection, embedder, opts...)
}

// NewPoolStoreFromPool builds the store on an existing pool. Close closes pool.
func NewPoolStoreFromPool(ctx context.Context, pool *pgxpool.Pool, collection string, embedder vectordb.Embedder, opts ...Option) (*PoolStore, error) {
	c := pgxConn{q: pool, pool: pool}
	s, err := newStore(ctx, c, "async", collection, embedder, opts...)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &PoolStore{store: s, pool: pool}, nil
}

// Pool returns the underlying pool.
func (p *PoolStore) Pool() *pgxpool.Pool {
	return p.pool
}

// pgxQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type pgxConn struct {
	q pgxQuerier
	// pool is nil inside a transaction.
	pool *pgxpool.Pool
}

func (c pgxConn) exec(ctx context.Context, query string, args ...any) error {
	_, err := c.q.Exec(ctx, numberPlaceholders(query), pgxArgs(args)...)
	return err
}

func (c pgxConn) query(ctx context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error {
	rows, err := c.q.Query(ctx, numberPlaceholders(query), pgxArgs(args)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (c pgxConn) transaction(ctx context.Context, fn func(tx conn) error) error {
	if c.pool == nil {
		return fn(c)
	}
	return pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		return fn(pgxConn{q: tx})
	})
}

func (c pgxConn) close() error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

func pgxArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if arr, ok := a.(textArray); ok {
			out[i] = []string(arr)
			continue
		}
		out[i] = a
	}
	return out
}
