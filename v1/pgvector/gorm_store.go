package pgvector

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// GormStore is the "sync" pgvector store. It runs on a gorm.DB backed by a
// database/sql connection pool.
type GormStore struct {
	*store
	db *gorm.DB
}

var _ vectordb.Store = (*GormStore)(nil)

// NewGormStore connects with gorm, creates the langchain tables if missing
// and registers cfg.Collection.
func NewGormStore(ctx context.Context, cfg *Config, embedder vectordb.Embedder, opts ...Option) (*GormStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := openGorm(cfg)
	if err != nil {
		return nil, err
	}
	return NewGormStoreFromDB(ctx, db, cfg.Collection, embedder, opts...)
}

// NewGormStoreFromDB builds the store on an existing connection. Close
// closes db.
func NewGormStoreFromDB(ctx context.Context, db *gorm.DB, collection string, embedder vectordb.Embedder, opts ...Option) (*GormStore, error) {
	c := gormConn{db: db}
	s, err := newStore(ctx, c, "sync", collection, embedder, opts...)
	if err != nil {
		_ = c.close()
		return nil, err
	}
	return &GormStore{store: s, db: db}, nil
}

// DB returns the underlying gorm handle.
func (g *GormStore) DB() *gorm.DB {
	return g.db
}

// openGorm opens the connection and sizes its pool.
func openGorm(cfg *Config) (*gorm.DB, error) {
	cfg.ApplyDefaults()
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("[pgvector] failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("[pgvector] failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.ConnectionDetails.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.ConnectionDetails.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnectionDetails.ConnMaxLifetime)
	return db, nil
}

type gormConn struct {
	db *gorm.DB
}

func (c gormConn) exec(ctx context.Context, query string, args ...any) error {
	return c.db.WithContext(ctx).Exec(query, gormArgs(args)...).Error
}

func (c gormConn) query(ctx context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error {
	rows, err := c.db.WithContext(ctx).Raw(query, gormArgs(args)...).Rows()
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := each(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (c gormConn) transaction(ctx context.Context, fn func(tx conn) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormConn{db: tx})
	})
}

func (c gormConn) close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormArgs binds text arrays through pq.Array; gorm would otherwise expand a
// slice into a parenthesised list.
func gormArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if arr, ok := a.(textArray); ok {
			out[i] = pq.Array([]string(arr))
			continue
		}
		out[i] = a
	}
	return out
}
