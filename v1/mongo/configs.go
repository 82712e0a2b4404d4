package mongo

import (
	"fmt"
	"time"
)

const (
	DefaultTextKey      = "text"
	DefaultEmbeddingKey = "embedding"
	DefaultSearchIndex  = "vector_index"
	defaultCandidates   = 10
	defaultTimeout      = 10 * time.Second
	defaultDatabaseName = "rag"
)

// Config describes an Atlas collection used as a vector store.
type Config struct {
	// URI is the MongoDB connection string. The database named in its path
	// takes precedence over Database.
	URI        string `yaml:"uri" koanf:"uri"`
	Database   string `yaml:"database" koanf:"database"`
	Collection string `yaml:"collection" koanf:"collection"`

	// SearchIndex is the Atlas Vector Search index on EmbeddingKey.
	SearchIndex  string `yaml:"search_index" koanf:"search_index"`
	TextKey      string `yaml:"text_key" koanf:"text_key"`
	EmbeddingKey string `yaml:"embedding_key" koanf:"embedding_key"`

	// CandidatesFactor times k is passed as numCandidates.
	CandidatesFactor int           `yaml:"candidates_factor" koanf:"candidates_factor"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout" koanf:"connect_timeout"`
}

// DefaultConfig returns a Config with the langchain field names.
func DefaultConfig() *Config {
	return &Config{
		Database:         defaultDatabaseName,
		SearchIndex:      DefaultSearchIndex,
		TextKey:          DefaultTextKey,
		EmbeddingKey:     DefaultEmbeddingKey,
		CandidatesFactor: defaultCandidates,
		ConnectTimeout:   defaultTimeout,
	}
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.SearchIndex == "" {
		c.SearchIndex = d.SearchIndex
	}
	if c.TextKey == "" {
		c.TextKey = d.TextKey
	}
	if c.EmbeddingKey == "" {
		c.EmbeddingKey = d.EmbeddingKey
	}
	if c.CandidatesFactor <= 0 {
		c.CandidatesFactor = d.CandidatesFactor
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
}

// Validate checks the fields needed to connect.
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("[Mongo] connection URI cannot be empty")
	}
	if c.Collection == "" {
		return fmt.Errorf("[Mongo] collection name cannot be empty")
	}
	return nil
}

// WithURI sets the connection string.
func (c *Config) WithURI(uri string) *Config {
	c.URI = uri
	return c
}

// WithCollection sets the collection name.
func (c *Config) WithCollection(name string) *Config {
	c.Collection = name
	return c
}

// WithSearchIndex sets the Atlas Vector Search index name.
func (c *Config) WithSearchIndex(name string) *Config {
	c.SearchIndex = name
	return c
}
