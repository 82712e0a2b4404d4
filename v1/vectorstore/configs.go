package vectorstore

import (
	"github.com/Aleph-Alpha/rag-vectorstore/v1/mongo"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/pgvector"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/qdrant"
)

// Supported backend modes.
const (
	ModeSync       = "sync"
	ModeAsync      = "async"
	ModeAtlasMongo = "atlas-mongo"
	ModeQdrant     = "qdrant"
)

// Config selects and parameterizes a vector store backend.
//
// Mode, CollectionName, ConnectionString and SearchIndex are shared by every
// backend. The nested sections carry backend-specific tuning; their
// connection and collection fields are overwritten by the shared ones.
type Config struct {
	// Mode is one of "sync", "async", "atlas-mongo" or "qdrant".
	Mode string `yaml:"mode" koanf:"mode"`

	// CollectionName is the collection (or langchain collection row) to use.
	CollectionName string `yaml:"collection_name" koanf:"collection_name"`

	// ConnectionString is the backend URL. For Postgres the "+driver"
	// suffix of SQLAlchemy style URLs is accepted.
	ConnectionString string `yaml:"connection_string" koanf:"connection_string"`

	// SearchIndex names the Atlas Vector Search index (atlas-mongo only).
	SearchIndex string `yaml:"search_index" koanf:"search_index"`

	// Lenient wraps the store so failed enumerations and deletes are logged
	// and absorbed instead of returned.
	Lenient bool `yaml:"lenient" koanf:"lenient"`

	Qdrant   qdrant.Config              `yaml:"qdrant" koanf:"qdrant"`
	Mongo    mongo.Config               `yaml:"mongo" koanf:"mongo"`
	Postgres pgvector.ConnectionDetails `yaml:"postgres" koanf:"postgres"`
}

// DefaultConfig returns a lenient Qdrant configuration with backend defaults
// filled in.
func DefaultConfig() Config {
	return Config{
		Mode:     ModeQdrant,
		Lenient:  true,
		Qdrant:   *qdrant.DefaultConfig(),
		Mongo:    *mongo.DefaultConfig(),
		Postgres: pgvector.DefaultConfig().ConnectionDetails,
	}
}

// WithMode sets the backend mode.
func (c Config) WithMode(mode string) Config {
	c.Mode = mode
	return c
}

// WithCollection sets the collection name.
func (c Config) WithCollection(name string) Config {
	c.CollectionName = name
	return c
}

// WithConnectionString sets the backend URL.
func (c Config) WithConnectionString(conn string) Config {
	c.ConnectionString = conn
	return c
}

// WithSearchIndex sets the Atlas search index name.
func (c Config) WithSearchIndex(name string) Config {
	c.SearchIndex = name
	return c
}

// WithAPIKey sets the Qdrant API key.
func (c Config) WithAPIKey(key string) Config {
	c.Qdrant.APIKey = key
	return c
}

// WithLenient toggles the lenient wrapper.
func (c Config) WithLenient(enabled bool) Config {
	c.Lenient = enabled
	return c
}
