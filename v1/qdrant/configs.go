package qdrant

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultGRPCPort is the gRPC port Qdrant listens on.
	DefaultGRPCPort = 6334
	// restPort is the REST port users often paste; the client speaks gRPC.
	restPort = 6333

	DefaultContentKey = "page_content"
	DefaultPageSize   = 100
)

// Config holds connection and behavior settings for the Qdrant client.
//
// Example (programmatic):
//
//	cfg := qdrant.DefaultConfig()
//	cfg.Host = "qdrant.internal"
//	cfg.APIKey = apiKey
//	cfg.Collection = "documents"
//
// Example (builder style):
//
//	cfg, err := qdrant.FromConnectionString("https://qdrant.internal:6333")
//	if err != nil {
//	    return err
//	}
//	cfg = cfg.WithAPIKey(apiKey).WithCollection("documents")
type Config struct {
	// Hostname of the Qdrant server, e.g. "localhost".
	Host string `yaml:"host" koanf:"host"`

	// gRPC port of the Qdrant server. Defaults to 6334.
	Port int `yaml:"port" koanf:"port"`

	// Optional authentication token for secured deployments.
	APIKey string `yaml:"api_key" koanf:"api_key"`

	// UseTLS enables transport security on the gRPC connection.
	UseTLS bool `yaml:"use_tls" koanf:"use_tls"`

	// Collection the adapter operates on.
	Collection string `yaml:"collection" koanf:"collection"`

	// ContentKey is the payload field holding the document text.
	ContentKey string `yaml:"content_key" koanf:"content_key"`

	// PageSize is the scroll page size used when enumerating the collection.
	PageSize int `yaml:"page_size" koanf:"page_size"`

	// Timeout bounds the health check performed on construction.
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`

	// SkipHealthCheck disables the connectivity check in NewQdrantClient.
	SkipHealthCheck bool `yaml:"skip_health_check" koanf:"skip_health_check"`

	// Whether to perform version compatibility checks between client and server.
	CheckCompatibility bool `yaml:"check_compatibility" koanf:"check_compatibility"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Host:       "localhost",
		Port:       DefaultGRPCPort,
		ContentKey: DefaultContentKey,
		PageSize:   DefaultPageSize,
		Timeout:    3 * time.Second,
	}
}

// FromConnectionString returns a default config pointed at conn, which is
// either a URL ("https://host:6333") or a bare "host:port". An https scheme
// turns TLS on. The REST port 6333 is mapped to the gRPC port 6334.
func FromConnectionString(conn string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.applyConnectionString(conn); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyConnectionString(conn string) error {
	conn = strings.TrimSpace(conn)
	if conn == "" {
		return fmt.Errorf("[Qdrant] empty connection string")
	}

	hostport := conn
	if strings.Contains(conn, "://") {
		u, err := url.Parse(conn)
		if err != nil {
			return fmt.Errorf("[Qdrant] invalid connection string %q: %w", conn, err)
		}
		switch u.Scheme {
		case "https", "grpcs":
			c.UseTLS = true
		case "http", "grpc":
			c.UseTLS = false
		default:
			return fmt.Errorf("[Qdrant] unsupported scheme %q", u.Scheme)
		}
		hostport = u.Host
	}

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		// no port given
		c.Host = strings.TrimSuffix(hostport, "/")
		c.Port = DefaultGRPCPort
		return nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("[Qdrant] invalid port %q: %w", portStr, err)
	}
	if port == restPort {
		port = DefaultGRPCPort
	}

	c.Host = host
	c.Port = port
	return nil
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = DefaultGRPCPort
	}
	if c.ContentKey == "" {
		c.ContentKey = DefaultContentKey
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
}

// Builder-style helpers
func (c *Config) WithAPIKey(key string) *Config {
	c.APIKey = key
	return c
}

func (c *Config) WithCollection(name string) *Config {
	c.Collection = name
	return c
}

func (c *Config) WithTLS(enabled bool) *Config {
	c.UseTLS = enabled
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithHealthCheck(enabled bool) *Config {
	c.SkipHealthCheck = !enabled
	return c
}

func (c *Config) WithCompatibilityCheck(enabled bool) *Config {
	c.CheckCompatibility = enabled
	return c
}
