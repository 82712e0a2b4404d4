package pgvector

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config describes how a pgvector store connects and which collection it serves.
//
// ConnectionString takes precedence over Connection. Both the plain
// "postgres://" form and the SQLAlchemy style "postgresql+psycopg2://" form
// are accepted.
type Config struct {
	ConnectionString  string            `yaml:"connection_string" koanf:"connection_string"`
	Connection        Connection        `yaml:"connection" koanf:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details" koanf:"connection_details"`

	// Collection is the name stored in langchain_pg_collection.
	Collection string `yaml:"collection" koanf:"collection"`
}

type Connection struct {
	Host     string `yaml:"host" koanf:"host"`
	Port     string `yaml:"port" koanf:"port"`
	User     string `yaml:"user" koanf:"user"`
	Password string `yaml:"password" koanf:"password"`
	DbName   string `yaml:"db_name" koanf:"db_name"`
	SSLMode  string `yaml:"ssl_mode" koanf:"ssl_mode"`
}

type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns" koanf:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" koanf:"conn_max_lifetime"`
}

const (
	defaultMaxOpenConns    = 50
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = time.Minute
)

// DefaultConfig returns a Config pointing at a local Postgres.
func DefaultConfig() *Config {
	return &Config{
		Connection: Connection{
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "disable",
		},
	}
}

// WithConnectionString sets the DSN.
func (c *Config) WithConnectionString(conn string) *Config {
	c.ConnectionString = conn
	return c
}

// WithCollection sets the collection name.
func (c *Config) WithCollection(name string) *Config {
	c.Collection = name
	return c
}

// WithPool sets the connection pool limits.
func (c *Config) WithPool(maxOpen, maxIdle int, lifetime time.Duration) *Config {
	c.ConnectionDetails = ConnectionDetails{MaxOpenConns: maxOpen, MaxIdleConns: maxIdle, ConnMaxLifetime: lifetime}
	return c
}

// ApplyDefaults fills zero pool settings.
func (c *Config) ApplyDefaults() {
	if c.ConnectionDetails.MaxOpenConns == 0 {
		c.ConnectionDetails.MaxOpenConns = defaultMaxOpenConns
	}
	if c.ConnectionDetails.MaxIdleConns == 0 {
		c.ConnectionDetails.MaxIdleConns = defaultMaxIdleConns
	}
	if c.ConnectionDetails.ConnMaxLifetime == 0 {
		c.ConnectionDetails.ConnMaxLifetime = defaultConnMaxLifetime
	}
}

// Validate checks that a store can be built from the config.
func (c *Config) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("[pgvector] collection name cannot be empty")
	}
	if c.ConnectionString == "" && c.Connection.Host == "" {
		return fmt.Errorf("[pgvector] connection string or host is required")
	}
	return nil
}

// DSN returns the connection string handed to the driver.
func (c *Config) DSN() (string, error) {
	if c.ConnectionString != "" {
		return NormalizeConnectionString(c.ConnectionString)
	}
	conn := c.Connection
	sslMode := conn.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		conn.Host, conn.Port, conn.User, conn.Password, conn.DbName, sslMode), nil
}

// NormalizeConnectionString rewrites SQLAlchemy style URLs such as
// "postgresql+asyncpg://u:p@h/db" to "postgresql://u:p@h/db". Key/value DSNs
// pass through unchanged.
func NormalizeConnectionString(conn string) (string, error) {
	if !strings.Contains(conn, "://") {
		return conn, nil
	}
	u, err := url.Parse(conn)
	if err != nil {
		return "", fmt.Errorf("[pgvector] invalid connection string: %w", err)
	}
	scheme, _, _ := strings.Cut(u.Scheme, "+")
	switch scheme {
	case "postgres", "postgresql":
	default:
		return "", fmt.Errorf("[pgvector] unsupported scheme %q", u.Scheme)
	}
	u.Scheme = scheme
	return u.String(), nil
}
