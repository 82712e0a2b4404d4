package embedding

import (
	"fmt"
	"time"
)

const (
	DefaultMaxRetries     = 3
	DefaultTimeoutSeconds = 30
	DefaultConcurrency    = 1
)

// Config holds the inference endpoint settings.
//
// Example (builder style):
//
//	cfg := embedding.DefaultConfig().
//	    WithEndpoint("https://tei.internal/embed").
//	    WithAPIToken(os.Getenv("EMBEDDINGS_API_TOKEN"))
type Config struct {
	// Endpoint is the full URL receiving POST {"inputs": text}.
	Endpoint string `yaml:"endpoint" koanf:"endpoint"`

	// APIToken is sent as "Authorization: Bearer <token>" when set.
	APIToken string `yaml:"api_token" koanf:"api_token"`

	// MaxRetries is the total number of attempts per text, rate-limited ones included.
	MaxRetries int `yaml:"max_retries" koanf:"max_retries"`

	// TimeoutSeconds bounds each individual attempt.
	TimeoutSeconds int `yaml:"timeout_seconds" koanf:"timeout_seconds"`

	// Concurrency bounds how many texts EmbedDocuments embeds in parallel.
	// 1 embeds strictly one after another.
	Concurrency int `yaml:"concurrency" koanf:"concurrency"`
}

// DefaultConfig returns a config with the default retry budget and timeout.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:     DefaultMaxRetries,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Concurrency:    DefaultConcurrency,
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("embedding: missing endpoint")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("embedding: max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("embedding: timeout_seconds must be at least 1, got %d", c.TimeoutSeconds)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("embedding: concurrency must be at least 1, got %d", c.Concurrency)
	}
	return nil
}

// Timeout returns the per-attempt timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) WithEndpoint(endpoint string) *Config {
	c.Endpoint = endpoint
	return c
}

func (c *Config) WithAPIToken(token string) *Config {
	c.APIToken = token
	return c
}

func (c *Config) WithMaxRetries(n int) *Config {
	c.MaxRetries = n
	return c
}

func (c *Config) WithTimeoutSeconds(n int) *Config {
	c.TimeoutSeconds = n
	return c
}

func (c *Config) WithConcurrency(n int) *Config {
	c.Concurrency = n
	return c
}
