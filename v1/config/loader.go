package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix marks the environment variables read by Load. A double
	// underscore separates nesting levels:
	//
	//	RAGSTORE_VECTORSTORE__QDRANT__API_KEY -> vectorstore.qdrant.api_key
	EnvPrefix = "RAGSTORE_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// legacyEnv maps the variable names used by earlier deployments to config
// keys. RAGSTORE_ variables take precedence over them.
var legacyEnv = map[string]string{
	"QDRANT_API_KEY":       "vectorstore.qdrant.api_key",
	"EMBEDDINGS_ENDPOINT":  "embedding.endpoint",
	"EMBEDDINGS_API_TOKEN": "embedding.api_token",
	"VECTOR_DB_TYPE":       "vectorstore.mode",
	"COLLECTION_NAME":      "vectorstore.collection_name",
	"ATLAS_SEARCH_INDEX":   "vectorstore.search_index",
	"DB_CONNECTION_STRING": "vectorstore.connection_string",
}

// Load builds the configuration from, lowest precedence first:
//  1. Default()
//  2. the YAML file at path, skipped when path is empty
//  3. legacy environment variables (QDRANT_API_KEY, VECTOR_DB_TYPE, ...)
//  4. RAGSTORE_ environment variables
//
// Defaults are then re-applied to fields left empty and the result is
// validated.
//
// Example:
//
//	cfg, err := config.Load(os.Getenv("RAGSTORE_CONFIG"))
//	if err != nil {
//	    return err
//	}
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	for name, key := range legacyEnv {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("failed to apply %s: %w", name, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps RAGSTORE_EMBEDDING__MAX_RETRIES to embedding.max_retries.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("config file %s is not a regular file", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
