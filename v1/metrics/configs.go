package metrics

// Default port for metrics server if none is specified.
const DefaultMetricsAddress = ":9090"

// Config defines the configuration structure for the Prometheus metrics server.
type Config struct {
	// Address is the listen address of the /metrics HTTP server, e.g. ":9090".
	Address string `yaml:"address" koanf:"address"`

	// EnableDefaultCollectors registers the Go runtime, process and build info
	// collectors alongside the vector store metrics.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" koanf:"enable_default_collectors"`

	// Namespace prefixes every metric name, e.g. "rag" gives
	// "rag_vectorstore_operations_total".
	Namespace string `yaml:"namespace" koanf:"namespace"`

	// ServiceName is attached to every metric as the constant "service" label.
	ServiceName string `yaml:"service_name" koanf:"service_name"`
}

// DefaultConfig returns a config listening on DefaultMetricsAddress.
func DefaultConfig(serviceName string) Config {
	return Config{
		Address:                 DefaultMetricsAddress,
		EnableDefaultCollectors: true,
		ServiceName:             serviceName,
	}
}
