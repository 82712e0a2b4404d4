package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config controls the level and identity of the logger.
type Config struct {
	// Level is one of debug, info, warning, error. Anything else means info.
	Level string `yaml:"level" koanf:"level"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" koanf:"service_name"`

	// EnableTracing adds trace_id and span_id to entries logged through the
	// *WithContext methods.
	EnableTracing bool `yaml:"enable_tracing" koanf:"enable_tracing"`
}

// DefaultConfig returns an info-level config for the given service.
func DefaultConfig(serviceName string) Config {
	return Config{
		Level:       Info,
		ServiceName: serviceName,
	}
}
