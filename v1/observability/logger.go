package observability

// Logger is the logging contract consumed across the module.
// *logger.LoggerClient satisfies it.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Info(string, error, ...map[string]interface{})  {}
func (NopLogger) Debug(string, error, ...map[string]interface{}) {}
func (NopLogger) Warn(string, error, ...map[string]interface{})  {}
func (NopLogger) Error(string, error, ...map[string]interface{}) {}
