package embedding

import (
	"errors"
	"fmt"
)

var (
	// ErrExhaustedRetries is returned when the retry loop ends without a result,
	// e.g. when the final attempt was rate limited.
	ErrExhaustedRetries = errors.New("embedding: failed to get embedding after max retries")

	// ErrUnexpectedResponse is returned when a 200 body has none of the accepted shapes.
	ErrUnexpectedResponse = errors.New("embedding: unexpected response shape")
)

// EndpointError is returned when the endpoint answered with a non-200,
// non-429 status on the final attempt.
type EndpointError struct {
	StatusCode int
	Body       string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("embedding: endpoint error: status %d: %s", e.StatusCode, e.Body)
}

// TransportError is returned when the final attempt failed before a response
// arrived (connection refused, timeout, reset).
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("embedding: failed to get embedding after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsEndpointError reports whether err wraps an *EndpointError.
func IsEndpointError(err error) bool {
	var e *EndpointError
	return errors.As(err, &e)
}

// IsTransportError reports whether err wraps a *TransportError.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsExhaustedRetries reports whether err is ErrExhaustedRetries.
func IsExhaustedRetries(err error) bool {
	return errors.Is(err, ErrExhaustedRetries)
}
