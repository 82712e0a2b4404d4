package vectordb

import (
	"context"
	"errors"
	"fmt"
)

// Reason classifies why a read enumeration or delete failed.
type Reason string

const (
	ReasonUnavailable Reason = "unavailable"
	ReasonTimeout     Reason = "timeout"
	ReasonRejected    Reason = "rejected"
	ReasonUnknown     Reason = "unknown"
)

// EnumerationError is returned by GetAllIDs, GetFilteredIDs, GetDocumentsByIDs
// and Delete when the backend call fails. It lets callers tell "no data"
// apart from "backend unreachable".
type EnumerationError struct {
	Op         string
	Collection string
	Reason     Reason
	Err        error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("vectordb: %s on collection %q failed (%s): %v", e.Op, e.Collection, e.Reason, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// NewEnumerationError wraps err. Context errors are classified here; any
// other error is classified by classify, which may be nil.
func NewEnumerationError(op, collection string, err error, classify func(error) Reason) *EnumerationError {
	reason := ReasonUnknown
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = ReasonTimeout
	case errors.Is(err, context.Canceled):
		reason = ReasonUnavailable
	case classify != nil:
		reason = classify(err)
	}
	return &EnumerationError{Op: op, Collection: collection, Reason: reason, Err: err}
}

// IsEnumerationError reports whether err wraps an *EnumerationError.
func IsEnumerationError(err error) bool {
	var e *EnumerationError
	return errors.As(err, &e)
}

// ReasonOf returns the Reason carried by err, or ReasonUnknown.
func ReasonOf(err error) Reason {
	var e *EnumerationError
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonUnknown
}
