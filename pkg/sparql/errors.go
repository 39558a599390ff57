// Package sparql validates collection identifiers, builds the harvest
// queries, and executes them against a SPARQL endpoint with bounded
// exponential-backoff retry for transient upstream failures.
package sparql

import (
	"errors"
	"fmt"
)

// ValidationError reports a collection identifier that failed validation.
// It is always returned before any network or query activity.
type ValidationError struct {
	URI    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid collection URI %q: %s", e.URI, e.Reason)
}

// TransientError represents a temporary upstream failure that may succeed on
// retry, such as a 502 from a flaky intermediary proxy.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string { return e.err.Error() }

func (e *TransientError) Unwrap() error { return e.err }

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError represents a permanent failure that should not be retried.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string { return e.err.Error() }

func (e *FatalError) Unwrap() error { return e.err }

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient returns true if the error is transient and should be retried.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error is fatal and should not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
