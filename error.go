package flowz

import (
	"errors"
	"fmt"
	"time"
)

// Contract-violation sentinels. Streams terminate with one of these when a
// producer breaks the emission protocol; match with errors.Is.
var (
	// ErrNilValue is the terminal error raised when a producer emits a nil
	// value. Nil is never propagated downstream as data.
	ErrNilValue = errors.New("flowz: Next called with nil value")

	// ErrNilCause is the terminal error raised when a producer signals
	// failure without supplying a cause.
	ErrNilCause = errors.New("flowz: Error called with nil cause")

	// ErrMissingBackpressure terminates a stream using OverflowError when a
	// value arrives while the consumer has no outstanding demand.
	ErrMissingBackpressure = errors.New("flowz: value emitted without downstream demand")

	// ErrMultipleSignals terminates a generator stream whose step callback
	// emitted more than one value in a single invocation.
	ErrMultipleSignals = errors.New("flowz: generator step emitted more than one value")

	// ErrEmptyStep terminates a generator stream whose step callback returned
	// without emitting any signal.
	ErrEmptyStep = errors.New("flowz: generator step emitted no signal")
)

// StreamError records a failure delivered through a Result, keeping the item
// that was in flight when the failure occurred.
//
//nolint:govet // fieldalignment: struct layout optimized for readability over memory
type StreamError[T any] struct {
	// Item is the value that was being delivered, if any.
	Item T

	// Err is the underlying failure.
	Err error

	// Source identifies the stream that produced the error.
	Source string

	// Timestamp records when the error occurred.
	Timestamp time.Time
}

// NewStreamError creates a StreamError with the current timestamp.
func NewStreamError[T any](item T, err error, source string) *StreamError[T] {
	return &StreamError[T]{
		Item:      item,
		Err:       err,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface.
func (se *StreamError[T]) Error() string {
	return fmt.Sprintf("StreamError[%s]: %v (time: %s)",
		se.Source, se.Err, se.Timestamp.Format(time.RFC3339))
}

// Unwrap returns the underlying error, enabling error wrapping chains.
func (se *StreamError[T]) Unwrap() error {
	return se.Err
}
