package flowz

// SignalKind discriminates the three event variants exchanged between a
// producer and a consumer.
type SignalKind uint8

const (
	// KindNext carries a value.
	KindNext SignalKind = iota
	// KindError carries the terminal failure.
	KindError
	// KindComplete marks normal termination and carries nothing.
	KindComplete
)

// Signal is the unit event of a stream: Next(value), Error(cause) or
// Complete. Error and Complete are terminal - once either is delivered, no
// further signal of any kind follows.
type Signal[T any] struct {
	value T
	err   error
	kind  SignalKind
}

// Next creates a value-carrying signal.
func Next[T any](value T) Signal[T] {
	return Signal[T]{kind: KindNext, value: value}
}

// Fail creates a terminal error signal.
func Fail[T any](err error) Signal[T] {
	return Signal[T]{kind: KindError, err: err}
}

// Done creates the terminal completion signal.
func Done[T any]() Signal[T] {
	return Signal[T]{kind: KindComplete}
}

// Kind returns the signal variant.
func (s Signal[T]) Kind() SignalKind { return s.kind }

// Value returns the carried value. Meaningful only for KindNext signals.
func (s Signal[T]) Value() T { return s.value }

// Err returns the carried failure. Nil unless this is a KindError signal.
func (s Signal[T]) Err() error { return s.err }

// Terminal reports whether the signal ends the stream.
func (s Signal[T]) Terminal() bool { return s.kind != KindNext }
