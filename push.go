package flowz

import "fmt"

// Overflow selects what happens to a value emitted while the consumer has no
// outstanding demand. The strategy set is closed; NewPush switches over it
// exhaustively when constructing the emitter.
type Overflow int

const (
	// OverflowBuffer queues undemanded values in an unbounded FIFO and
	// drains them as demand arrives. Nothing is lost; memory is unbounded.
	OverflowBuffer Overflow = iota

	// OverflowDrop discards undemanded values silently.
	OverflowDrop

	// OverflowLatest keeps only the most recent undemanded value,
	// overwriting older unseen ones.
	OverflowLatest

	// OverflowError terminates the stream with ErrMissingBackpressure on the
	// first undemanded value.
	OverflowError

	// OverflowNone forwards every value immediately, trusting the producer
	// to honor Requested itself. What happens when the consumer cannot
	// accept an unrequested value is the consumer's contract, not this
	// package's.
	OverflowNone
)

// String returns the strategy name.
func (o Overflow) String() string {
	switch o {
	case OverflowBuffer:
		return "buffer"
	case OverflowDrop:
		return "drop"
	case OverflowLatest:
		return "latest"
	case OverflowError:
		return "error"
	case OverflowNone:
		return "none"
	default:
		return fmt.Sprintf("overflow(%d)", int(o))
	}
}

// Push bridges a push-style producer into a demand-driven stream. Each
// subscriber gets a fresh Emitter configured with the stream's overflow
// strategy; the producer runs synchronously on the subscribing goroutine and
// may keep emitting from other goroutines afterwards (via Serialize).
type Push[T any] struct {
	producer Producer[T]
	strategy Overflow
	hook     Hook
	name     string
}

// NewPush creates a push-bridge stream. The producer is invoked once per
// subscriber; strategy governs values emitted ahead of demand.
//
// Example:
//
//	stream := flowz.NewPush(func(e flowz.Emitter[Event]) error {
//		id := listener.Register(func(ev Event) { e.Next(ev) })
//		e.SetCancel(func() { listener.Unregister(id) })
//		return nil
//	}, flowz.OverflowBuffer)
func NewPush[T any](producer Producer[T], strategy Overflow) *Push[T] {
	p := &Push[T]{
		producer: producer,
		strategy: strategy,
		name:     "push",
	}
	p.hook = LogHook(p.name)
	return p
}

// WithName sets a custom name for this stream, used by the default hook and
// by Channel error results.
func (p *Push[T]) WithName(name string) *Push[T] {
	p.name = name
	return p
}

// WithHook routes undeliverable errors to h instead of the default logging
// hook.
func (p *Push[T]) WithHook(h Hook) *Push[T] {
	p.hook = h
	return p
}

// Name returns the stream name.
func (p *Push[T]) Name() string {
	return p.name
}

// Subscribe runs the producer against a fresh emitter for sub. The emitter
// doubles as the subscription handed to OnSubscribe, so demand requested
// inside OnSubscribe is visible before the producer starts.
func (p *Push[T]) Subscribe(sub Subscriber[T]) {
	type emitterSubscription interface {
		Emitter[T]
		Subscription
	}

	var e emitterSubscription
	base := func() baseEmitter[T] { return baseEmitter[T]{down: sub, hook: p.hook} }
	switch p.strategy {
	case OverflowBuffer:
		e = &bufferEmitter[T]{baseEmitter: base()}
	case OverflowDrop:
		e = &overflowEmitter[T]{baseEmitter: base(), onOverflow: dropOverflow[T]}
	case OverflowLatest:
		e = &latestEmitter[T]{baseEmitter: base()}
	case OverflowError:
		e = &overflowEmitter[T]{baseEmitter: base(), onOverflow: errorOverflow[T]}
	case OverflowNone:
		e = &noneEmitter[T]{baseEmitter: base()}
	default:
		e = &bufferEmitter[T]{baseEmitter: base()}
	}

	sub.OnSubscribe(e)

	if err := p.producer(e); err != nil {
		// Producer failure is data: it becomes the stream's terminal error,
		// or a hook diversion if the stream already terminated.
		e.Error(err)
	}
}
