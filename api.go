// Package flowz bridges imperative producer code into demand-driven streams.
//
// Hand-written producers such as polling loops and listener callbacks rarely
// speak a backpressure protocol. flowz supplies the adaptation layer:
// a producer publishes through an Emitter and the library reconciles its pace
// with what the consumer has actually requested.
//
// Two bridges are provided:
//
//   - NewPush wraps a push-style producer. The producer receives an Emitter
//     and calls Next/Error/Complete whenever it likes; an Overflow strategy
//     decides what happens to values the consumer has not yet requested.
//     Emitter.Serialize makes the handle safe for concurrent producer
//     goroutines.
//
//   - NewGenerate wraps a pull-style producer. A step callback is invoked
//     once per requested item, threading a state value from step to step and
//     emitting at most one value per invocation.
//
// Basic usage:
//
//	events := flowz.NewPush(func(e flowz.Emitter[int]) error {
//		for i := 0; i < 100; i++ {
//			if e.Cancelled() {
//				return nil
//			}
//			e.Next(i)
//		}
//		e.Complete()
//		return nil
//	}, flowz.OverflowBuffer)
//
//	for r := range events.Channel(ctx, 16) {
//		if r.IsError() {
//			log.Printf("stream failed: %v", r.Error())
//			break
//		}
//		process(r.Value())
//	}
//
// Streams execute synchronously on whichever goroutine calls into them; no
// scheduler is owned by this package and no operation blocks waiting for
// demand.
package flowz

import "math"

// Unbounded is the demand value that switches a subscription to unlimited
// mode. Requesting it (or overflowing past it) stops demand accounting.
const Unbounded = int64(math.MaxInt64)

// Subscriber is the consumer-side contract. A Stream delivers signals to a
// Subscriber strictly serially: OnNext any number of times, then at most one
// of OnError or OnComplete, and nothing afterwards.
type Subscriber[T any] interface {
	// OnSubscribe hands the subscriber its demand handle before any other
	// callback. No values flow until the subscriber requests them.
	OnSubscribe(Subscription)

	// OnNext delivers one value.
	OnNext(T)

	// OnError delivers the terminal failure. The stream is finished.
	OnError(error)

	// OnComplete signals normal termination. The stream is finished.
	OnComplete()
}

// Subscription is the consumer's side of the demand protocol.
type Subscription interface {
	// Request adds n to the available demand. Non-positive n is ignored.
	// Request(Unbounded) disables demand accounting for this subscription.
	Request(n int64)

	// Cancel withdraws interest. Signals already in flight may still arrive;
	// everything after the cancellation is dropped and any bound resource is
	// released exactly once.
	Cancel()
}

// Stream is a cold source: each Subscribe invocation runs the producer anew
// for that subscriber with its own demand accounting and resources.
type Stream[T any] interface {
	Subscribe(Subscriber[T])
}
