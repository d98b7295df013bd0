package flowz

import (
	"reflect"
	"sync/atomic"
)

// Emitter is the producer-facing handle of a push stream. The producer calls
// Next any number of times and at most one of Error or Complete; everything
// after a terminal signal or a consumer cancellation is a no-op, except that
// stray errors are diverted to the stream's Hook.
//
// A raw Emitter is not safe for concurrent use from multiple goroutines.
// Producers that emit from more than one goroutine must go through Serialize
// first.
type Emitter[T any] interface {
	// Next publishes a value. Emitting nil terminates the stream with
	// ErrNilValue instead of propagating nil downstream. Silent no-op once
	// the emitter is terminal or cancelled.
	Next(value T)

	// Error terminates the stream with err. A nil err terminates with
	// ErrNilCause instead. If the stream is already terminal the error is
	// diverted to the Hook, never delivered twice and never dropped.
	Error(err error)

	// Complete terminates the stream normally. At most one terminal signal
	// is ever delivered; later calls are no-ops.
	Complete()

	// SetResource binds a resource released exactly once when the stream
	// terminates or is cancelled. Binding onto an already-finished emitter
	// releases the resource immediately. Binding over a live resource
	// releases the previous one.
	SetResource(r Resource)

	// SetCancel is SetResource for a plain function.
	SetCancel(fn func())

	// Cancelled reports whether the consumer side is gone - either it
	// cancelled the subscription or a terminal signal was already delivered.
	// Long-running producers poll this for early exit.
	Cancelled() bool

	// Requested returns the currently available downstream demand.
	Requested() int64

	// Serialize returns a view of this emitter that is safe for concurrent
	// use. Serializing an already-serialized emitter returns it unchanged.
	Serialize() Emitter[T]
}

// Producer is invoked once per subscriber with a fresh emitter. A non-nil
// return value terminates the stream with that error, unless the producer
// already terminated it, in which case the error goes to the Hook. The
// producer may hand the emitter to other goroutines (serialized) and return
// immediately.
type Producer[T any] func(Emitter[T]) error

// Emitter lifecycle states.
const (
	stateActive int32 = iota
	stateTerminated
	stateCancelled
)

// nilValue reports whether a value is nil in the sense the emission contract
// forbids. Zero values of concrete types (0, "", struct{}{}) are legitimate
// data; nil interfaces, pointers, maps, slices, funcs and channels are not.
func nilValue[T any](v T) bool {
	a := any(v)
	if a == nil {
		return true
	}
	rv := reflect.ValueOf(a)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// baseEmitter carries the machinery shared by every overflow strategy:
// lifecycle state, demand accounting, the bound resource and the hook for
// undeliverable errors. Concrete emitters supply Next.
type baseEmitter[T any] struct {
	down  Subscriber[T]
	hook  Hook
	req   demand
	res   resourceContainer
	state atomic.Int32
}

// tryError delivers err downstream if this is the first terminal transition.
// The bound resource is released via defer so a panicking downstream handler
// cannot skip it.
func (b *baseEmitter[T]) tryError(err error) bool {
	if b.state.CompareAndSwap(stateActive, stateTerminated) {
		defer b.res.release()
		b.down.OnError(err)
		return true
	}
	return false
}

// tryComplete is tryError for normal termination.
func (b *baseEmitter[T]) tryComplete() bool {
	if b.state.CompareAndSwap(stateActive, stateTerminated) {
		defer b.res.release()
		b.down.OnComplete()
		return true
	}
	return false
}

func (b *baseEmitter[T]) Error(err error) {
	if err == nil {
		err = ErrNilCause
	}
	if !b.tryError(err) {
		b.hook(err)
	}
}

func (b *baseEmitter[T]) Complete() {
	b.tryComplete()
}

func (b *baseEmitter[T]) SetResource(r Resource) {
	b.res.set(r)
}

func (b *baseEmitter[T]) SetCancel(fn func()) {
	b.res.set(ReleaseFunc(fn))
}

func (b *baseEmitter[T]) Cancelled() bool {
	return b.state.Load() != stateActive
}

func (b *baseEmitter[T]) Requested() int64 {
	return b.req.get()
}

// Request implements Subscription. Strategies with a pending queue override
// this to drain after crediting demand.
func (b *baseEmitter[T]) Request(n int64) {
	if n <= 0 {
		return
	}
	b.req.add(n)
}

// Cancel implements Subscription. First transition wins against a racing
// terminal; the resource is released by whichever side got there.
func (b *baseEmitter[T]) Cancel() {
	if b.state.CompareAndSwap(stateActive, stateCancelled) {
		b.res.release()
	}
}

// noneEmitter trusts the producer to self-limit: values are forwarded
// regardless of demand and the counter is debited when demand exists, so
// Requested stays meaningful for producers that do look at it.
type noneEmitter[T any] struct {
	baseEmitter[T]
}

func (e *noneEmitter[T]) Next(value T) {
	if e.Cancelled() {
		return
	}
	if nilValue(value) {
		e.Error(ErrNilValue)
		return
	}
	e.down.OnNext(value)
	e.req.produced(1)
}

func (e *noneEmitter[T]) Serialize() Emitter[T] {
	return newSerialEmitter[T](e, e.hook)
}

// overflowEmitter forwards while demand is available and invokes the
// strategy's overflow behavior otherwise. Drop discards silently; Error
// terminates with ErrMissingBackpressure.
type overflowEmitter[T any] struct {
	baseEmitter[T]
	onOverflow func(e *overflowEmitter[T])
}

func (e *overflowEmitter[T]) Next(value T) {
	if e.Cancelled() {
		return
	}
	if nilValue(value) {
		e.Error(ErrNilValue)
		return
	}
	if e.req.get() > 0 {
		e.down.OnNext(value)
		e.req.produced(1)
	} else {
		e.onOverflow(e)
	}
}

func (e *overflowEmitter[T]) Serialize() Emitter[T] {
	return newSerialEmitter[T](e, e.hook)
}

func dropOverflow[T any](*overflowEmitter[T]) {}

func errorOverflow[T any](e *overflowEmitter[T]) {
	e.Error(ErrMissingBackpressure)
}
