// Package streamtest provides a recording subscriber for exercising flowz
// streams in tests.
package streamtest

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/flowz"
)

// Recorder is a Subscriber that records everything it observes: values in
// arrival order, terminal errors and completions. It requests Unbounded
// demand on subscription unless configured otherwise, and is safe to inspect
// from the test goroutine while a stream is still emitting.
type Recorder[T any] struct {
	clock   flowz.Clock
	initial int64

	mu        sync.Mutex
	sub       flowz.Subscription
	signals   []flowz.Signal[T]
	values    []T
	errs      []error
	completes int
	done      chan struct{}
}

// NewRecorder creates a Recorder that requests Unbounded demand as soon as it
// is subscribed. Uses the provided clock for await deadlines - RealClock for
// production-like tests, fake clock for deterministic ones.
func NewRecorder[T any](clock flowz.Clock) *Recorder[T] {
	return &Recorder[T]{
		clock:   clock,
		initial: flowz.Unbounded,
		done:    make(chan struct{}),
	}
}

// WithRequest overrides the demand requested at subscription time. Zero means
// request nothing; drive demand manually through Request.
func (r *Recorder[T]) WithRequest(n int64) *Recorder[T] {
	r.initial = n
	return r
}

// OnSubscribe implements flowz.Subscriber.
func (r *Recorder[T]) OnSubscribe(sub flowz.Subscription) {
	r.mu.Lock()
	r.sub = sub
	r.mu.Unlock()
	if r.initial > 0 {
		sub.Request(r.initial)
	}
}

// OnNext implements flowz.Subscriber.
func (r *Recorder[T]) OnNext(value T) {
	r.mu.Lock()
	r.signals = append(r.signals, flowz.Next(value))
	r.values = append(r.values, value)
	r.mu.Unlock()
}

// OnError implements flowz.Subscriber. Extra terminals are recorded rather
// than panicking, so tests can assert on protocol violations.
func (r *Recorder[T]) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, flowz.Fail[T](err))
	r.errs = append(r.errs, err)
	if len(r.errs)+r.completes == 1 {
		close(r.done)
	}
}

// OnComplete implements flowz.Subscriber.
func (r *Recorder[T]) OnComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, flowz.Done[T]())
	r.completes++
	if len(r.errs)+r.completes == 1 {
		close(r.done)
	}
}

// Request forwards demand to the subscription.
func (r *Recorder[T]) Request(n int64) {
	r.mu.Lock()
	sub := r.sub
	r.mu.Unlock()
	if sub != nil {
		sub.Request(n)
	}
}

// Cancel cancels the subscription.
func (r *Recorder[T]) Cancel() {
	r.mu.Lock()
	sub := r.sub
	r.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// AwaitDone blocks until a terminal signal arrives or the deadline passes,
// reporting whether the stream terminated.
func (r *Recorder[T]) AwaitDone(timeout time.Duration) bool {
	select {
	case <-r.done:
		return true
	case <-r.clock.After(timeout):
		return false
	}
}

// Signals returns a copy of every signal observed, in arrival order. Where
// Values, Errors and Completions answer "what", Signals answers "in what
// order" across the three variants.
func (r *Recorder[T]) Signals() []flowz.Signal[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]flowz.Signal[T], len(r.signals))
	copy(out, r.signals)
	return out
}

// Values returns a copy of the recorded values.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Errors returns a copy of the recorded terminal errors.
func (r *Recorder[T]) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

// Completions returns how many times OnComplete was observed.
func (r *Recorder[T]) Completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completes
}

// AssertValues fails the test unless the recorded values equal expected.
func AssertValues[T comparable](t *testing.T, r *Recorder[T], expected ...T) {
	t.Helper()

	got := r.Values()
	if len(got) != len(expected) {
		t.Errorf("expected %d values %v, got %d values %v", len(expected), expected, len(got), got)
		return
	}
	for i, v := range expected {
		if got[i] != v {
			t.Errorf("value %d: expected %v, got %v", i, v, got[i])
		}
	}
}

// AssertComplete fails the test unless exactly one completion and no errors
// were observed.
func AssertComplete[T any](t *testing.T, r *Recorder[T]) {
	t.Helper()

	if n := r.Completions(); n != 1 {
		t.Errorf("expected exactly one completion, got %d", n)
	}
	if errs := r.Errors(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

// AssertError fails the test unless exactly one terminal error matching
// target (per errors.Is) and no completion were observed.
func AssertError[T any](t *testing.T, r *Recorder[T], target error) {
	t.Helper()

	errs := r.Errors()
	if len(errs) != 1 {
		t.Errorf("expected exactly one error, got %d: %v", len(errs), errs)
		return
	}
	if !errors.Is(errs[0], target) {
		t.Errorf("expected error %v, got %v", target, errs[0])
	}
	if n := r.Completions(); n != 0 {
		t.Errorf("expected no completion alongside error, got %d", n)
	}
}

// AssertNotTerminated fails the test if any terminal signal was observed.
func AssertNotTerminated[T any](t *testing.T, r *Recorder[T]) {
	t.Helper()

	if errs := r.Errors(); len(errs) != 0 {
		t.Errorf("expected no terminal signal, got errors %v", errs)
	}
	if n := r.Completions(); n != 0 {
		t.Errorf("expected no terminal signal, got %d completions", n)
	}
}
