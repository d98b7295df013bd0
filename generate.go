package flowz

import "sync/atomic"

// Outlet is the restricted emission surface handed to a generator step: at
// most one Next and at most one terminal signal per invocation. A second Next
// in the same step terminates the stream with ErrMultipleSignals.
type Outlet[T any] interface {
	Next(value T)
	Error(err error)
	Complete()
}

// StepFunc produces one item per unit of downstream demand. It receives the
// current state, emits through the outlet, and returns the state for the next
// step. A non-nil error return is equivalent to calling out.Error with it.
type StepFunc[S, T any] func(state S, out Outlet[T]) (S, error)

// Generate bridges a pull-style, state-threaded producer into a stream. The
// consumer drives it: each requested item triggers exactly one step, run
// synchronously on the requesting goroutine.
type Generate[S, T any] struct {
	initial func() (S, error)
	step    StepFunc[S, T]
	dispose func(S) error
	hook    Hook
	name    string
}

// NewGenerate creates a pull-bridge stream.
//
// initial produces the per-subscriber state before the first step; its error
// terminates the stream before any step runs. step runs once per demand unit.
// dispose runs exactly once with the last state on any terminal or cancel
// path; a nil dispose is allowed, and a dispose error is diverted to the
// Hook so it cannot mask the primary outcome.
//
// Example:
//
//	lines := flowz.NewGenerate(
//		func() (*bufio.Scanner, error) { return openScanner(path) },
//		func(sc *bufio.Scanner, out flowz.Outlet[string]) (*bufio.Scanner, error) {
//			if !sc.Scan() {
//				out.Complete()
//				return sc, sc.Err()
//			}
//			out.Next(sc.Text())
//			return sc, nil
//		},
//		func(sc *bufio.Scanner) error { return closeScanner(sc) },
//	)
func NewGenerate[S, T any](initial func() (S, error), step StepFunc[S, T], dispose func(S) error) *Generate[S, T] {
	g := &Generate[S, T]{
		initial: initial,
		step:    step,
		dispose: dispose,
		name:    "generate",
	}
	g.hook = LogHook(g.name)
	return g
}

// WithName sets a custom name for this stream.
func (g *Generate[S, T]) WithName(name string) *Generate[S, T] {
	g.name = name
	return g
}

// WithHook routes undeliverable errors to h instead of the default logging
// hook.
func (g *Generate[S, T]) WithHook(h Hook) *Generate[S, T] {
	g.hook = h
	return g
}

// Name returns the stream name.
func (g *Generate[S, T]) Name() string {
	return g.name
}

// Subscribe produces the initial state and hands sub its subscription. Steps
// run as the subscriber requests.
func (g *Generate[S, T]) Subscribe(sub Subscriber[T]) {
	state, err := g.initial()
	if err != nil {
		sub.OnSubscribe(emptySubscription{})
		sub.OnError(err)
		return
	}
	gs := &generateSub[S, T]{g: g, down: sub, state: state}
	sub.OnSubscribe(gs)
}

// emptySubscription satisfies subscribers of streams that failed before a
// real subscription existed.
type emptySubscription struct{}

func (emptySubscription) Request(int64) {}
func (emptySubscription) Cancel()       {}

// generateSub is one subscriber's generator run: the threaded state, the
// per-step signal flags and the demand counter that doubles as the loop
// ownership token. Whoever moves the counter off zero runs the step loop; a
// cancellation that finds the loop active leaves disposal to the looper.
type generateSub[S, T any] struct {
	g    *Generate[S, T]
	down Subscriber[T]

	state S

	// Per-step flags, touched only inside the step loop.
	hasNext    bool
	terminated bool

	req       demand
	cancelled atomic.Bool
	disposed  atomic.Bool
}

func (s *generateSub[S, T]) Request(n int64) {
	if n <= 0 {
		return
	}
	if s.req.add(n) != 0 {
		// Another goroutine owns the step loop; it will pick this up.
		return
	}
	s.loop(n)
}

func (s *generateSub[S, T]) Cancel() {
	s.cancelled.Store(true)
	// Bumping the counter from zero means no step loop is running; disposal
	// falls to us. Otherwise the active looper observes cancelled and
	// disposes.
	if s.req.add(1) == 0 {
		s.disposeState()
	}
}

// loop runs steps until demand is exhausted, the stream terminates or the
// consumer cancels. n is the demand observed when this goroutine took
// ownership of the counter.
func (s *generateSub[S, T]) loop(n int64) {
	var done int64
	for {
		for done != n {
			if s.cancelled.Load() {
				s.disposeState()
				return
			}

			s.hasNext = false
			next, err := s.g.step(s.state, s)
			if err != nil {
				// A failed step does not advance the state; the disposer sees
				// the state the step was given.
				s.Error(err)
			} else {
				s.state = next
			}
			if s.terminated {
				s.disposeState()
				return
			}
			if !s.hasNext {
				// A step that makes no progress would spin the loop forever;
				// treat it as a broken producer.
				s.Error(ErrEmptyStep)
				s.disposeState()
				return
			}
			done++
		}

		n = s.req.get()
		if n == Unbounded {
			continue
		}
		if done == n {
			n = s.req.debit(done)
			if n == 0 {
				return
			}
			done = 0
		}
	}
}

// Next, Error and Complete implement Outlet for the step callback.

func (s *generateSub[S, T]) Next(value T) {
	if s.terminated {
		return
	}
	if s.hasNext {
		s.Error(ErrMultipleSignals)
		return
	}
	if nilValue(value) {
		s.Error(ErrNilValue)
		return
	}
	s.hasNext = true
	s.down.OnNext(value)
}

func (s *generateSub[S, T]) Error(err error) {
	if err == nil {
		err = ErrNilCause
	}
	if s.terminated {
		s.g.hook(err)
		return
	}
	s.terminated = true
	s.down.OnError(err)
}

func (s *generateSub[S, T]) Complete() {
	if s.terminated {
		return
	}
	s.terminated = true
	s.down.OnComplete()
}

// disposeState runs the disposer exactly once with the last known state.
// Disposer failures are observability, not control flow: they go to the hook.
func (s *generateSub[S, T]) disposeState() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	if s.g.dispose == nil {
		return
	}
	if err := s.g.dispose(s.state); err != nil {
		s.g.hook(err)
	}
}
