package flowz

import (
	"sync"
	"sync/atomic"
)

// serialEmitter decorates an Emitter so that any number of producer
// goroutines can emit concurrently while the wrapped emitter still observes
// at most one in-flight signal at a time.
//
// Protocol: a work-in-progress counter elects a single drainer. A caller that
// finds the counter at zero emits directly and then drains whatever other
// goroutines queued meanwhile, in arrival order; every other caller enqueues
// its signal and returns without blocking. At most one terminal outcome is
// retained - when two terminals race, exactly one is delivered and a losing
// error is diverted to the Hook rather than silently lost. Once the drainer
// observes a pending error, still-queued values are discarded; a pending
// completion lets the queue finish draining first, so a goroutine that emits
// values and then completes never loses its own values.
//
// Signals submitted by one goroutine are delivered in submission order;
// interleaving with other goroutines happens only at drainer handoffs.
type serialEmitter[T any] struct {
	up   Emitter[T]
	hook Hook

	mu    sync.Mutex
	queue []T

	errv atomic.Pointer[errBox]
	done atomic.Bool

	wip atomic.Int32
}

type errBox struct {
	err error
}

func newSerialEmitter[T any](up Emitter[T], hook Hook) *serialEmitter[T] {
	return &serialEmitter[T]{up: up, hook: hook}
}

func (s *serialEmitter[T]) Next(value T) {
	if s.up.Cancelled() || s.done.Load() {
		return
	}
	if nilValue(value) {
		s.Error(ErrNilValue)
		return
	}
	if s.wip.CompareAndSwap(0, 1) {
		// Fast path: nothing else in flight, deliver directly.
		s.up.Next(value)
		if s.wip.Add(-1) == 0 {
			return
		}
	} else {
		s.mu.Lock()
		s.queue = append(s.queue, value)
		s.mu.Unlock()
		if s.wip.Add(1) != 1 {
			return
		}
	}
	s.drainLoop()
}

func (s *serialEmitter[T]) Error(err error) {
	if err == nil {
		err = ErrNilCause
	}
	if s.up.Cancelled() || s.done.Load() {
		s.hook(err)
		return
	}
	if !s.errv.CompareAndSwap(nil, &errBox{err: err}) {
		// Lost the terminal race; the payload must not vanish silently.
		s.hook(err)
		return
	}
	s.done.Store(true)
	s.drain()
}

func (s *serialEmitter[T]) Complete() {
	if s.up.Cancelled() || s.done.Load() {
		return
	}
	s.done.Store(true)
	s.drain()
}

func (s *serialEmitter[T]) SetResource(r Resource) {
	s.up.SetResource(r)
}

func (s *serialEmitter[T]) SetCancel(fn func()) {
	s.up.SetCancel(fn)
}

func (s *serialEmitter[T]) Cancelled() bool {
	return s.up.Cancelled()
}

func (s *serialEmitter[T]) Requested() int64 {
	return s.up.Requested()
}

// Serialize on an already-serialized emitter is idempotent.
func (s *serialEmitter[T]) Serialize() Emitter[T] {
	return s
}

func (s *serialEmitter[T]) drain() {
	if s.wip.Add(1) == 1 {
		s.drainLoop()
	}
}

func (s *serialEmitter[T]) clear() {
	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
}

// poll removes the queue head, reporting whether anything was queued.
func (s *serialEmitter[T]) poll() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		var zero T
		return zero, false
	}
	v := s.queue[0]
	s.queue = s.queue[1:]
	return v, true
}

func (s *serialEmitter[T]) drainLoop() {
	missed := int32(1)
	for {
		for {
			if s.up.Cancelled() {
				s.clear()
				return
			}
			if eb := s.errv.Load(); eb != nil {
				// A pending error beats anything still queued.
				s.clear()
				s.up.Error(eb.err)
				return
			}
			d := s.done.Load()
			v, ok := s.poll()
			if !ok {
				if d {
					s.up.Complete()
					return
				}
				break
			}
			s.up.Next(v)
		}
		missed = s.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}
