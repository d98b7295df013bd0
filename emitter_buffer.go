package flowz

import (
	"sync"
	"sync/atomic"
)

// bufferEmitter implements OverflowBuffer: values emitted without demand wait
// in an unbounded FIFO queue and drain as requests arrive. A terminal signal
// is parked beside the queue and delivered once the queue has emptied, so no
// accepted value is lost to a fast completion.
//
// The drain loop uses a work-in-progress counter: whichever caller finds it
// at zero becomes the drainer and processes on behalf of everyone else, so
// Next, Request and Cancel never block each other.
type bufferEmitter[T any] struct {
	baseEmitter[T]

	mu    sync.Mutex
	queue []T

	err  error
	done atomic.Bool

	wip atomic.Int32
}

func (e *bufferEmitter[T]) Next(value T) {
	if e.done.Load() || e.Cancelled() {
		return
	}
	if nilValue(value) {
		e.Error(ErrNilValue)
		return
	}
	e.mu.Lock()
	e.queue = append(e.queue, value)
	e.mu.Unlock()
	e.drain()
}

func (e *bufferEmitter[T]) Error(err error) {
	if e.done.Load() || e.Cancelled() {
		if err == nil {
			err = ErrNilCause
		}
		e.hook(err)
		return
	}
	if err == nil {
		err = ErrNilCause
	}
	e.err = err
	e.done.Store(true)
	e.drain()
}

func (e *bufferEmitter[T]) Complete() {
	if e.done.Load() || e.Cancelled() {
		return
	}
	e.done.Store(true)
	e.drain()
}

func (e *bufferEmitter[T]) Request(n int64) {
	if n <= 0 {
		return
	}
	e.req.add(n)
	e.drain()
}

func (e *bufferEmitter[T]) Cancel() {
	e.baseEmitter.Cancel()
	e.clear()
}

func (e *bufferEmitter[T]) Serialize() Emitter[T] {
	return newSerialEmitter[T](e, e.hook)
}

func (e *bufferEmitter[T]) clear() {
	e.mu.Lock()
	e.queue = nil
	e.mu.Unlock()
}

// poll removes the queue head, reporting whether anything was queued.
func (e *bufferEmitter[T]) poll() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		var zero T
		return zero, false
	}
	v := e.queue[0]
	e.queue = e.queue[1:]
	return v, true
}

func (e *bufferEmitter[T]) empty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue) == 0
}

func (e *bufferEmitter[T]) drain() {
	if e.wip.Add(1) != 1 {
		return
	}
	missed := int32(1)
	for {
		r := e.req.get()
		var sent int64
		for sent != r {
			if e.Cancelled() {
				e.clear()
				return
			}
			d := e.done.Load()
			v, ok := e.poll()
			if !ok {
				if d {
					e.terminate()
					return
				}
				break
			}
			e.down.OnNext(v)
			sent++
		}
		if sent == r {
			if e.Cancelled() {
				e.clear()
				return
			}
			if e.done.Load() && e.empty() {
				e.terminate()
				return
			}
		}
		if sent != 0 {
			e.req.produced(sent)
		}
		missed = e.wip.Add(-missed)
		if missed == 0 {
			return
		}
	}
}

// terminate delivers the parked terminal signal. Only the drain loop calls
// this, after the queue has emptied.
func (e *bufferEmitter[T]) terminate() {
	if err := e.err; err != nil {
		e.tryError(err)
	} else {
		e.tryComplete()
	}
}
