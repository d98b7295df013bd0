package flowz

import "sync/atomic"

// latestEmitter implements OverflowLatest: a single-cell holder overwritten
// by each undemanded value, so the consumer always catches up to the newest
// state and older unseen values are dropped. Terminal handling mirrors
// bufferEmitter with the queue collapsed to one slot.
type latestEmitter[T any] struct {
	baseEmitter[T]

	slot atomic.Pointer[T]

	err  error
	done atomic.Bool

	wip atomic.Int32
}

func (e *latestEmitter[T]) Next(value T) {
	if e.done.Load() || e.Cancelled() {
		return
	}
	if nilValue(value) {
		e.Error(ErrNilValue)
		return
	}
	e.slot.Store(&value)
	e.drain()
}

func (e *latestEmitter[T]) Error(err error) {
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

func (e *latestEmitter[T]) Complete() {
	if e.done.Load() || e.Cancelled() {
		return
	}
	e.done.Store(true)
	e.drain()
}

func (e *latestEmitter[T]) Request(n int64) {
	if n <= 0 {
		return
	}
	e.req.add(n)
	e.drain()
}

func (e *latestEmitter[T]) Cancel() {
	e.baseEmitter.Cancel()
	e.slot.Store(nil)
}

func (e *latestEmitter[T]) Serialize() Emitter[T] {
	return newSerialEmitter[T](e, e.hook)
}

func (e *latestEmitter[T]) drain() {
	if e.wip.Add(1) != 1 {
		return
	}
	missed := int32(1)
	for {
		r := e.req.get()
		var sent int64
		for sent != r {
			if e.Cancelled() {
				e.slot.Store(nil)
				return
			}
			d := e.done.Load()
			v := e.slot.Swap(nil)
			if v == nil {
				if d {
					e.terminate()
					return
				}
				break
			}
			e.down.OnNext(*v)
			sent++
		}
		if sent == r {
			if e.Cancelled() {
				e.slot.Store(nil)
				return
			}
			if e.done.Load() && e.slot.Load() == nil {
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

func (e *latestEmitter[T]) terminate() {
	if err := e.err; err != nil {
		e.tryError(err)
	} else {
		e.tryComplete()
	}
}
