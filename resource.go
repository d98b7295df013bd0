package flowz

import "sync/atomic"

// Resource is a release-once handle tied to the active lifetime of a
// subscription: a file, a ticker, a registration with some listener source.
// Release must be safe to call more than once; only the first call does work.
type Resource interface {
	// Release frees the resource. Idempotent.
	Release()

	// Released reports whether Release has run.
	Released() bool
}

// ReleaseFunc adapts a plain function into a Resource. The function runs at
// most once regardless of how many goroutines race Release.
func ReleaseFunc(fn func()) Resource {
	return &releaseFunc{fn: fn}
}

type releaseFunc struct {
	fn   func()
	done atomic.Bool
}

func (r *releaseFunc) Release() {
	if r.done.CompareAndSwap(false, true) && r.fn != nil {
		r.fn()
	}
}

func (r *releaseFunc) Released() bool {
	return r.done.Load()
}

// resourceBox wraps a Resource so the container can hold it in an
// atomic.Pointer alongside the released sentinel.
type resourceBox struct {
	r Resource
}

// releasedBox marks a container whose owner has reached a terminal or
// cancelled state. Anything stored afterwards is released immediately.
var releasedBox = new(resourceBox)

// resourceContainer owns at most one Resource on behalf of an emitter and
// guarantees exactly-once release no matter how termination and cancellation
// interleave. Lock-free: producer goroutines must never stall on a mutex held
// across a downstream call.
type resourceContainer struct {
	cur atomic.Pointer[resourceBox]
}

// set binds r, releasing whatever was bound before. If the container is
// already released, r is released immediately and set reports false.
func (c *resourceContainer) set(r Resource) bool {
	next := &resourceBox{r: r}
	for {
		old := c.cur.Load()
		if old == releasedBox {
			if r != nil {
				r.Release()
			}
			return false
		}
		if c.cur.CompareAndSwap(old, next) {
			if old != nil && old.r != nil {
				old.r.Release()
			}
			return true
		}
	}
}

// release transitions the container to its absorbing released state and
// releases the bound resource, if any. Idempotent.
func (c *resourceContainer) release() {
	old := c.cur.Swap(releasedBox)
	if old != nil && old != releasedBox && old.r != nil {
		old.r.Release()
	}
}
