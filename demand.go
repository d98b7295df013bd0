package flowz

import "sync/atomic"

// demand is a saturating request counter. It provides atomic operations for
// the consumer-owned demand protocol: additions cap at Unbounded instead of
// wrapping, and once Unbounded is reached the counter stops accounting.
type demand struct {
	n atomic.Int64
}

// add credits n units of demand and returns the demand available before the
// call. Saturates at Unbounded.
func (d *demand) add(n int64) int64 {
	for {
		cur := d.n.Load()
		if cur == Unbounded {
			return Unbounded
		}
		next := cur + n
		if next < 0 { // overflow past MaxInt64
			next = Unbounded
		}
		if d.n.CompareAndSwap(cur, next) {
			return cur
		}
	}
}

// produced debits n delivered items. No-op in unbounded mode.
func (d *demand) produced(n int64) {
	for {
		cur := d.n.Load()
		if cur == Unbounded {
			return
		}
		next := cur - n
		if next < 0 {
			// More delivered than requested; clamp rather than go negative.
			next = 0
		}
		if d.n.CompareAndSwap(cur, next) {
			return
		}
	}
}

// debit is produced with the remaining demand reported back, for callers
// that own a drain loop and decide whether to keep looping. Returns Unbounded
// unchanged when accounting is off.
func (d *demand) debit(n int64) int64 {
	for {
		cur := d.n.Load()
		if cur == Unbounded {
			return Unbounded
		}
		next := cur - n
		if next < 0 {
			next = 0
		}
		if d.n.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// get returns the currently available demand.
func (d *demand) get() int64 {
	return d.n.Load()
}
