package flowz

import (
	"context"
	"sync"
)

// Channel subscribes to the stream and exposes it in channel form. See
// streamChannel for the demand protocol.
func (p *Push[T]) Channel(ctx context.Context, prefetch int) <-chan Result[T] {
	return streamChannel[T](ctx, p, prefetch, p.name)
}

// Channel subscribes to the stream and exposes it in channel form. See
// streamChannel for the demand protocol.
func (g *Generate[S, T]) Channel(ctx context.Context, prefetch int) <-chan Result[T] {
	return streamChannel[T](ctx, g, prefetch, g.name)
}

// streamChannel adapts a demand-driven Stream to a Result channel, the form
// the rest of a channel-based pipeline consumes. prefetch values are
// requested up front and demand is replenished one-for-one as values are
// handed off, so channel reads become the consumer's request signal.
//
// The channel closes when the stream terminates; a terminal error arrives as
// the final Result before the close. Cancelling ctx cancels the subscription
// and closes the channel.
func streamChannel[T any](ctx context.Context, s Stream[T], prefetch int, name string) <-chan Result[T] {
	if prefetch <= 0 {
		prefetch = 1
	}
	cs := &chanSubscriber[T]{
		ctx:      ctx,
		out:      make(chan Result[T], prefetch),
		prefetch: int64(prefetch),
		name:     name,
		finished: make(chan struct{}),
	}

	// Subscribe synchronously runs the producer, so it gets its own
	// goroutine; the channel must be usable before the producer finishes.
	go s.Subscribe(cs)

	go func() {
		select {
		case <-ctx.Done():
			cs.shutdown()
		case <-cs.finished:
		}
	}()

	return cs.out
}

// chanSubscriber delivers into a channel. The mutex serializes deliveries
// against the ctx watcher's close, so a send never races the close.
type chanSubscriber[T any] struct {
	ctx      context.Context
	out      chan Result[T]
	prefetch int64
	name     string

	mu       sync.Mutex
	sub      Subscription
	closed   bool
	finished chan struct{}
}

func (c *chanSubscriber[T]) OnSubscribe(sub Subscription) {
	c.mu.Lock()
	c.sub = sub
	closed := c.closed
	c.mu.Unlock()
	if closed {
		// The watcher shut down before the subscription existed; withdraw
		// immediately so the emitter's resource is still released.
		sub.Cancel()
		return
	}
	sub.Request(c.prefetch)
}

func (c *chanSubscriber[T]) OnNext(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- NewSuccess(value):
		c.sub.Request(1)
	case <-c.ctx.Done():
		// The watcher will cancel and close; drop this value.
	}
}

func (c *chanSubscriber[T]) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	var zero T
	select {
	case c.out <- NewError(zero, err, c.name):
	case <-c.ctx.Done():
	}
	c.finish()
}

func (c *chanSubscriber[T]) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.finish()
}

// finish closes the output. Callers hold c.mu.
func (c *chanSubscriber[T]) finish() {
	c.closed = true
	close(c.out)
	close(c.finished)
}

// shutdown is the ctx-cancellation path: withdraw demand, then close.
func (c *chanSubscriber[T]) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.sub != nil {
		c.sub.Cancel()
	}
	c.finish()
}
