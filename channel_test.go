package flowz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/flowz"
)

func TestChannelDeliversAndCloses(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		for i := 1; i <= 10; i++ {
			e.Next(i)
		}
		e.Complete()
		return nil
	}, flowz.OverflowBuffer)

	var got []int
	for result := range stream.Channel(context.Background(), 4) {
		if result.IsError() {
			t.Fatalf("unexpected error result: %v", result.Error())
		}
		got = append(got, result.Value())
	}

	if len(got) != 10 {
		t.Fatalf("expected 10 values, got %d: %v", len(got), got)
	}
	for i, v := range got {
		if v != i+1 {
			t.Errorf("value %d: expected %d, got %d", i, i+1, v)
		}
	}
}

func TestChannelErrorIsFinalResult(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.Next(1)
		e.Next(2)
		e.Error(errBoom)
		return nil
	}, flowz.OverflowBuffer).WithName("sensor-feed")

	var results []flowz.Result[int]
	for result := range stream.Channel(context.Background(), 2) {
		results = append(results, result)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 0; i < 2; i++ {
		if results[i].IsError() {
			t.Errorf("result %d: unexpected error %v", i, results[i].Error())
		}
	}
	last := results[2]
	if !last.IsError() {
		t.Fatal("expected final result to carry the terminal error")
	}
	if !errors.Is(last.Error(), errBoom) {
		t.Errorf("expected error %v, got %v", errBoom, last.Error())
	}
	if src := last.Error().Source; src != "sensor-feed" {
		t.Errorf("expected source %q, got %q", "sensor-feed", src)
	}
}

func TestChannelEmptyStream(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.Complete()
		return nil
	}, flowz.OverflowDrop)

	ch := stream.Channel(context.Background(), 1)
	select {
	case result, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel, got result %v", result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed")
	}
}

func TestChannelContextCancelStopsGenerator(t *testing.T) {
	disposed := make(chan int, 1)

	stream := flowz.NewGenerate(
		func() (int, error) { return 0, nil },
		func(s int, out flowz.Outlet[int]) (int, error) {
			out.Next(s)
			return s + 1, nil
		},
		func(s int) error {
			disposed <- s
			return nil
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	ch := stream.Channel(ctx, 2)

	// Drain a few values, then withdraw.
	for i := 0; i < 3; i++ {
		select {
		case result := <-ch:
			if result.IsError() {
				t.Fatalf("unexpected error result: %v", result.Error())
			}
		case <-time.After(2 * time.Second):
			t.Fatal("generator produced nothing")
		}
	}
	cancel()

	select {
	case <-disposed:
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation never reached the disposer")
	}

	// The channel must close once the watcher shuts the subscriber down.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel never closed after ctx cancellation")
		}
	}
}

func TestChannelContextCancelReleasesPushResource(t *testing.T) {
	released := make(chan struct{})
	blocked := make(chan struct{})

	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.SetCancel(func() { close(released) })
		go func() {
			for i := 0; !e.Cancelled(); i++ {
				e.Next(i)
			}
			close(blocked)
		}()
		return nil
	}, flowz.OverflowLatest)

	ctx, cancel := context.WithCancel(context.Background())
	ch := stream.Channel(ctx, 1)

	select {
	case result := <-ch:
		if result.IsError() {
			t.Fatalf("unexpected error result: %v", result.Error())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no value arrived")
	}
	cancel()

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation never released the emitter resource")
	}
	select {
	case <-blocked:
	case <-time.After(2 * time.Second):
		t.Fatal("producer loop never observed cancellation")
	}
}

func TestChannelPreCancelledContext(t *testing.T) {
	released := flowz.ReleaseFunc(func() {})

	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.SetResource(released)
		e.Next(1)
		return nil
	}, flowz.OverflowBuffer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := stream.Channel(ctx, 4)

	deadline := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, ok := <-ch:
			open = ok
		case <-deadline:
			t.Fatal("channel never closed under a pre-cancelled ctx")
		}
	}

	// Subscription setup races the watcher's shutdown; whichever side loses
	// must still cancel, so the bound resource is released either way.
	waitUntil := time.Now().Add(2 * time.Second)
	for !released.Released() {
		if time.Now().After(waitUntil) {
			t.Fatal("resource never released after ctx cancellation")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestChannelPrefetchDefaults(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[string]) error {
		e.Next("a")
		e.Next("b")
		e.Complete()
		return nil
	}, flowz.OverflowBuffer)

	var got []string
	for result := range stream.Channel(context.Background(), 0) {
		got = append(got, result.ValueOr("?"))
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}
}
