package streamtest_test

import (
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/flowz"
	"github.com/zoobzio/flowz/streamtest"
)

var errBoom = errors.New("boom")

func TestRecorderRecordsValuesAndCompletion(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.Next(1)
		e.Next(2)
		e.Complete()
		return nil
	}, flowz.OverflowBuffer)

	r := streamtest.NewRecorder[int](clockz.NewFakeClock())
	stream.Subscribe(r)

	streamtest.AssertValues(t, r, 1, 2)
	streamtest.AssertComplete(t, r)

	// The stream already terminated, so AwaitDone returns without any
	// clock advancement.
	if !r.AwaitDone(time.Second) {
		t.Error("AwaitDone must succeed on a terminated stream")
	}
}

func TestRecorderSignalOrder(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.Next(1)
		e.Next(2)
		e.Complete()
		return nil
	}, flowz.OverflowBuffer)

	r := streamtest.NewRecorder[int](clockz.NewFakeClock())
	stream.Subscribe(r)

	signals := r.Signals()
	if len(signals) != 3 {
		t.Fatalf("expected 3 signals, got %d", len(signals))
	}
	for i, v := range []int{1, 2} {
		if signals[i].Kind() != flowz.KindNext || signals[i].Value() != v {
			t.Errorf("signal %d: expected Next(%d), got %+v", i, v, signals[i])
		}
		if signals[i].Terminal() {
			t.Errorf("signal %d: value signal must not be terminal", i)
		}
	}
	if signals[2].Kind() != flowz.KindComplete || !signals[2].Terminal() {
		t.Errorf("expected a terminal completion last, got %+v", signals[2])
	}

	failing := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.Next(1)
		e.Error(errBoom)
		return nil
	}, flowz.OverflowBuffer)

	fr := streamtest.NewRecorder[int](clockz.NewFakeClock())
	failing.Subscribe(fr)

	fsignals := fr.Signals()
	if len(fsignals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(fsignals))
	}
	last := fsignals[1]
	if last.Kind() != flowz.KindError || !errors.Is(last.Err(), errBoom) || !last.Terminal() {
		t.Errorf("expected terminal Fail(errBoom) last, got %+v", last)
	}
}

func TestRecorderRecordsError(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.Next(1)
		e.Error(errBoom)
		return nil
	}, flowz.OverflowBuffer)

	r := streamtest.NewRecorder[int](clockz.NewFakeClock())
	stream.Subscribe(r)

	streamtest.AssertValues(t, r, 1)
	streamtest.AssertError(t, r, errBoom)
}

func TestRecorderAwaitTimesOut(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.Next(1)
		return nil // never terminates
	}, flowz.OverflowBuffer)

	clock := clockz.NewFakeClock()
	r := streamtest.NewRecorder[int](clock)
	stream.Subscribe(r)

	result := make(chan bool, 1)
	go func() {
		result <- r.AwaitDone(time.Second)
	}()

	for !clock.HasWaiters() {
		time.Sleep(time.Millisecond)
	}
	clock.Advance(time.Second)
	clock.BlockUntilReady()

	select {
	case ok := <-result:
		if ok {
			t.Error("AwaitDone must report false when the deadline passes first")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("AwaitDone never returned after the clock advanced")
	}

	streamtest.AssertNotTerminated(t, r)
}

func TestRecorderManualDemand(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.Next(1)
		e.Next(2)
		e.Next(3)
		e.Complete()
		return nil
	}, flowz.OverflowBuffer)

	r := streamtest.NewRecorder[int](clockz.NewFakeClock()).WithRequest(0)
	stream.Subscribe(r)

	streamtest.AssertValues(t, r)

	r.Request(2)
	streamtest.AssertValues(t, r, 1, 2)
	streamtest.AssertNotTerminated(t, r)

	r.Request(1)
	streamtest.AssertValues(t, r, 1, 2, 3)
	streamtest.AssertComplete(t, r)
}

func TestRecorderCancelStopsDelivery(t *testing.T) {
	stream := flowz.NewPush(func(e flowz.Emitter[int]) error {
		e.Next(1)
		e.Next(2)
		e.Complete()
		return nil
	}, flowz.OverflowBuffer)

	r := streamtest.NewRecorder[int](clockz.NewFakeClock()).WithRequest(0)
	stream.Subscribe(r)

	r.Request(1)
	r.Cancel()
	r.Request(5)

	streamtest.AssertValues(t, r, 1)
	streamtest.AssertNotTerminated(t, r)
}
