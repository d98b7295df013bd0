package flowz_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/zoobzio/flowz"
)

func TestSignalVariants(t *testing.T) {
	next := flowz.Next(42)
	if next.Kind() != flowz.KindNext || next.Value() != 42 || next.Err() != nil {
		t.Errorf("unexpected next signal: %+v", next)
	}
	if next.Terminal() {
		t.Error("value signal must not be terminal")
	}

	fail := flowz.Fail[int](errBoom)
	if fail.Kind() != flowz.KindError || !errors.Is(fail.Err(), errBoom) {
		t.Errorf("unexpected error signal: %+v", fail)
	}
	if !fail.Terminal() {
		t.Error("error signal must be terminal")
	}

	done := flowz.Done[int]()
	if done.Kind() != flowz.KindComplete || done.Err() != nil {
		t.Errorf("unexpected completion signal: %+v", done)
	}
	if !done.Terminal() {
		t.Error("completion signal must be terminal")
	}
}

func TestStreamErrorUnwrap(t *testing.T) {
	se := flowz.NewStreamError(7, errBoom, "pipeline")

	if !errors.Is(se, errBoom) {
		t.Error("StreamError must unwrap to its cause")
	}
	if se.Item != 7 {
		t.Errorf("expected item 7, got %v", se.Item)
	}
	if se.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	msg := se.Error()
	if !strings.Contains(msg, "pipeline") || !strings.Contains(msg, errBoom.Error()) {
		t.Errorf("unexpected error message: %s", msg)
	}
}

func TestResultAccessors(t *testing.T) {
	ok := flowz.NewSuccess("value")
	if !ok.IsSuccess() || ok.IsError() {
		t.Error("success result misreports state")
	}
	if ok.Value() != "value" {
		t.Errorf("expected value, got %q", ok.Value())
	}
	if got := ok.ValueOr("fallback"); got != "value" {
		t.Errorf("expected value, got %q", got)
	}
	if got := ok.Map(strings.ToUpper); got.Value() != "VALUE" {
		t.Errorf("expected VALUE, got %q", got.Value())
	}

	bad := flowz.NewError("item", errBoom, "source")
	if bad.IsSuccess() || !bad.IsError() {
		t.Error("error result misreports state")
	}
	if !errors.Is(bad.Error(), errBoom) {
		t.Errorf("expected cause %v, got %v", errBoom, bad.Error())
	}
	if got := bad.ValueOr("fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
	if got := bad.Map(strings.ToUpper); !got.IsError() {
		t.Error("Map must pass errors through unchanged")
	}

	defer func() {
		if recover() == nil {
			t.Error("Value on an error result must panic")
		}
	}()
	_ = bad.Value()
}
