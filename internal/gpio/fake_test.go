package gpio

import (
	"errors"
	"testing"
)

func TestFakeOutputRecordsTransitions(t *testing.T) {
	f := NewFakeOutput()

	if f.State() {
		t.Error("new output should start Off")
	}

	if err := f.Set(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trs := f.Transitions()
	if len(trs) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(trs))
	}
	want := []bool{true, false, true}
	for i, tr := range trs {
		if tr.On != want[i] {
			t.Errorf("transition %d: expected %v, got %v", i, want[i], tr.On)
		}
	}
	if !f.State() {
		t.Error("expected final state On")
	}
}

func TestFakeOutputSetError(t *testing.T) {
	f := NewFakeOutput()
	f.SetError = errors.New("simulated error")

	if err := f.Set(true); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Transitions()) != 0 {
		t.Error("failed write should not be recorded")
	}
}

func TestFakeOutputClose(t *testing.T) {
	f := NewFakeOutput()
	f.Set(true)

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
	if f.State() {
		t.Error("Close should force state Off")
	}
}

func TestFakeOutputReset(t *testing.T) {
	f := NewFakeOutput()
	f.Set(true)
	f.Close()

	f.Reset()

	if f.State() || f.Closed || len(f.Transitions()) != 0 {
		t.Error("Reset should return the fake to its initial state")
	}
}
