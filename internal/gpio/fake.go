package gpio

import (
	"sync"
	"time"
)

// Transition records a single write to the fake output.
type Transition struct {
	On bool
	At time.Time
}

// FakeOutput is a test double that records every write with a timestamp.
// Safe for concurrent use; the relay controller writes from its run
// goroutine while tests inspect from the test goroutine.
type FakeOutput struct {
	mu sync.Mutex

	// transitions contains every Set call in order.
	transitions []Transition

	// state is the last written value.
	state bool

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, will be returned by Set.
	SetError error
}

// NewFakeOutput creates a FakeOutput in the Off state.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the write and updates the current state.
func (f *FakeOutput) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.transitions = append(f.transitions, Transition{On: on, At: time.Now()})
	f.state = on
	return nil
}

// Close forces the state Off and marks the output as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = false
	f.Closed = true
	return nil
}

// State returns the last written value.
func (f *FakeOutput) State() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Transitions returns a copy of all recorded writes.
func (f *FakeOutput) Transitions() []Transition {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Transition, len(f.transitions))
	copy(out, f.transitions)
	return out
}

// Reset clears recorded writes and returns the state to Off.
func (f *FakeOutput) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = nil
	f.state = false
	f.Closed = false
}
