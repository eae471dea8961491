package mqtt

import (
	"sync"

	"github.com/Jverbist/S1-hyperautomation/internal/relay"
)

// FakePublisher records published events for test assertions.
// Safe for concurrent use; the controller publishes from run goroutines.
type FakePublisher struct {
	mu sync.Mutex

	// Events contains all lamp events that were published.
	Events []relay.Event

	// Payloads contains the JSON payloads for lamp events.
	Payloads [][]byte

	// SystemEvents contains all lifecycle events that were published.
	SystemEvents []SystemEvent

	// PublishError, if set, will be returned by PublishEvent.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Connected: true}
}

// PublishEvent records the lamp event.
func (f *FakePublisher) PublishEvent(event relay.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatEventPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the lifecycle event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// IsConnected returns the configured connection state.
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// EventTypes returns the types of all recorded lamp events, in order.
func (f *FakePublisher) EventTypes() []relay.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]relay.EventType, len(f.Events))
	for i, e := range f.Events {
		out[i] = e.Type
	}
	return out
}
