// Package status provides a thread-safe status tracker for the lamp
// daemon. It is read by HTTP handlers and fed by relay controller events.
package status

import (
	"sync"
	"time"

	"github.com/Jverbist/S1-hyperautomation/internal/relay"
)

// Config contains daemon configuration for display.
type Config struct {
	HTTPAddr string
	Broker   string // empty = MQTT disabled
	Pin      int
}

// Counts tracks how many of each lamp operation have occurred.
type Counts struct {
	FlashesStarted   int
	FlashesCompleted int
	Superseded       int
	TurnedOn         int
	TurnedOff        int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Lamp          relay.State
	LastPattern   *relay.Pattern
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
// The lamp starts Off: the controller guarantees the line is de-energized
// at process start.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Lamp:      relay.StateOff,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Apply folds a relay controller event into the tracked state.
// Registered as the controller's notify callback; must stay fast.
func (t *Tracker) Apply(e relay.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Lamp = relay.StateAfter(e)

	switch e.Type {
	case relay.EventFlashStart:
		t.snap.Counts.FlashesStarted++
		if e.Pattern != nil {
			p := *e.Pattern
			t.snap.LastPattern = &p
		}
	case relay.EventFlashDone:
		t.snap.Counts.FlashesCompleted++
	case relay.EventSuperseded:
		t.snap.Counts.Superseded++
	case relay.EventLampOn:
		t.snap.Counts.TurnedOn++
	case relay.EventLampOff:
		t.snap.Counts.TurnedOff++
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
