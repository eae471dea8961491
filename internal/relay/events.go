package relay

import "time"

// EventType identifies a lamp state transition.
type EventType string

// Lamp event types.
const (
	EventFlashStart EventType = "FLASH_START"
	EventFlashDone  EventType = "FLASH_DONE"
	EventSuperseded EventType = "SUPERSEDED"
	EventLampOn     EventType = "LAMP_ON"
	EventLampOff    EventType = "LAMP_OFF"
)

// Event is emitted by the controller on every lamp state transition.
type Event struct {
	Timestamp time.Time
	Type      EventType

	// Pattern is set for flash events, nil for plain on/off.
	Pattern *Pattern
}

// State is the externally visible lamp state, derived from events.
type State string

// Lamp states.
const (
	StateOff      State = "OFF"
	StateOn       State = "ON"
	StateFlashing State = "FLASHING"
)

// StateAfter returns the lamp state implied by an event. Used by status
// consumers so the mapping lives in one place.
func StateAfter(e Event) State {
	switch e.Type {
	case EventFlashStart:
		return StateFlashing
	case EventLampOn:
		return StateOn
	default:
		return StateOff
	}
}
