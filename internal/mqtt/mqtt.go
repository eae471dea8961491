// Package mqtt carries the lamp daemon's MQTT surface: inbound commands
// and outbound event publishing, with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Jverbist/S1-hyperautomation/internal/relay"
)

// Topic scheme. Commands flow in, events and lifecycle messages flow out.
const (
	// TopicCommand receives lamp commands from the automation layer.
	TopicCommand = "lamp/command"

	// TopicEvents carries lamp state transitions.
	TopicEvents = "lamp/events"

	// TopicSystem carries daemon lifecycle events and the LWT.
	TopicSystem = "lamp/system"
)

// Command actions accepted on TopicCommand.
const (
	ActionFlash = "flash"
	ActionOn    = "on"
	ActionOff   = "off"
)

// Command is an inbound lamp command.
type Command struct {
	Action string `json:"action"`

	// Duration and Flashes apply to "flash" only. Zero values fall back
	// to the pattern defaults.
	Duration float64 `json:"duration,omitempty"` // seconds
	Flashes  int     `json:"flashes,omitempty"`
}

// ParseCommand decodes and validates a command payload.
func ParseCommand(payload []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch cmd.Action {
	case ActionFlash, ActionOn, ActionOff:
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("unknown action %q", cmd.Action)
	}
}

// Pattern converts a flash command to a relay pattern. Missing parameters
// take the defaults; out-of-range ones are left for the controller's own
// normalization.
func (c Command) Pattern() relay.Pattern {
	p := relay.DefaultPattern()
	if c.Duration != 0 {
		p.Duration = time.Duration(c.Duration * float64(time.Second))
	}
	if c.Flashes != 0 {
		p.Flashes = c.Flashes
	}
	return p
}

// Publisher publishes lamp events to MQTT.
type Publisher interface {
	// PublishEvent sends a lamp state transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishEvent(event relay.Event) error

	// PublishSystem sends a daemon lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a daemon lifecycle event.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN"
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // Pre-formatted JSON; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the broker should retain the message
}

// EventPayload is the MQTT message structure for lamp events.
type EventPayload struct {
	Lamp LampPayload `json:"lamp"`
}

// LampPayload contains the lamp event details.
type LampPayload struct {
	Timestamp       string   `json:"timestamp"`
	Event           string   `json:"event"`
	State           string   `json:"state"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	Flashes         *int     `json:"flashes,omitempty"`
}

// FormatEventPayload creates the JSON payload for a lamp event.
func FormatEventPayload(event relay.Event) ([]byte, error) {
	payload := EventPayload{
		Lamp: LampPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			State:     string(relay.StateAfter(event)),
		},
	}
	if event.Pattern != nil {
		secs := event.Pattern.Duration.Seconds()
		flashes := event.Pattern.Flashes
		payload.Lamp.DurationSeconds = &secs
		payload.Lamp.Flashes = &flashes
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message structure for lifecycle events.
// Used for simple events (OFFLINE LWT) that don't carry a status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
