package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Jverbist/S1-hyperautomation/internal/relay"
)

func TestFormatEventPayload(t *testing.T) {
	p := relay.Pattern{Duration: 4 * time.Second, Flashes: 2}
	event := relay.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      relay.EventFlashStart,
		Pattern:   &p,
	}

	payload, err := FormatEventPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed EventPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Lamp.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Lamp.Timestamp)
	}
	if parsed.Lamp.Event != "FLASH_START" {
		t.Errorf("unexpected event: %s", parsed.Lamp.Event)
	}
	if parsed.Lamp.State != "FLASHING" {
		t.Errorf("unexpected state: %s", parsed.Lamp.State)
	}
	if parsed.Lamp.DurationSeconds == nil || *parsed.Lamp.DurationSeconds != 4 {
		t.Errorf("unexpected duration: %v", parsed.Lamp.DurationSeconds)
	}
	if parsed.Lamp.Flashes == nil || *parsed.Lamp.Flashes != 2 {
		t.Errorf("unexpected flashes: %v", parsed.Lamp.Flashes)
	}
}

func TestFormatEventPayloadNoPattern(t *testing.T) {
	event := relay.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      relay.EventLampOff,
	}

	payload, err := FormatEventPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed EventPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Lamp.State != "OFF" {
		t.Errorf("unexpected state: %s", parsed.Lamp.State)
	}
	if parsed.Lamp.DurationSeconds != nil || parsed.Lamp.Flashes != nil {
		t.Error("pattern fields should be omitted for on/off events")
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"custom":true}`)
	payload, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"action":"flash","duration":4,"flashes":2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != ActionFlash || cmd.Duration != 4 || cmd.Flashes != 2 {
		t.Errorf("unexpected command: %+v", cmd)
	}

	cmd, err = ParseCommand([]byte(`{"action":"off"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != ActionOff {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestParseCommandRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		[]byte(`not json`),
		[]byte(`{}`),
		[]byte(`{"action":"explode"}`),
	}
	for _, payload := range cases {
		if _, err := ParseCommand(payload); err == nil {
			t.Errorf("expected error for %s", payload)
		}
	}
}

func TestCommandPattern(t *testing.T) {
	p := Command{Action: ActionFlash, Duration: 4, Flashes: 2}.Pattern()
	if p.Duration != 4*time.Second || p.Flashes != 2 {
		t.Errorf("unexpected pattern: %+v", p)
	}

	// Omitted parameters fall back to the defaults.
	p = Command{Action: ActionFlash}.Pattern()
	if p != relay.DefaultPattern() {
		t.Errorf("expected default pattern, got %+v", p)
	}

	// Out-of-range values pass through for the controller to normalize.
	p = Command{Action: ActionFlash, Duration: 8, Flashes: -3}.Pattern()
	if p.Flashes != -3 {
		t.Errorf("expected pass-through flashes, got %d", p.Flashes)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	event := relay.Event{Timestamp: time.Now(), Type: relay.EventLampOn}
	if err := f.PublishEvent(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 || f.Events[0].Type != relay.EventLampOn {
		t.Errorf("events not recorded: %+v", f.Events)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("payloads not recorded: %d", len(f.Payloads))
	}
	if len(f.SystemEvents) != 1 || f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("system events not recorded: %+v", f.SystemEvents)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("boom")

	if err := f.PublishEvent(relay.Event{Type: relay.EventLampOn}); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not be recorded")
	}
}
