package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Lamp          string       `json:"lamp"`
	LastPattern   *PatternJSON `json:"last_pattern,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Config        ConfigJSON   `json:"config"`
}

// PatternJSON is the JSON representation of a flash pattern.
type PatternJSON struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Flashes         int     `json:"flashes"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// CountsJSON is the JSON representation of operation counts.
type CountsJSON struct {
	FlashesStarted   int `json:"flashes_started"`
	FlashesCompleted int `json:"flashes_completed"`
	Superseded       int `json:"superseded"`
	TurnedOn         int `json:"turned_on"`
	TurnedOff        int `json:"turned_off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	HTTPAddr string `json:"http_addr"`
	Broker   string `json:"broker,omitempty"`
	Pin      int    `json:"pin"`
}

// FormatStatusEvent renders a snapshot as a JSON status document, tagged
// with a lifecycle event name ("STARTUP", "SHUTDOWN") and optional reason.
// Used both for the HTTP status endpoint (with empty event) and for MQTT
// system event payloads.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := StatusInner{
		Event:         event,
		Reason:        reason,
		Lamp:          string(snap.Lamp),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Enabled:   snap.Config.Broker != "",
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
		},
		Counts: CountsJSON{
			FlashesStarted:   snap.Counts.FlashesStarted,
			FlashesCompleted: snap.Counts.FlashesCompleted,
			Superseded:       snap.Counts.Superseded,
			TurnedOn:         snap.Counts.TurnedOn,
			TurnedOff:        snap.Counts.TurnedOff,
		},
		Config: ConfigJSON{
			HTTPAddr: snap.Config.HTTPAddr,
			Broker:   snap.Config.Broker,
			Pin:      snap.Config.Pin,
		},
	}

	if snap.LastPattern != nil {
		inner.LastPattern = &PatternJSON{
			DurationSeconds: snap.LastPattern.Duration.Seconds(),
			Flashes:         snap.LastPattern.Flashes,
		}
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
