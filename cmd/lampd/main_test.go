package main

import (
	"syscall"
	"testing"

	"github.com/Jverbist/S1-hyperautomation/internal/config"
)

func TestApplyFlagOverrides(t *testing.T) {
	cfg := config.Default()
	applyFlagOverrides(cfg, ":9999", "tcp://flag.local:1883", 22)

	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("http addr: got %q, want :9999", cfg.HTTP.Addr)
	}
	if cfg.MQTT.Broker != "tcp://flag.local:1883" {
		t.Errorf("broker: got %q", cfg.MQTT.Broker)
	}
	if cfg.Relay.Pin != 22 {
		t.Errorf("pin: got %d, want 22", cfg.Relay.Pin)
	}
}

func TestApplyFlagOverridesZeroValuesKeepConfig(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Addr = ":8081"
	cfg.MQTT.Broker = "tcp://cfg.local:1883"
	cfg.Relay.Pin = 27

	applyFlagOverrides(cfg, "", "", -1)

	if cfg.HTTP.Addr != ":8081" {
		t.Errorf("http addr clobbered: %q", cfg.HTTP.Addr)
	}
	if cfg.MQTT.Broker != "tcp://cfg.local:1883" {
		t.Errorf("broker clobbered: %q", cfg.MQTT.Broker)
	}
	if cfg.Relay.Pin != 27 {
		t.Errorf("pin clobbered: %d", cfg.Relay.Pin)
	}
}

func TestApplyFlagOverridesPinZeroIsValid(t *testing.T) {
	cfg := config.Default()
	applyFlagOverrides(cfg, "", "", 0)
	if cfg.Relay.Pin != 0 {
		t.Errorf("pin 0 should be accepted as an override, got %d", cfg.Relay.Pin)
	}
}

func TestSignalName(t *testing.T) {
	if got := signalName(syscall.SIGINT); got != "SIGINT" {
		t.Errorf("got %q, want SIGINT", got)
	}
	if got := signalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("got %q, want SIGTERM", got)
	}
	if got := signalName(syscall.SIGHUP); got != "UNKNOWN" {
		t.Errorf("got %q, want UNKNOWN", got)
	}
}
