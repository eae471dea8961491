// Package config loads daemon configuration from YAML with environment
// variable overrides. All settings have working defaults so the daemon
// runs without a config file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Jverbist/S1-hyperautomation/internal/gpio"
	"github.com/Jverbist/S1-hyperautomation/internal/logging"
)

// Config is the root configuration for the lamp daemon.
type Config struct {
	HTTP    HTTPConfig     `yaml:"http"`
	MQTT    MQTTConfig     `yaml:"mqtt"`
	Relay   RelayConfig    `yaml:"relay"`
	Logging logging.Config `yaml:"logging"`
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// MQTTConfig contains MQTT broker settings. An empty broker address
// disables MQTT entirely; the HTTP surface keeps working.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
}

// RelayConfig contains the relay output settings.
type RelayConfig struct {
	// Pin is the BCM pin number driving the relay module.
	Pin int `yaml:"pin"`

	// ActiveLow inverts the raw line value for boards that energize on a
	// low input.
	ActiveLow bool `yaml:"active_low"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Addr: ":8080"},
		MQTT: MQTTConfig{ClientID: "lampd", QoS: 1},
		Relay: RelayConfig{
			Pin: gpio.DefaultPin,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads configuration from the given YAML file, applies environment
// variable overrides, and validates the result. An empty path skips the
// file and uses defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	if c.Relay.Pin < 0 {
		return fmt.Errorf("relay.pin must be >= 0, got %d", c.Relay.Pin)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1, or 2, got %d", c.MQTT.QoS)
	}
	if c.MQTT.Broker != "" && c.MQTT.ClientID == "" {
		return fmt.Errorf("mqtt.client_id must not be empty when a broker is set")
	}
	return nil
}

// applyEnvOverrides lets deployment environments override settings without
// editing the config file. Secrets (the MQTT password) in particular should
// come from the environment.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LAMPD_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LAMPD_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("LAMPD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("LAMPD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("LAMPD_RELAY_PIN"); v != "" {
		if pin, err := strconv.Atoi(v); err == nil {
			cfg.Relay.Pin = pin
		}
	}
	if v := os.Getenv("LAMPD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
