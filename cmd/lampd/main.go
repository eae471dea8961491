// Command lampd drives a relay-switched lamp through timed on/off flash
// patterns, controlled over HTTP and (optionally) MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/Jverbist/S1-hyperautomation/internal/config"
	"github.com/Jverbist/S1-hyperautomation/internal/gpio"
	"github.com/Jverbist/S1-hyperautomation/internal/logging"
	"github.com/Jverbist/S1-hyperautomation/internal/mqtt"
	"github.com/Jverbist/S1-hyperautomation/internal/relay"
	"github.com/Jverbist/S1-hyperautomation/internal/status"
	"github.com/Jverbist/S1-hyperautomation/internal/web"
)

// eventChanSize buffers controller events headed for MQTT. Beyond this the
// newest events are dropped (best-effort) rather than blocking the relay.
const eventChanSize = 64

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (empty = defaults)")
	httpAddr := flag.String("http", "", "HTTP listen address (overrides config)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	pin := flag.Int("pin", -1, "BCM pin number for the relay (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, *httpAddr, *broker, *pin)

	log := logging.New(cfg.Logging)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// applyFlagOverrides lets command-line flags win over config file and
// environment. Zero flag values leave the config untouched.
func applyFlagOverrides(cfg *config.Config, httpAddr, broker string, pin int) {
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	if pin >= 0 {
		cfg.Relay.Pin = pin
	}
}

func run(cfg *config.Config, log *logging.Logger) error {
	// The output device is required: without it the service cannot come up.
	out, err := gpio.NewRealOutput(cfg.Relay.Pin, cfg.Relay.ActiveLow)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}

	ctrl := relay.New(out, log.With("component", "relay"))
	// Close preempts any running pattern, forces the output Off, and
	// releases the line. Deferred so every exit path goes through it.
	defer func() {
		if err := ctrl.Close(); err != nil {
			log.Error("closing relay", "error", err)
		}
	}()

	tracker := status.NewTracker(time.Now(), status.Config{
		HTTPAddr: cfg.HTTP.Addr,
		Broker:   cfg.MQTT.Broker,
		Pin:      cfg.Relay.Pin,
	})

	// Connect MQTT if configured. A broker outage at startup degrades to
	// HTTP-only operation rather than keeping the lamp uncontrollable.
	var publisher mqtt.Publisher
	var mqttConn mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		client, err := mqtt.Connect(cfg.MQTT, log.With("component", "mqtt"))
		if err != nil {
			log.Error("mqtt connect failed, continuing without MQTT", "broker", cfg.MQTT.Broker, "error", err)
		} else {
			publisher = client
			mqttConn = client
			defer publisher.Close()

			err := client.SubscribeCommands(func(cmd mqtt.Command) {
				dispatchCommand(context.Background(), ctrl, log, cmd)
			})
			if err != nil {
				log.Error("subscribing to commands", "error", err)
			}
		}
	}

	// Controller events update the tracker inline; MQTT publishing is
	// drained serially off a bounded channel so a slow broker never
	// stalls the relay's timing.
	eventCh := make(chan relay.Event, eventChanSize)
	ctrl.SetNotify(func(e relay.Event) {
		tracker.Apply(e)
		if publisher == nil {
			return
		}
		select {
		case eventCh <- e:
		default:
			log.Warn("event channel full, dropping", "type", e.Type)
		}
	})
	if publisher != nil {
		go drainEvents(eventCh, publisher, tracker, mqttConn, log)
	}

	// HTTP control surface.
	srv := web.New(cfg.HTTP.Addr, ctrl, tracker, log.With("component", "web"))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", "error", err)
		}
	}()
	log.Info("http server listening", "addr", cfg.HTTP.Addr)

	if publisher != nil {
		publishLifecycle(publisher, tracker, mqttConn, "STARTUP", "", log)
	}

	daemon.SdNotify(false, daemon.SdNotifyReady)
	log.Info("started", "pin", cfg.Relay.Pin, "active_low", cfg.Relay.ActiveLow, "broker", cfg.MQTT.Broker)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("received signal, shutting down", "signal", sig)

	daemon.SdNotify(false, daemon.SdNotifyStopping)

	// Force the lamp off before announcing shutdown so the retained
	// status reflects the final state. The deferred Close is then a no-op
	// for the output state but still releases the line.
	if err := ctrl.Off(context.Background()); err != nil && !errors.Is(err, relay.ErrClosed) {
		log.Error("forcing lamp off at shutdown", "error", err)
	}
	if publisher != nil {
		publishLifecycle(publisher, tracker, mqttConn, "SHUTDOWN", signalName(sig), log)
	}

	return nil
}

// dispatchCommand maps an MQTT command onto a controller operation.
// Preemption semantics are identical to the HTTP surface: both funnel
// through the one controller.
func dispatchCommand(ctx context.Context, ctrl *relay.Controller, log *logging.Logger, cmd mqtt.Command) {
	switch cmd.Action {
	case mqtt.ActionFlash:
		res, err := ctrl.Flash(ctx, cmd.Pattern())
		switch {
		case errors.Is(err, relay.ErrSuperseded):
			// Expected when a later command preempts; nothing to do.
		case err != nil:
			log.Error("flash command failed", "error", err)
		default:
			log.Info("flash command completed", "duration", res.Duration, "flashes", res.Flashes)
		}
	case mqtt.ActionOn:
		if err := ctrl.On(ctx); err != nil && !errors.Is(err, relay.ErrSuperseded) {
			log.Error("on command failed", "error", err)
		}
	case mqtt.ActionOff:
		if err := ctrl.Off(ctx); err != nil && !errors.Is(err, relay.ErrSuperseded) {
			log.Error("off command failed", "error", err)
		}
	}
}

// drainEvents publishes controller events serially in arrival order.
func drainEvents(ch <-chan relay.Event, pub mqtt.Publisher, tracker *status.Tracker, conn mqtt.ConnectionStatus, log *logging.Logger) {
	for e := range ch {
		if conn != nil {
			tracker.SetMQTTConnected(conn.IsConnected())
		}
		if err := pub.PublishEvent(e); err != nil {
			// Don't crash on publish failure.
			log.Warn("publish event failed", "type", e.Type, "error", err)
		}
	}
}

// publishLifecycle sends a retained system event carrying a full status
// snapshot.
func publishLifecycle(pub mqtt.Publisher, tracker *status.Tracker, conn mqtt.ConnectionStatus, event, reason string, log *logging.Logger) {
	if conn != nil {
		tracker.SetMQTTConnected(conn.IsConnected())
	}
	snap := tracker.Snapshot()
	ev := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := pub.PublishSystem(ev); err != nil {
		log.Error("publish lifecycle event failed", "event", event, "error", err)
	} else {
		log.Info("published lifecycle event", "event", event)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
