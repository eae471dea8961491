package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/Jverbist/S1-hyperautomation/internal/config"
	"github.com/Jverbist/S1-hyperautomation/internal/logging"
	"github.com/Jverbist/S1-hyperautomation/internal/relay"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	// eventBufferCap bounds the number of events held while the broker is
	// unreachable. Oldest entries are overwritten first.
	eventBufferCap = 64
)

// CommandHandler is invoked for each valid command received on
// TopicCommand. It runs on its own goroutine, so it may block for the
// duration of a flash pattern.
type CommandHandler func(Command)

// RealClient talks to an actual MQTT broker.
type RealClient struct {
	client paho.Client
	qos    byte
	log    *logging.Logger

	mu        sync.Mutex
	buf       *ringBuffer
	onCommand CommandHandler
}

// Connect establishes a connection to the broker configured in cfg.
// It registers an LWT on TopicSystem so subscribers learn about unclean
// exits, and auto-reconnects with command re-subscription and replay of
// events queued while offline.
func Connect(cfg config.MQTTConfig, log *logging.Logger) (*RealClient, error) {
	c := &RealClient{
		qos: byte(cfg.QoS),
		log: log,
		buf: newRingBuffer(eventBufferCap),
	}

	lwt, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})
	if err != nil {
		return nil, fmt.Errorf("format LWT payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(TopicSystem, string(lwt), 1, true).
		SetOnConnectHandler(c.handleConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn("mqtt connection lost", "error", err)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// SubscribeCommands registers the handler for inbound lamp commands and
// subscribes to TopicCommand. The subscription is restored automatically
// after a reconnect.
func (c *RealClient) SubscribeCommands(handler CommandHandler) error {
	c.mu.Lock()
	c.onCommand = handler
	c.mu.Unlock()
	return c.subscribeCommands(handler)
}

func (c *RealClient) subscribeCommands(handler CommandHandler) error {
	token := c.client.Subscribe(TopicCommand, c.qos, func(_ paho.Client, msg paho.Message) {
		cmd, err := ParseCommand(msg.Payload())
		if err != nil {
			c.log.Warn("ignoring malformed command", "topic", msg.Topic(), "error", err)
			return
		}
		// Command execution may block for a whole pattern; keep it off
		// the paho router goroutine.
		go handler(cmd)
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicCommand, err)
	}
	return nil
}

// PublishEvent sends a lamp state transition to the broker. While the
// connection is down the event is queued for replay instead.
func (c *RealClient) PublishEvent(event relay.Event) error {
	payload, err := FormatEventPayload(event)
	if err != nil {
		return fmt.Errorf("format event payload: %w", err)
	}

	if !c.client.IsConnected() {
		c.mu.Lock()
		c.buf.push(queuedMsg{topic: TopicEvents, payload: payload, qos: c.qos})
		c.mu.Unlock()
		return nil
	}

	token := c.client.Publish(TopicEvents, c.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// PublishSystem sends a lifecycle event. QoS 1: startup/shutdown must
// reach the broker if at all possible.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	token := c.client.Publish(TopicSystem, 1, event.Retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is active.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // milliseconds to flush in-flight messages
	return nil
}

// handleConnect runs on every (re)connect: restores the command
// subscription and replays events queued while offline.
func (c *RealClient) handleConnect(_ paho.Client) {
	c.mu.Lock()
	handler := c.onCommand
	dropped := c.buf.droppedCount()
	queued := c.buf.drainAll()
	c.mu.Unlock()

	if handler != nil {
		if err := c.subscribeCommands(handler); err != nil {
			c.log.Error("restoring command subscription", "error", err)
		}
	}

	if dropped > 0 {
		c.log.Warn("event buffer overflowed while offline", "dropped", dropped)
	}
	for _, msg := range queued {
		token := c.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
			c.log.Warn("replaying queued event failed", "topic", msg.topic)
		}
	}
	if len(queued) > 0 {
		c.log.Info("replayed queued events", "count", len(queued))
	}
}
