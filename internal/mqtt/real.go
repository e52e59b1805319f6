package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/thermostat/internal/config"
	"github.com/sweeney/thermostat/internal/sensor"
	"github.com/sweeney/thermostat/internal/thermostat"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	keepAlive      = 5 * time.Minute
	bufferCapacity = 64
)

// Client talks to a real MQTT broker. It implements Publisher and the
// connectivity prober for the bus channel. Reconnection is driven by the
// connectivity monitor, not paho's auto-reconnect, so the retry/restart
// policy stays in one place.
type Client struct {
	client paho.Client
	cfg    config.Config
	logger *slog.Logger

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewClient creates a client connected to the configured broker and
// subscribes the command handler to the inbound command topics. The broker
// will publish the availability will ("off") if the session dies.
func NewClient(cfg config.Config, handler CommandHandler, logger *slog.Logger) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "mqtt")),
		buffer: newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetKeepAlive(keepAlive).
		SetAutoReconnect(false).
		SetWill(cfg.Topics.ThermostatPrefix+TopicStatus, availabilityPayload(false), 1, true).
		SetOnConnectHandler(func(pc paho.Client) {
			c.subscribe(pc, handler)
			c.replayBuffered(pc)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.logger.Warn("connection lost", slog.Any("err", err))
		})

	c.client = paho.NewClient(opts)

	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.New("connect to broker: timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// subscribe wires the inbound command topics to the handler. Called on every
// (re)connect so subscriptions survive a new session.
func (c *Client) subscribe(pc paho.Client, handler CommandHandler) {
	topics := map[string]paho.MessageHandler{
		c.cfg.Topics.ThermostatPrefix + TopicModeCommand: func(_ paho.Client, m paho.Message) {
			handler.ModeCommand(string(m.Payload()))
		},
		c.cfg.Topics.ThermostatPrefix + TopicTemperatureCommand: func(_ paho.Client, m paho.Message) {
			handler.TargetCommand(string(m.Payload()))
		},
		c.cfg.Topics.SwitchPrefix + TopicHeaterCommand: func(_ paho.Client, m paho.Message) {
			handler.ApplianceCommand(thermostat.Heating, string(m.Payload()))
		},
		c.cfg.Topics.SwitchPrefix + TopicACCommand: func(_ paho.Client, m paho.Message) {
			handler.ApplianceCommand(thermostat.Cooling, string(m.Payload()))
		},
		c.cfg.Topics.MasterSwitch: func(_ paho.Client, m paho.Message) {
			handler.MasterOff()
		},
		c.cfg.Topics.ThermostatPrefix + TopicDiscovery: func(_ paho.Client, m paho.Message) {
			// Home Assistant asked us to (re)introduce ourselves.
			if err := c.PublishDiscovery(); err != nil {
				c.logger.Warn("discovery republish failed", slog.Any("err", err))
			}
			if err := c.PublishAvailability(true); err != nil {
				c.logger.Warn("availability republish failed", slog.Any("err", err))
			}
		},
	}

	for topic, h := range topics {
		if token := pc.Subscribe(topic, 0, h); token.WaitTimeout(publishTimeout) && token.Error() != nil {
			c.logger.Error("subscribe failed", slog.String("topic", topic), slog.Any("err", token.Error()))
		}
	}
}

// replayBuffered publishes everything queued while the connection was down.
func (c *Client) replayBuffered(pc paho.Client) {
	c.mu.Lock()
	msgs, dropped := c.buffer.drainAll()
	c.mu.Unlock()

	if dropped > 0 {
		c.logger.Warn("offline buffer overflowed", slog.Int("dropped", dropped))
	}
	for _, m := range msgs {
		token := pc.Publish(m.topic, m.qos, m.retained, m.payload)
		if token.WaitTimeout(publishTimeout) && token.Error() != nil {
			c.logger.Warn("replay publish failed", slog.String("topic", m.topic), slog.Any("err", token.Error()))
		}
	}
	if len(msgs) > 0 {
		c.logger.Info("replayed buffered messages", slog.Int("count", len(msgs)))
	}
}

// publish sends one message, queueing it for replay when disconnected.
func (c *Client) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !c.client.IsConnectionOpen() {
		c.mu.Lock()
		c.buffer.push(queuedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		c.mu.Unlock()
		return nil
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishMode reports the current mode.
func (c *Client) PublishMode(mode thermostat.Mode) error {
	return c.publish(c.cfg.Topics.ThermostatPrefix+TopicModeState, 0, false, []byte(mode))
}

// PublishTarget reports the target temperature.
func (c *Client) PublishTarget(target float64) error {
	return c.publish(c.cfg.Topics.ThermostatPrefix+TopicState, 0, false, []byte(fmt.Sprintf("%g", target)))
}

// PublishAction reports the running action.
func (c *Client) PublishAction(action thermostat.Action) error {
	return c.publish(c.cfg.Topics.ThermostatPrefix+TopicAction, 0, false, []byte(action))
}

// PublishRelay commands an appliance relay. QoS 1: a lost relay command
// leaves a physical appliance in the wrong state.
func (c *Client) PublishRelay(appliance thermostat.Appliance, on bool) error {
	topic, err := relayTopic(c.cfg.Topics, appliance)
	if err != nil {
		return err
	}
	return c.publish(topic, 1, false, []byte(relayPayload(on)))
}

// PublishSensorState reports the current sample on the sensor state topic.
func (c *Client) PublishSensorState(reading sensor.Reading) error {
	payload, err := FormatSensorPayload(reading)
	if err != nil {
		return fmt.Errorf("format sensor payload: %w", err)
	}
	return c.publish(c.cfg.Topics.SensorPrefix+TopicState, 0, false, payload)
}

// PublishDeferred reports the deferred-change advisory on the debug topic.
func (c *Client) PublishDeferred(deferred bool) error {
	payload, err := FormatDeferredPayload(deferred, time.Now())
	if err != nil {
		return fmt.Errorf("format deferred payload: %w", err)
	}
	return c.publish(c.cfg.Topics.Debug+TopicDeferred, 0, false, payload)
}

// PublishAvailability reports availability on all four status topics.
func (c *Client) PublishAvailability(online bool) error {
	payload := []byte(availabilityPayload(online))
	var errs []error
	for _, topic := range []string{
		c.cfg.Topics.SensorPrefix + TopicStatus,
		c.cfg.Topics.ThermostatPrefix + TopicStatus,
		c.cfg.Topics.SwitchPrefix + TopicHeaterStatus,
		c.cfg.Topics.SwitchPrefix + TopicACStatus,
	} {
		if err := c.publish(topic, 1, true, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishDiscovery registers the device with Home Assistant. Retained so the
// registration survives an HA restart.
func (c *Client) PublishDiscovery() error {
	messages, err := DiscoveryMessages(c.cfg)
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range messages {
		if err := c.publish(m.Topic, 0, true, m.Payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IsConnected reports whether the broker connection is up.
func (c *Client) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// BufferedCount returns the number of messages waiting for replay.
func (c *Client) BufferedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.len()
}

// Probe implements the connectivity prober for the bus channel. The paho
// keepalive does the actual pinging; a dead session shows up as a closed
// connection.
func (c *Client) Probe(_ context.Context) error {
	if !c.client.IsConnectionOpen() {
		return errors.New("mqtt session closed")
	}
	return nil
}

// Reconnect re-establishes the broker session within the context deadline.
func (c *Client) Reconnect(ctx context.Context) error {
	timeout := connectTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	token := c.client.Connect()
	if !token.WaitTimeout(timeout) {
		return errors.New("reconnect: timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
