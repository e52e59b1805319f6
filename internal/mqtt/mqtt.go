// Package mqtt is the message-bus adapter: it publishes thermostat state to
// the broker (relays, action, mode, target, sensor state, Home Assistant
// discovery) and feeds inbound commands to the command router. An offline
// ring buffer replays missed publishes after a reconnect.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/thermostat/internal/config"
	"github.com/sweeney/thermostat/internal/sensor"
	"github.com/sweeney/thermostat/internal/thermostat"
)

// Topic suffixes under the configured prefixes.
const (
	TopicState              = "state"
	TopicStatus             = "status"
	TopicModeState          = "mode/state"
	TopicModeCommand        = "mode/command"
	TopicAction             = "action"
	TopicTemperatureCommand = "temperature/command"
	TopicHeaterCommand      = "heater/command"
	TopicACCommand          = "ac/command"
	TopicHeaterStatus       = "heater/status"
	TopicACStatus           = "ac/status"
	TopicDiscovery          = "discovery"
	TopicDeferred           = "deferred"
)

// Relay payloads.
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

// Publisher publishes thermostat state to the broker. Implementations must
// not crash the control loop on a publish failure.
type Publisher interface {
	// PublishMode reports the current mode on the mode state topic.
	PublishMode(mode thermostat.Mode) error

	// PublishTarget reports the target temperature on the thermostat state topic.
	PublishTarget(target float64) error

	// PublishAction reports the running action (idle/heating/cooling/fan).
	PublishAction(action thermostat.Action) error

	// PublishRelay commands a single appliance relay on or off.
	PublishRelay(appliance thermostat.Appliance, on bool) error

	// PublishSensorState reports the current temperature/humidity sample.
	PublishSensorState(reading sensor.Reading) error

	// PublishDeferred reports the deferred-change advisory (blink signal).
	PublishDeferred(deferred bool) error

	// PublishAvailability reports device availability on the status topics.
	PublishAvailability(online bool) error

	// PublishDiscovery registers the device with Home Assistant.
	PublishDiscovery() error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the bus connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandHandler receives inbound remote commands. The command router
// satisfies this; handlers must only enqueue, never touch state.
type CommandHandler interface {
	ModeCommand(payload string)
	TargetCommand(payload string)
	ApplianceCommand(appliance thermostat.Appliance, payload string)
	MasterOff()
}

// SensorPayload is the JSON body published on the sensor state topic.
type SensorPayload struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// FormatSensorPayload creates the JSON payload for a sensor sample.
func FormatSensorPayload(reading sensor.Reading) ([]byte, error) {
	return json.Marshal(SensorPayload{
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
	})
}

// DeferredPayload is the JSON body published on the deferred advisory topic.
type DeferredPayload struct {
	Timestamp string `json:"timestamp"`
	Deferred  bool   `json:"deferred"`
}

// FormatDeferredPayload creates the JSON payload for the deferred advisory.
func FormatDeferredPayload(deferred bool, now time.Time) ([]byte, error) {
	return json.Marshal(DeferredPayload{
		Timestamp: now.UTC().Format(time.RFC3339),
		Deferred:  deferred,
	})
}

// relayTopic returns the command topic of an appliance relay.
func relayTopic(topics config.Topics, appliance thermostat.Appliance) (string, error) {
	switch appliance {
	case thermostat.Heating:
		return topics.Relays.Heating, nil
	case thermostat.Cooling:
		return topics.Relays.Cooling, nil
	case thermostat.Fan:
		return topics.Relays.Fan, nil
	}
	return "", fmt.Errorf("unknown appliance %q", appliance)
}

func relayPayload(on bool) string {
	if on {
		return PayloadOn
	}
	return PayloadOff
}

func availabilityPayload(online bool) string {
	if online {
		return "on"
	}
	return "off"
}
