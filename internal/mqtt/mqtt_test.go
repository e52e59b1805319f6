package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/thermostat/internal/config"
	"github.com/sweeney/thermostat/internal/sensor"
	"github.com/sweeney/thermostat/internal/thermostat"
)

func TestFormatSensorPayload(t *testing.T) {
	payload, err := FormatSensorPayload(sensor.Reading{Temperature: 21.5, Humidity: 45})
	require.NoError(t, err)

	var parsed SensorPayload
	require.NoError(t, json.Unmarshal(payload, &parsed))
	assert.Equal(t, 21.5, parsed.Temperature)
	assert.Equal(t, 45.0, parsed.Humidity)
}

func TestFormatDeferredPayload(t *testing.T) {
	now := time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)
	payload, err := FormatDeferredPayload(true, now)
	require.NoError(t, err)

	var parsed DeferredPayload
	require.NoError(t, json.Unmarshal(payload, &parsed))
	assert.Equal(t, "2026-02-02T22:18:12Z", parsed.Timestamp)
	assert.True(t, parsed.Deferred)
}

func TestRelayTopic(t *testing.T) {
	topics := config.Default().Topics

	for appliance, want := range map[thermostat.Appliance]string{
		thermostat.Heating: topics.Relays.Heating,
		thermostat.Cooling: topics.Relays.Cooling,
		thermostat.Fan:     topics.Relays.Fan,
	} {
		got, err := relayTopic(topics, appliance)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := relayTopic(topics, thermostat.Appliance("pump"))
	assert.Error(t, err)
}

func TestRelayPayload(t *testing.T) {
	assert.Equal(t, "ON", relayPayload(true))
	assert.Equal(t, "OFF", relayPayload(false))
}

func TestDiscoveryMessages(t *testing.T) {
	cfg := config.Default()
	messages, err := DiscoveryMessages(cfg)
	require.NoError(t, err)
	require.Len(t, messages, 4)

	topics := make([]string, 0, len(messages))
	for _, m := range messages {
		topics = append(topics, m.Topic)

		// Every payload must be valid JSON naming the same device.
		var parsed map[string]any
		require.NoError(t, json.Unmarshal(m.Payload, &parsed))
		dev, ok := parsed["dev"].(map[string]any)
		require.Truef(t, ok, "%s: missing dev block", m.Topic)
		assert.Equal(t, deviceName, dev["name"])
	}

	assert.Equal(t, []string{
		"homeassistant/sensor/thermostat/temperature/config",
		"homeassistant/climate/thermostat/config",
		"homeassistant/switch/thermostat/heater/config",
		"homeassistant/switch/thermostat/ac/config",
	}, topics)
}

func TestDiscoveryClimateEntity(t *testing.T) {
	cfg := config.Default()
	messages, err := DiscoveryMessages(cfg)
	require.NoError(t, err)

	var climate map[string]any
	require.NoError(t, json.Unmarshal(messages[1].Payload, &climate))

	assert.Equal(t, cfg.Topics.ThermostatPrefix, climate["~"])
	assert.Equal(t, "~"+TopicModeCommand, climate["mode_cmd_t"])
	assert.Equal(t, "~"+TopicTemperatureCommand, climate["temp_cmd_t"])
	assert.Equal(t, cfg.Control.MinTarget, climate["min_temp"])
	assert.Equal(t, cfg.Control.MaxTarget, climate["max_temp"])
	assert.Contains(t, climate["mode_stat_tpl"], `"man":"off"`)
	assert.Contains(t, climate["mode_stat_tpl"], `"fan":"fan_only"`)
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	require.NoError(t, f.PublishMode(thermostat.ModeHeat))
	require.NoError(t, f.PublishTarget(21))
	require.NoError(t, f.PublishAction(thermostat.ActionHeating))
	require.NoError(t, f.PublishRelay(thermostat.Heating, true))
	require.NoError(t, f.PublishSensorState(sensor.Reading{Temperature: 20}))
	require.NoError(t, f.PublishDeferred(true))
	require.NoError(t, f.PublishAvailability(true))
	require.NoError(t, f.PublishDiscovery())

	assert.Equal(t, []thermostat.Mode{thermostat.ModeHeat}, f.Modes)
	assert.Equal(t, []float64{21}, f.Targets)
	assert.Equal(t, &RelayCommand{Appliance: thermostat.Heating, On: true}, f.LastRelay())
	assert.Equal(t, 1, f.DiscoveryCount)

	f.Reset()
	assert.Empty(t, f.Modes)
	assert.Nil(t, f.LastRelay())
}
