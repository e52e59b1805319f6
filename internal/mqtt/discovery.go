package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/sweeney/thermostat/internal/config"
)

// Device identity reported in discovery payloads.
const (
	deviceName         = "Thermostat"
	deviceModel        = "single-zone"
	deviceManufacturer = "sweeney"
)

// Home Assistant value templates. The mode template maps our vocabulary onto
// HA's: HA has no manual mode (shown as off) and calls fan mode fan_only.
const (
	tplTemperature = "{{value_json.temperature}}"
	tplHumidity    = "{{value_json.humidity}}"
	tplModeState   = `{% set values = {"off":"off", "auto":"auto", "man":"off", "heat":"heat", "cool":"cool", "fan":"fan_only"} %} {{ values[value] }}`
)

// DiscoveryMessage is one retained config payload for Home Assistant MQTT
// auto-discovery.
type DiscoveryMessage struct {
	Topic   string
	Payload []byte
}

// deviceInfo identifies the device all discovered entities belong to,
// using HA's abbreviated JSON keys.
type deviceInfo struct {
	Identifiers  []string `json:"ids"`
	Name         string   `json:"name"`
	Model        string   `json:"mdl"`
	Manufacturer string   `json:"mf"`
}

type sensorConfig struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"uniq_id"`
	Device              deviceInfo `json:"dev"`
	DeviceClass         string     `json:"dev_cla"`
	BaseTopic           string     `json:"~"`
	StateTopic          string     `json:"stat_t"`
	AvailabilityTopic   string     `json:"avty_t"`
	PayloadAvailable    string     `json:"pl_avail"`
	PayloadNotAvailable string     `json:"pl_not_avail"`
	UnitOfMeasurement   string     `json:"unit_of_meas"`
	ValueTemplate       string     `json:"val_tpl"`
}

type climateConfig struct {
	Name                       string     `json:"name"`
	UniqueID                   string     `json:"uniq_id"`
	Device                     deviceInfo `json:"dev"`
	BaseTopic                  string     `json:"~"`
	ActionTopic                string     `json:"act_t"`
	AvailabilityTopic          string     `json:"avty_t"`
	PayloadAvailable           string     `json:"pl_avail"`
	PayloadNotAvailable        string     `json:"pl_not_avail"`
	CurrentTemperatureTopic    string     `json:"curr_temp_t"`
	CurrentTemperatureTemplate string     `json:"curr_temp_tpl"`
	Initial                    float64    `json:"init"`
	MinTemp                    float64    `json:"min_temp"`
	MaxTemp                    float64    `json:"max_temp"`
	ModeCommandTopic           string     `json:"mode_cmd_t"`
	ModeStateTopic             string     `json:"mode_stat_t"`
	ModeStateTemplate          string     `json:"mode_stat_tpl"`
	SendIfOff                  bool       `json:"send_if_off"`
	TemperatureCommandTopic    string     `json:"temp_cmd_t"`
	TemperatureStateTopic      string     `json:"temp_stat_t"`
	TemperatureUnit            string     `json:"temp_unit"`
}

type switchConfig struct {
	Name                string     `json:"name"`
	UniqueID            string     `json:"uniq_id"`
	Device              deviceInfo `json:"dev"`
	BaseTopic           string     `json:"~"`
	CommandTopic        string     `json:"cmd_t"`
	StateTopic          string     `json:"stat_t"`
	AvailabilityTopic   string     `json:"avty_t"`
	PayloadAvailable    string     `json:"pl_avail"`
	PayloadNotAvailable string     `json:"pl_not_avail"`
	PayloadOn           string     `json:"pl_on"`
	PayloadOff          string     `json:"pl_off"`
	Icon                string     `json:"ic"`
}

// DiscoveryMessages builds the Home Assistant auto-discovery registration
// payloads: one temperature sensor, the climate entity, and heater/AC
// switches for manual control. No configuration is needed on the HA side.
func DiscoveryMessages(cfg config.Config) ([]DiscoveryMessage, error) {
	node := cfg.ClientID
	dev := deviceInfo{
		Identifiers:  []string{node},
		Name:         deviceName,
		Model:        deviceModel,
		Manufacturer: deviceManufacturer,
	}

	temperature := sensorConfig{
		Name:                deviceName + " Temperature",
		UniqueID:            node + "-temp",
		Device:              dev,
		DeviceClass:         "temperature",
		BaseTopic:           cfg.Topics.SensorPrefix,
		StateTopic:          "~" + TopicState,
		AvailabilityTopic:   "~" + TopicStatus,
		PayloadAvailable:    "on",
		PayloadNotAvailable: "off",
		UnitOfMeasurement:   "°C",
		ValueTemplate:       tplTemperature,
	}

	climate := climateConfig{
		Name:                       deviceName,
		UniqueID:                   node + "-climate",
		Device:                     dev,
		BaseTopic:                  cfg.Topics.ThermostatPrefix,
		ActionTopic:                "~" + TopicAction,
		AvailabilityTopic:          "~" + TopicStatus,
		PayloadAvailable:           "on",
		PayloadNotAvailable:        "off",
		CurrentTemperatureTopic:    cfg.Topics.SensorPrefix + TopicState,
		CurrentTemperatureTemplate: tplTemperature,
		Initial:                    20,
		MinTemp:                    cfg.Control.MinTarget,
		MaxTemp:                    cfg.Control.MaxTarget,
		ModeCommandTopic:           "~" + TopicModeCommand,
		ModeStateTopic:             "~" + TopicModeState,
		ModeStateTemplate:          tplModeState,
		SendIfOff:                  true,
		TemperatureCommandTopic:    "~" + TopicTemperatureCommand,
		TemperatureStateTopic:      "~" + TopicState,
		TemperatureUnit:            "C",
	}

	heater := switchConfig{
		Name:                deviceName + " Heater",
		UniqueID:            node + "-heater",
		Device:              dev,
		BaseTopic:           cfg.Topics.SwitchPrefix,
		CommandTopic:        "~" + TopicHeaterCommand,
		StateTopic:          cfg.Topics.Relays.Heating,
		AvailabilityTopic:   "~" + TopicHeaterStatus,
		PayloadAvailable:    "on",
		PayloadNotAvailable: "off",
		PayloadOn:           PayloadOn,
		PayloadOff:          PayloadOff,
		Icon:                "mdi:radiator",
	}

	ac := switchConfig{
		Name:                deviceName + " AC",
		UniqueID:            node + "-ac",
		Device:              dev,
		BaseTopic:           cfg.Topics.SwitchPrefix,
		CommandTopic:        "~" + TopicACCommand,
		StateTopic:          cfg.Topics.Relays.Cooling,
		AvailabilityTopic:   "~" + TopicACStatus,
		PayloadAvailable:    "on",
		PayloadNotAvailable: "off",
		PayloadOn:           PayloadOn,
		PayloadOff:          PayloadOff,
		Icon:                "mdi:snowflake",
	}

	messages := make([]DiscoveryMessage, 0, 4)
	for _, entity := range []struct {
		topic   string
		payload any
	}{
		{fmt.Sprintf("%ssensor/%s/temperature/config", cfg.Topics.DiscoveryPrefix, node), temperature},
		{fmt.Sprintf("%sclimate/%s/config", cfg.Topics.DiscoveryPrefix, node), climate},
		{fmt.Sprintf("%sswitch/%s/heater/config", cfg.Topics.DiscoveryPrefix, node), heater},
		{fmt.Sprintf("%sswitch/%s/ac/config", cfg.Topics.DiscoveryPrefix, node), ac},
	} {
		payload, err := json.Marshal(entity.payload)
		if err != nil {
			return nil, fmt.Errorf("marshal discovery config for %s: %w", entity.topic, err)
		}
		messages = append(messages, DiscoveryMessage{Topic: entity.topic, Payload: payload})
	}
	return messages, nil
}
