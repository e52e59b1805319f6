// Package config loads the thermostat configuration from a YAML file:
// MQTT topic mappings, control constants, and hardware paths.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Relays maps appliances to their MQTT command topics.
type Relays struct {
	Heating string `yaml:"heating"`
	Cooling string `yaml:"cooling"`
	Fan     string `yaml:"fan"`
}

// Topics holds the MQTT topic layout.
type Topics struct {
	ThermostatPrefix string `yaml:"thermostatPrefix"`
	SensorPrefix     string `yaml:"sensorPrefix"`
	SwitchPrefix     string `yaml:"switchPrefix"`
	Debug            string `yaml:"debug"`
	DiscoveryPrefix  string `yaml:"discoveryPrefix"`
	MasterSwitch     string `yaml:"masterSwitch"`
	Relays           Relays `yaml:"relays"`
}

// Control holds the thermostat decision constants. Temperatures are Celsius.
type Control struct {
	MinTarget       float64 `yaml:"minTarget"`
	MaxTarget       float64 `yaml:"maxTarget"`
	MinTemp         float64 `yaml:"minTemp"`
	MaxTemp         float64 `yaml:"maxTemp"`
	ColdTolerance   float64 `yaml:"coldTolerance"`
	HeatTolerance   float64 `yaml:"heatTolerance"`
	MinCycleSeconds int     `yaml:"minCycleSeconds"`
	UpdateSeconds   int     `yaml:"updateSeconds"`
}

// Connectivity holds the health-check policy.
type Connectivity struct {
	MaxFailures         int `yaml:"maxFailures"`
	RetryDelaySeconds   int `yaml:"retryDelaySeconds"`
	ProbeTimeoutSeconds int `yaml:"probeTimeoutSeconds"`
}

// Sensor holds the sysfs paths of the temperature/humidity sensor.
type Sensor struct {
	TemperaturePath string `yaml:"temperaturePath"`
	HumidityPath    string `yaml:"humidityPath"`
}

// Buttons holds the GPIO wiring of the local input buttons.
type Buttons struct {
	Chip        string `yaml:"chip"`
	ModePin     int    `yaml:"modePin"`
	TargetPin   int    `yaml:"targetPin"`
	LongPressMs int    `yaml:"longPressMs"`
}

// Config is the full daemon configuration.
type Config struct {
	Broker       string       `yaml:"broker"`
	ClientID     string       `yaml:"clientId"`
	HTTPAddr     string       `yaml:"httpAddr"`
	DisplayUnit  string       `yaml:"displayUnit"` // "C" or "F", presentation only
	Topics       Topics       `yaml:"topics"`
	Control      Control      `yaml:"control"`
	Connectivity Connectivity `yaml:"connectivity"`
	Sensor       Sensor       `yaml:"sensor"`
	Buttons      Buttons      `yaml:"buttons"`
}

// Default returns the configuration matching the reference device setup.
func Default() Config {
	return Config{
		Broker:      "tcp://127.0.0.1:1883",
		ClientID:    "thermostat",
		HTTPAddr:    ":8080",
		DisplayUnit: "C",
		Topics: Topics{
			ThermostatPrefix: "thermostat/climate/",
			SensorPrefix:     "thermostat/dht22/",
			SwitchPrefix:     "thermostat/switch/",
			Debug:            "thermostat/debug/",
			DiscoveryPrefix:  "homeassistant/",
			MasterSwitch:     "master-switch/switch/master_switch/state",
			Relays: Relays{
				Heating: "thermostat/heat",
				Cooling: "thermostat/cool",
				Fan:     "thermostat/fan",
			},
		},
		Control: Control{
			MinTarget:       15,
			MaxTarget:       25,
			MinTemp:         0,
			MaxTemp:         40,
			ColdTolerance:   0.5,
			HeatTolerance:   0.5,
			MinCycleSeconds: 5,
			UpdateSeconds:   20,
		},
		Connectivity: Connectivity{
			MaxFailures:         3,
			RetryDelaySeconds:   5,
			ProbeTimeoutSeconds: 5,
		},
		Sensor: Sensor{
			TemperaturePath: "/sys/bus/iio/devices/iio:device0/in_temp_input",
			HumidityPath:    "/sys/bus/iio/devices/iio:device0/in_humidityrelative_input",
		},
		Buttons: Buttons{
			Chip:        "gpiochip0",
			ModePin:     14,
			TargetPin:   0,
			LongPressMs: 600,
		},
	}
}

// Load reads the configuration file, applying defaults for anything omitted.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the control loop cannot safely run with.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("config: broker must be set")
	}
	if c.Control.MinTarget >= c.Control.MaxTarget {
		return fmt.Errorf("config: minTarget (%.1f) must be below maxTarget (%.1f)",
			c.Control.MinTarget, c.Control.MaxTarget)
	}
	if c.Control.ColdTolerance < 0 || c.Control.HeatTolerance < 0 {
		return fmt.Errorf("config: tolerances must not be negative")
	}
	if c.Control.MinCycleSeconds < 0 {
		return fmt.Errorf("config: minCycleSeconds must not be negative")
	}
	if c.Control.UpdateSeconds <= 0 {
		return fmt.Errorf("config: updateSeconds must be positive")
	}
	if c.Connectivity.MaxFailures <= 0 {
		return fmt.Errorf("config: maxFailures must be positive")
	}
	if c.DisplayUnit != "C" && c.DisplayUnit != "F" {
		return fmt.Errorf("config: displayUnit must be C or F, got %q", c.DisplayUnit)
	}
	return nil
}

// RetryDelay returns the connectivity retry delay as a duration.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Connectivity.RetryDelaySeconds) * time.Second
}

// ProbeTimeout returns the connectivity probe timeout as a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Connectivity.ProbeTimeoutSeconds) * time.Second
}

// UpdateInterval returns the periodic re-evaluation interval as a duration.
func (c Config) UpdateInterval() time.Duration {
	return time.Duration(c.Control.UpdateSeconds) * time.Second
}
