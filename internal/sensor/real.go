package sensor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default sysfs paths for a DHT22 exposed through the kernel IIO subsystem.
// Values are reported in milli-units.
const (
	DefaultTemperaturePath = "/sys/bus/iio/devices/iio:device0/in_temp_input"
	DefaultHumidityPath    = "/sys/bus/iio/devices/iio:device0/in_humidityrelative_input"
)

// RealReader reads a DHT22 sensor through sysfs. The kernel driver owns the
// bus timing; a busy or glitching sensor surfaces here as a read error, which
// the Source turns into a fallback.
type RealReader struct {
	temperaturePath string
	humidityPath    string
	minTemp         float64
	maxTemp         float64
}

// NewRealReader creates a reader for the given sysfs paths. Readings outside
// [minTemp, maxTemp] are rejected as faults rather than fed to the control
// loop.
func NewRealReader(temperaturePath, humidityPath string, minTemp, maxTemp float64) (*RealReader, error) {
	if _, err := os.Stat(temperaturePath); err != nil {
		return nil, fmt.Errorf("temperature sensor: %w", err)
	}
	return &RealReader{
		temperaturePath: temperaturePath,
		humidityPath:    humidityPath,
		minTemp:         minTemp,
		maxTemp:         maxTemp,
	}, nil
}

// Read returns the current sample.
func (r *RealReader) Read() (Reading, error) {
	temp, err := readMilliValue(r.temperaturePath)
	if err != nil {
		return Reading{}, fmt.Errorf("read temperature: %w", err)
	}
	if temp < r.minTemp || temp > r.maxTemp {
		return Reading{}, fmt.Errorf("temperature %.1f outside sensor range [%.1f, %.1f]", temp, r.minTemp, r.maxTemp)
	}

	humidity, err := readMilliValue(r.humidityPath)
	if err != nil {
		return Reading{}, fmt.Errorf("read humidity: %w", err)
	}

	return Reading{Temperature: temp, Humidity: humidity}, nil
}

// Close is a no-op; sysfs files are opened per read.
func (r *RealReader) Close() error {
	return nil
}

func readMilliValue(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return 0, fmt.Errorf("%s: empty reading", path)
	}
	milli, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return milli / 1000, nil
}
