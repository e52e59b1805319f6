// Package sensor provides temperature/humidity readings with hardware
// abstraction and a last-known-good fallback, so the control loop always has
// a usable value and never stalls on a sensor glitch.
package sensor

import (
	"log/slog"
	"time"
)

// Default reading returned before any successful read has been cached.
const (
	DefaultTemperature = 20.0 // Celsius
	DefaultHumidity    = 50.0 // %RH
)

// Reading is a single temperature/humidity sample.
type Reading struct {
	Temperature float64 // Celsius
	Humidity    float64 // %RH
}

// Reader reads raw samples from the sensor hardware.
type Reader interface {
	// Read returns the current sample or an error on a bus fault.
	Read() (Reading, error)

	// Close releases sensor resources.
	Close() error
}

// Source wraps a Reader with the fallback policy: on a read fault it returns
// the last known good reading, or the documented default if none exists yet.
// Read never fails outward.
type Source struct {
	reader Reader
	logger *slog.Logger

	last     Reading
	haveGood bool
	lastGood time.Time
	faults   int
}

// NewSource creates a Source reading from the given hardware reader.
func NewSource(reader Reader, logger *slog.Logger) *Source {
	return &Source{
		reader: reader,
		logger: logger.With(slog.String("component", "sensor")),
	}
}

// Read returns the current sample, falling back to the last known good
// reading (or the default) on a fault.
func (s *Source) Read() Reading {
	reading, err := s.reader.Read()
	if err == nil {
		s.last = reading
		s.haveGood = true
		s.lastGood = time.Now()
		return reading
	}

	s.faults++
	if s.haveGood {
		s.logger.Warn("sensor fault, using last known good reading",
			slog.Any("err", err),
			slog.Float64("temperature", s.last.Temperature),
			slog.Time("read_at", s.lastGood))
		return s.last
	}

	s.logger.Warn("sensor fault with no prior reading, using defaults", slog.Any("err", err))
	return Reading{Temperature: DefaultTemperature, Humidity: DefaultHumidity}
}

// Faults returns the number of read faults since startup.
func (s *Source) Faults() int {
	return s.faults
}

// Close releases the underlying reader.
func (s *Source) Close() error {
	return s.reader.Close()
}
