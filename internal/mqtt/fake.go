package mqtt

import (
	"github.com/sweeney/thermostat/internal/sensor"
	"github.com/sweeney/thermostat/internal/thermostat"
)

// RelayCommand records one PublishRelay call.
type RelayCommand struct {
	Appliance thermostat.Appliance
	On        bool
}

// FakePublisher records published state for test assertions.
type FakePublisher struct {
	// Modes contains all published mode states.
	Modes []thermostat.Mode

	// Targets contains all published target temperatures.
	Targets []float64

	// Actions contains all published actions.
	Actions []thermostat.Action

	// Relays contains all relay commands in publish order.
	Relays []RelayCommand

	// SensorStates contains all published sensor samples.
	SensorStates []sensor.Reading

	// Deferred contains all published deferred advisories.
	Deferred []bool

	// Availability contains all published availability states.
	Availability []bool

	// DiscoveryCount counts PublishDiscovery calls.
	DiscoveryCount int

	// PublishError, if set, is returned by every publish method.
	PublishError error

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Connected: true}
}

func (f *FakePublisher) PublishMode(mode thermostat.Mode) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Modes = append(f.Modes, mode)
	return nil
}

func (f *FakePublisher) PublishTarget(target float64) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Targets = append(f.Targets, target)
	return nil
}

func (f *FakePublisher) PublishAction(action thermostat.Action) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Actions = append(f.Actions, action)
	return nil
}

func (f *FakePublisher) PublishRelay(appliance thermostat.Appliance, on bool) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Relays = append(f.Relays, RelayCommand{Appliance: appliance, On: on})
	return nil
}

func (f *FakePublisher) PublishSensorState(reading sensor.Reading) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SensorStates = append(f.SensorStates, reading)
	return nil
}

func (f *FakePublisher) PublishDeferred(deferred bool) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Deferred = append(f.Deferred, deferred)
	return nil
}

func (f *FakePublisher) PublishAvailability(online bool) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Availability = append(f.Availability, online)
	return nil
}

func (f *FakePublisher) PublishDiscovery() error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.DiscoveryCount++
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded publishes.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{Connected: f.Connected}
}

// LastRelay returns the most recent relay command, or nil.
func (f *FakePublisher) LastRelay() *RelayCommand {
	if len(f.Relays) == 0 {
		return nil
	}
	return &f.Relays[len(f.Relays)-1]
}
