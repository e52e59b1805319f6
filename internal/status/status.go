// Package status provides a thread-safe status tracker for the thermostat
// daemon. It is read by HTTP handlers and the Prometheus collector.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/thermostat/internal/connectivity"
	"github.com/sweeney/thermostat/internal/thermostat"
)

// Link is a point-in-time view of one monitored connectivity channel.
type Link struct {
	State    connectivity.ChannelState
	Failures int
}

// Config contains daemon configuration for display.
type Config struct {
	Broker          string
	HTTPAddr        string
	DisplayUnit     string
	MinTarget       float64
	MaxTarget       float64
	UpdateSeconds   int
	MinCycleSeconds int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Mode          thermostat.Mode
	Target        float64
	Actual        float64
	Humidity      float64
	Action        thermostat.Action
	Heating       bool
	Cooling       bool
	Fan           bool
	Deferred      bool
	LockRemaining int
	SensorFaults  int
	Bus           Link
	Network       Link
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Mode:      thermostat.ModeOff,
			Action:    thermostat.ActionIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the control state, last sensor reading, and fault count.
// Called from runLoop after every evaluation.
func (t *Tracker) Update(s thermostat.State, humidity float64, faults int) {
	t.mu.Lock()
	t.snap.Mode = s.Mode
	t.snap.Target = s.Target
	t.snap.Actual = s.Actual
	t.snap.Humidity = humidity
	t.snap.Action = s.Action()
	t.snap.Heating = s.Heating
	t.snap.Cooling = s.Cooling
	t.snap.Fan = s.Fan
	t.snap.Deferred = s.Deferred
	t.snap.LockRemaining = s.LockRemaining
	t.snap.SensorFaults = faults
	t.mu.Unlock()
}

// SetBus sets the broker link state.
func (t *Tracker) SetBus(l Link) {
	t.mu.Lock()
	t.snap.Bus = l
	t.mu.Unlock()
}

// SetNetwork sets the network link state.
func (t *Tracker) SetNetwork(l Link) {
	t.mu.Lock()
	t.snap.Network = l
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
