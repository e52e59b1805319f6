// Package thermostat contains the pure control core: the mode/appliance state
// machine and the cycle-time actuation gate. This package has NO external
// dependencies (no MQTT, GPIO, OS, or time.Sleep). Time enters only as the
// once-per-second lock countdown tick driven by the caller.
package thermostat

// Mode is the operating mode of the thermostat.
type Mode string

const (
	ModeOff    Mode = "off"
	ModeAuto   Mode = "auto"
	ModeManual Mode = "man"
	ModeHeat   Mode = "heat"
	ModeCool   Mode = "cool"
	ModeFan    Mode = "fan"
)

// Modes lists all modes in mode-cycle order (the order the mode button steps
// through).
var Modes = []Mode{ModeOff, ModeAuto, ModeManual, ModeHeat, ModeCool, ModeFan}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Next returns the mode after m in mode-cycle order.
func (m Mode) Next() Mode {
	for i, known := range Modes {
		if m == known {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return ModeOff
}

// Appliance identifies one of the three controlled outputs.
type Appliance string

const (
	Heating Appliance = "heating"
	Cooling Appliance = "cooling"
	Fan     Appliance = "fan"
)

// Action is the currently running action, as reported outward.
type Action string

const (
	ActionIdle    Action = "idle"
	ActionHeating Action = "heating"
	ActionCooling Action = "cooling"
	ActionFan     Action = "fan"
)

// Request asks the gate to turn a single appliance on or off. Turning an
// appliance on implies turning the other two off; the gate applies that
// implicit exclusion when the request is admitted.
type Request struct {
	Appliance Appliance
	On        bool
}

// State is the mutable thermostat state. It has a single writer (the control
// loop); everything else sees value snapshots.
type State struct {
	Mode   Mode
	Target float64 // degrees Celsius, clamped to configured limits
	Actual float64 // last admitted sensor reading, Celsius

	Heating bool
	Cooling bool
	Fan     bool

	// PendingManual is the manual command awaiting evaluation while in
	// manual mode. It stays set until superseded; re-evaluating an already
	// satisfied command is a no-op.
	PendingManual *Request

	// LockRemaining is the cycle-lock countdown in seconds. 0 means a
	// transition is admissible now.
	LockRemaining int

	// Deferred is true when a requested transition was suppressed by the
	// cycle lock. It drives the blink/alert feedback.
	Deferred bool
}

// DefaultTarget is the target temperature after every (re)start, in Celsius.
const DefaultTarget = 20.0

// NewState returns the startup state: mode off, all appliances off, default
// target.
func NewState() State {
	return State{
		Mode:   ModeOff,
		Target: DefaultTarget,
	}
}

// Action returns the action implied by the appliance booleans.
func (s State) Action() Action {
	switch {
	case s.Heating:
		return ActionHeating
	case s.Cooling:
		return ActionCooling
	case s.Fan:
		return ActionFan
	default:
		return ActionIdle
	}
}

// ApplianceOn reports whether the given appliance is currently on.
func (s State) ApplianceOn(a Appliance) bool {
	switch a {
	case Heating:
		return s.Heating
	case Cooling:
		return s.Cooling
	case Fan:
		return s.Fan
	}
	return false
}

// Exclusive reports whether at most one appliance is on. Every reachable
// state must satisfy this.
func (s State) Exclusive() bool {
	n := 0
	for _, on := range []bool{s.Heating, s.Cooling, s.Fan} {
		if on {
			n++
		}
	}
	return n <= 1
}
