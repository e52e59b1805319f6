package thermostat

// Tolerances configure the swing band around the target temperature.
// An appliance engages once the reading drifts a full tolerance past the
// target, but only disengages when the reading crosses back through the
// target itself. The gap is intentional (swing mode): it keeps appliances
// from flapping around the setpoint.
type Tolerances struct {
	Cold float64 // degrees below target before heating engages
	Heat float64 // degrees above target before cooling (or fan) engages
}

// Machine evaluates state and decides the next appliance transition.
// It is pure: it never mutates state and has no side effects. The returned
// request is consumed by the Gate.
type Machine struct {
	tol Tolerances
}

// NewMachine creates a state machine with the given tolerances.
func NewMachine(tol Tolerances) *Machine {
	return &Machine{tol: tol}
}

// Evaluate returns the single transition the thermostat wants to make, or nil
// if the current appliance states already match the mode and temperature.
//
// Check order: heat-on, cool-on, fan-on, heat-off, cool-off, fan-off. The
// first match wins, so each evaluation produces at most one request. The fan
// engages on the heat tolerance: in fan mode it substitutes for cooling and
// shares the warmer threshold.
func (m *Machine) Evaluate(s State) *Request {
	if s.Mode == ModeManual {
		return m.evaluateManual(s)
	}

	switch {
	case s.Actual <= s.Target-m.tol.Cold && !s.Heating &&
		(s.Mode == ModeAuto || s.Mode == ModeHeat):
		return &Request{Appliance: Heating, On: true}

	case s.Actual >= s.Target+m.tol.Heat && !s.Cooling &&
		(s.Mode == ModeAuto || s.Mode == ModeCool):
		return &Request{Appliance: Cooling, On: true}

	case s.Actual >= s.Target+m.tol.Heat && !s.Fan &&
		s.Mode == ModeFan:
		return &Request{Appliance: Fan, On: true}

	case s.Heating &&
		(s.Actual >= s.Target || s.Mode == ModeOff || s.Mode == ModeCool || s.Mode == ModeFan):
		return &Request{Appliance: Heating, On: false}

	case s.Cooling &&
		(s.Actual <= s.Target || s.Mode == ModeOff || s.Mode == ModeHeat || s.Mode == ModeFan):
		return &Request{Appliance: Cooling, On: false}

	case s.Fan &&
		(s.Actual <= s.Target || s.Mode == ModeOff || s.Mode == ModeHeat || s.Mode == ModeCool):
		return &Request{Appliance: Fan, On: false}
	}

	return nil
}

// evaluateManual honors exactly the pending manual command. Temperature is
// ignored; a command that would not change state is a no-op.
func (m *Machine) evaluateManual(s State) *Request {
	cmd := s.PendingManual
	if cmd == nil {
		return nil
	}
	if s.ApplianceOn(cmd.Appliance) == cmd.On {
		return nil
	}
	req := *cmd
	return &req
}
