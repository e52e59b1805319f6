package thermostat

// Switch is a single relay flip produced by an admitted request. A request to
// turn one appliance on can carry up to two extra off-switches for the
// mutually exclusive appliances.
type Switch struct {
	Appliance Appliance
	On        bool
}

// Outcome reports what the gate did with a request.
type Outcome struct {
	// Admitted is false when the cycle lock suppressed the request.
	Admitted bool

	// Switched lists the relay flips to propagate, in the order they were
	// applied. Empty unless Admitted.
	Switched []Switch

	// Action is the resulting action after an admitted request.
	Action Action
}

// Gate is the minimum-cycle-time lockout. It is the only component allowed to
// flip appliance state; the state machine only issues requests. The lock
// protects compressors and motors from short-cycling.
type Gate struct {
	minCycle int // seconds; 0 disables the lock
}

// NewGate creates a gate with the given minimum cycle duration in seconds.
func NewGate(minCycleSeconds int) *Gate {
	return &Gate{minCycle: minCycleSeconds}
}

// Admit applies the request if the cycle lock has expired, or defers it.
//
// On admission the appliance flips are applied (including the implicit
// turn-offs of the other appliances), the lock restarts, and the deferred
// flag clears. On deferral nothing changes except the deferred flag; the
// request will be re-issued by the next evaluation once the lock expires.
func (g *Gate) Admit(s *State, req Request) Outcome {
	if s.LockRemaining > 0 && g.minCycle != 0 {
		s.Deferred = true
		return Outcome{Admitted: false}
	}

	var switched []Switch

	if req.On {
		switched = append(switched, Switch{Appliance: req.Appliance, On: true})
		for _, other := range []Appliance{Heating, Cooling, Fan} {
			if other != req.Appliance && s.ApplianceOn(other) {
				switched = append(switched, Switch{Appliance: other, On: false})
			}
		}
		s.Heating = req.Appliance == Heating
		s.Cooling = req.Appliance == Cooling
		s.Fan = req.Appliance == Fan
	} else {
		switched = append(switched, Switch{Appliance: req.Appliance, On: false})
		setAppliance(s, req.Appliance, false)
	}

	s.LockRemaining = g.minCycle
	s.Deferred = false

	return Outcome{
		Admitted: true,
		Switched: switched,
		Action:   s.Action(),
	}
}

// Tick decrements the cycle-lock countdown by one second. It returns true
// when the lock just expired with a change still deferred, which means the
// caller must re-evaluate immediately.
func (g *Gate) Tick(s *State) bool {
	if s.LockRemaining == 0 {
		return false
	}
	s.LockRemaining--
	return s.LockRemaining == 0 && s.Deferred
}

func setAppliance(s *State, a Appliance, on bool) {
	switch a {
	case Heating:
		s.Heating = on
	case Cooling:
		s.Cooling = on
	case Fan:
		s.Fan = on
	}
}
