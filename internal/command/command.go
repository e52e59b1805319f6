// Package command normalizes external inputs (button edges, remote messages)
// into commands applied to the thermostat state once per control-loop tick.
// Handlers run on transport callbacks and must only enqueue; the loop is the
// single writer of state.
package command

import "github.com/sweeney/thermostat/internal/thermostat"

// Kind discriminates command variants.
type Kind string

const (
	KindSetMode      Kind = "set-mode"
	KindCycleMode    Kind = "cycle-mode"
	KindSetTarget    Kind = "set-target"
	KindAdjustTarget Kind = "adjust-target"
	KindSetAppliance Kind = "set-appliance"
	KindMasterOff    Kind = "master-off"
)

// Command is a normalized input event. Only the fields relevant to Kind are
// set.
type Command struct {
	Kind      Kind
	Mode      thermostat.Mode      // KindSetMode
	Value     float64              // KindSetTarget
	Step      float64              // KindAdjustTarget, signed degrees
	Appliance thermostat.Appliance // KindSetAppliance
	On        bool                 // KindSetAppliance
}

// Limits bound the settable target temperature.
type Limits struct {
	MinTarget float64
	MaxTarget float64
}

// Clamp forces v into the target range.
func (l Limits) Clamp(v float64) float64 {
	if v < l.MinTarget {
		return l.MinTarget
	}
	if v > l.MaxTarget {
		return l.MaxTarget
	}
	return v
}

// Changed reports which externally visible attributes a command modified.
type Changed struct {
	Mode   bool
	Target bool
}

// Any reports whether anything changed.
func (c Changed) Any() bool {
	return c.Mode || c.Target
}

// Apply mutates state according to the command. Out-of-range targets are
// clamped; invalid modes were already rejected at the router boundary.
//
// A manual appliance command arriving while not in manual mode forces manual
// mode first: manual device control always implies manual mode.
func Apply(s *thermostat.State, c Command, limits Limits) Changed {
	var changed Changed

	switch c.Kind {
	case KindSetMode:
		changed.Mode = setMode(s, c.Mode)

	case KindCycleMode:
		changed.Mode = setMode(s, s.Mode.Next())

	case KindSetTarget:
		changed.Target = setTarget(s, limits.Clamp(c.Value))

	case KindAdjustTarget:
		changed.Target = setTarget(s, limits.Clamp(s.Target+c.Step))

	case KindSetAppliance:
		changed.Mode = setMode(s, thermostat.ModeManual)
		s.PendingManual = &thermostat.Request{Appliance: c.Appliance, On: c.On}

	case KindMasterOff:
		changed.Mode = setMode(s, thermostat.ModeOff)
	}

	return changed
}

func setMode(s *thermostat.State, m thermostat.Mode) bool {
	if s.Mode == m {
		return false
	}
	s.Mode = m
	if m != thermostat.ModeManual {
		s.PendingManual = nil
	}
	return true
}

func setTarget(s *thermostat.State, v float64) bool {
	if s.Target == v {
		return false
	}
	s.Target = v
	return true
}
