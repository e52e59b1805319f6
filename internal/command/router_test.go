package command

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/thermostat/internal/thermostat"
)

func newTestRouter(t *testing.T) (*Router, *Queue) {
	t.Helper()
	q := NewQueue(16, slog.Default())
	return NewRouter(q, slog.Default()), q
}

func TestRouterModeCommand(t *testing.T) {
	tests := []struct {
		payload string
		want    thermostat.Mode
		dropped bool
	}{
		{payload: "heat", want: thermostat.ModeHeat},
		{payload: "cool", want: thermostat.ModeCool},
		{payload: "auto", want: thermostat.ModeAuto},
		{payload: "off", want: thermostat.ModeOff},
		{payload: "man", want: thermostat.ModeManual},
		{payload: "fan_only", want: thermostat.ModeFan},
		{payload: " HEAT\n", want: thermostat.ModeHeat},
		{payload: "eco", dropped: true},
		{payload: "", dropped: true},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			r, q := newTestRouter(t)
			r.ModeCommand(tt.payload)

			cmds := q.Drain()
			if tt.dropped {
				assert.Empty(t, cmds)
				return
			}
			require.Len(t, cmds, 1)
			assert.Equal(t, Command{Kind: KindSetMode, Mode: tt.want}, cmds[0])
		})
	}
}

func TestRouterTargetCommand(t *testing.T) {
	r, q := newTestRouter(t)

	r.TargetCommand("21.5")
	r.TargetCommand("not-a-number")
	r.TargetCommand("")

	cmds := q.Drain()
	require.Len(t, cmds, 1)
	assert.Equal(t, Command{Kind: KindSetTarget, Value: 21.5}, cmds[0])
}

func TestRouterApplianceCommand(t *testing.T) {
	r, q := newTestRouter(t)

	r.ApplianceCommand(thermostat.Heating, "ON")
	r.ApplianceCommand(thermostat.Cooling, "off")
	r.ApplianceCommand(thermostat.Fan, "toggle")

	cmds := q.Drain()
	require.Len(t, cmds, 2)
	assert.Equal(t, Command{Kind: KindSetAppliance, Appliance: thermostat.Heating, On: true}, cmds[0])
	assert.Equal(t, Command{Kind: KindSetAppliance, Appliance: thermostat.Cooling, On: false}, cmds[1])
}

func TestRouterButtons(t *testing.T) {
	r, q := newTestRouter(t)

	r.ModePress()
	r.TargetPress(false)
	r.TargetPress(true)
	r.MasterOff()

	cmds := q.Drain()
	require.Len(t, cmds, 4)
	assert.Equal(t, KindCycleMode, cmds[0].Kind)
	assert.Equal(t, Command{Kind: KindAdjustTarget, Step: 1}, cmds[1])
	assert.Equal(t, Command{Kind: KindAdjustTarget, Step: -1}, cmds[2])
	assert.Equal(t, KindMasterOff, cmds[3].Kind)
}

func TestQueueBounded(t *testing.T) {
	q := NewQueue(2, slog.Default())

	assert.True(t, q.Enqueue(Command{Kind: KindCycleMode}))
	assert.True(t, q.Enqueue(Command{Kind: KindMasterOff}))
	assert.False(t, q.Enqueue(Command{Kind: KindCycleMode}), "third command should be dropped")
	assert.Equal(t, 2, q.Len())

	cmds := q.Drain()
	require.Len(t, cmds, 2)
	assert.Nil(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestApply(t *testing.T) {
	limits := Limits{MinTarget: 15, MaxTarget: 25}

	t.Run("set mode", func(t *testing.T) {
		s := thermostat.NewState()
		changed := Apply(&s, Command{Kind: KindSetMode, Mode: thermostat.ModeHeat}, limits)
		assert.True(t, changed.Mode)
		assert.Equal(t, thermostat.ModeHeat, s.Mode)

		// Same mode again: nothing changed.
		changed = Apply(&s, Command{Kind: KindSetMode, Mode: thermostat.ModeHeat}, limits)
		assert.False(t, changed.Any())
	})

	t.Run("cycle mode", func(t *testing.T) {
		s := thermostat.NewState()
		changed := Apply(&s, Command{Kind: KindCycleMode}, limits)
		assert.True(t, changed.Mode)
		assert.Equal(t, thermostat.ModeAuto, s.Mode)
	})

	t.Run("set target clamps", func(t *testing.T) {
		s := thermostat.NewState()
		changed := Apply(&s, Command{Kind: KindSetTarget, Value: 40}, limits)
		assert.True(t, changed.Target)
		assert.Equal(t, 25.0, s.Target)

		changed = Apply(&s, Command{Kind: KindSetTarget, Value: -5}, limits)
		assert.True(t, changed.Target)
		assert.Equal(t, 15.0, s.Target)
	})

	t.Run("adjust target clamps at bounds", func(t *testing.T) {
		s := thermostat.NewState()
		s.Target = 25
		changed := Apply(&s, Command{Kind: KindAdjustTarget, Step: 1}, limits)
		assert.False(t, changed.Target, "already at max")
		assert.Equal(t, 25.0, s.Target)

		changed = Apply(&s, Command{Kind: KindAdjustTarget, Step: -1}, limits)
		assert.True(t, changed.Target)
		assert.Equal(t, 24.0, s.Target)
	})

	t.Run("appliance command forces manual mode", func(t *testing.T) {
		s := thermostat.NewState()
		s.Mode = thermostat.ModeAuto
		changed := Apply(&s, Command{Kind: KindSetAppliance, Appliance: thermostat.Heating, On: true}, limits)
		assert.True(t, changed.Mode)
		assert.Equal(t, thermostat.ModeManual, s.Mode)
		require.NotNil(t, s.PendingManual)
		assert.Equal(t, thermostat.Request{Appliance: thermostat.Heating, On: true}, *s.PendingManual)
	})

	t.Run("appliance command in manual mode keeps mode", func(t *testing.T) {
		s := thermostat.NewState()
		s.Mode = thermostat.ModeManual
		changed := Apply(&s, Command{Kind: KindSetAppliance, Appliance: thermostat.Fan, On: true}, limits)
		assert.False(t, changed.Mode)
		require.NotNil(t, s.PendingManual)
	})

	t.Run("master off", func(t *testing.T) {
		s := thermostat.NewState()
		s.Mode = thermostat.ModeManual
		s.PendingManual = &thermostat.Request{Appliance: thermostat.Heating, On: true}

		changed := Apply(&s, Command{Kind: KindMasterOff}, limits)
		assert.True(t, changed.Mode)
		assert.Equal(t, thermostat.ModeOff, s.Mode)
		assert.Nil(t, s.PendingManual, "leaving manual mode clears the pending command")
	})

	t.Run("leaving manual clears pending command", func(t *testing.T) {
		s := thermostat.NewState()
		s.Mode = thermostat.ModeManual
		s.PendingManual = &thermostat.Request{Appliance: thermostat.Fan, On: true}

		Apply(&s, Command{Kind: KindSetMode, Mode: thermostat.ModeAuto}, limits)
		assert.Nil(t, s.PendingManual)
	})
}
