// Package connectivity tracks link health for the channels the thermostat
// depends on (network reachability, message-bus session). It performs bounded
// retries with a fixed backoff and escalates to a full restart after repeated
// failure: a half-initialized session is judged less safe than a clean reboot
// into the safe default state.
package connectivity

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrRestartRequired is returned by Check once a channel reaches the maximum
// number of consecutive failures. The caller must terminate so the supervisor
// restarts the process from scratch.
var ErrRestartRequired = errors.New("connectivity: max failures reached, restart required")

// Health is the result of a single health check.
type Health int

const (
	Healthy Health = iota
	Degraded
)

func (h Health) String() string {
	if h == Healthy {
		return "healthy"
	}
	return "degraded"
}

// ChannelState is the monitor's view of the channel.
type ChannelState string

const (
	StateConnected    ChannelState = "connected"
	StateReconnecting ChannelState = "reconnecting"
	StateFailed       ChannelState = "failed"
)

// Prober probes and re-establishes a single channel. Both calls must honor
// the context deadline: the control loop may not block past it.
type Prober interface {
	Probe(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

// Monitor tracks one channel's health. Not safe for concurrent use; the
// control loop is the only caller.
type Monitor struct {
	name         string
	prober       Prober
	maxFailures  int
	retryDelay   time.Duration
	probeTimeout time.Duration
	logger       *slog.Logger

	// wait blocks for the retry delay; injectable so tests don't sleep.
	wait func(ctx context.Context, d time.Duration) error

	failures    int
	state       ChannelState
	lastSuccess time.Time
}

// NewMonitor creates a monitor for the named channel.
func NewMonitor(name string, prober Prober, maxFailures int, retryDelay, probeTimeout time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		name:         name,
		prober:       prober,
		maxFailures:  maxFailures,
		retryDelay:   retryDelay,
		probeTimeout: probeTimeout,
		logger:       logger.With(slog.String("component", "connectivity"), slog.String("channel", name)),
		wait:         sleepCtx,
		state:        StateConnected,
	}
}

// Check probes the channel. On a probe failure it makes one reconnect attempt
// after the fixed retry delay. Any success resets the consecutive-failure
// counter. When the counter reaches the maximum, Check returns Degraded with
// ErrRestartRequired.
func (m *Monitor) Check(ctx context.Context) (Health, error) {
	if err := m.probe(ctx); err == nil {
		m.succeed()
		return Healthy, nil
	} else {
		m.logger.Warn("probe failed", slog.Any("err", err))
	}

	m.state = StateReconnecting
	if err := m.wait(ctx, m.retryDelay); err != nil {
		return Degraded, nil
	}

	if err := m.reconnect(ctx); err == nil {
		m.logger.Info("reconnected")
		m.succeed()
		return Healthy, nil
	} else {
		m.logger.Warn("reconnect failed", slog.Any("err", err))
	}

	m.failures++
	if m.failures >= m.maxFailures {
		m.state = StateFailed
		m.logger.Error("max consecutive failures reached", slog.Int("failures", m.failures))
		return Degraded, ErrRestartRequired
	}
	return Degraded, nil
}

func (m *Monitor) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()
	return m.prober.Probe(ctx)
}

func (m *Monitor) reconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()
	return m.prober.Reconnect(ctx)
}

func (m *Monitor) succeed() {
	m.failures = 0
	m.state = StateConnected
	m.lastSuccess = time.Now()
}

// Failures returns the consecutive-failure counter.
func (m *Monitor) Failures() int {
	return m.failures
}

// State returns the channel state after the last check.
func (m *Monitor) State() ChannelState {
	return m.state
}

// LastSuccess returns the time of the last successful probe or reconnect.
func (m *Monitor) LastSuccess() time.Time {
	return m.lastSuccess
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
