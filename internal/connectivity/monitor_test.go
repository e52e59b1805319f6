package connectivity

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyProber fails Probe and Reconnect according to a script of booleans
// (true = succeed).
type flakyProber struct {
	probes     []bool
	reconnects []bool
	probeIdx   int
	recIdx     int
}

func (f *flakyProber) Probe(_ context.Context) error {
	ok := f.next(&f.probeIdx, f.probes)
	if ok {
		return nil
	}
	return errors.New("probe failed")
}

func (f *flakyProber) Reconnect(_ context.Context) error {
	ok := f.next(&f.recIdx, f.reconnects)
	if ok {
		return nil
	}
	return errors.New("reconnect failed")
}

func (f *flakyProber) next(idx *int, script []bool) bool {
	if len(script) == 0 {
		return false
	}
	v := script[*idx]
	if *idx < len(script)-1 {
		*idx++
	}
	return v
}

func newTestMonitor(p Prober, maxFailures int) *Monitor {
	m := NewMonitor("test", p, maxFailures, 10*time.Millisecond, time.Second, slog.Default())
	m.wait = func(context.Context, time.Duration) error { return nil }
	return m
}

func TestMonitorHealthy(t *testing.T) {
	m := newTestMonitor(&flakyProber{probes: []bool{true}}, 3)

	health, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Healthy, health)
	assert.Equal(t, StateConnected, m.State())
	assert.Equal(t, 0, m.Failures())
	assert.False(t, m.LastSuccess().IsZero())
}

func TestMonitorReconnectRecovers(t *testing.T) {
	m := newTestMonitor(&flakyProber{probes: []bool{false}, reconnects: []bool{true}}, 3)

	health, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Healthy, health)
	assert.Equal(t, 0, m.Failures())
	assert.Equal(t, StateConnected, m.State())
}

// Three consecutive failed checks must escalate to a restart.
func TestMonitorEscalatesAfterMaxFailures(t *testing.T) {
	m := newTestMonitor(&flakyProber{}, 3)

	for i := 1; i <= 2; i++ {
		health, err := m.Check(context.Background())
		require.NoErrorf(t, err, "check %d should not escalate", i)
		assert.Equal(t, Degraded, health)
		assert.Equal(t, i, m.Failures())
	}

	health, err := m.Check(context.Background())
	assert.Equal(t, Degraded, health)
	assert.ErrorIs(t, err, ErrRestartRequired)
	assert.Equal(t, StateFailed, m.State())
}

// Two failures followed by a success reset the counter; restart never fires.
func TestMonitorSuccessResetsCounter(t *testing.T) {
	m := newTestMonitor(&flakyProber{
		probes:     []bool{false, false, true},
		reconnects: []bool{false},
	}, 3)

	for i := 1; i <= 2; i++ {
		health, err := m.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Degraded, health)
	}
	require.Equal(t, 2, m.Failures())

	health, err := m.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Healthy, health)
	assert.Equal(t, 0, m.Failures())

	// A further failure starts counting from scratch.
	m.prober = &flakyProber{}
	health, err = m.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Degraded, health)
	assert.Equal(t, 1, m.Failures())
}

func TestMonitorWaitRespectsContext(t *testing.T) {
	m := NewMonitor("test", &flakyProber{}, 3, time.Minute, time.Second, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	health, err := m.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, Degraded, health)
	assert.Less(t, time.Since(start), time.Second, "cancelled context must not wait the full retry delay")
}

func TestNetworkProber(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	p := NewNetworkProber(ln.Addr().String())
	assert.NoError(t, p.Probe(context.Background()))
	assert.NoError(t, p.Reconnect(context.Background()))

	ln.Close()
	assert.Error(t, p.Probe(context.Background()))
}
