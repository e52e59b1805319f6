package connectivity

import (
	"context"
	"net"
)

// NetworkProber checks network reachability by dialing a TCP address (the
// broker host in practice). Only the success/failure signal matters; joining
// the network itself is the operating system's job, so Reconnect is just
// another dial.
type NetworkProber struct {
	addr   string
	dialer net.Dialer
}

// NewNetworkProber creates a prober for the given "host:port" address.
func NewNetworkProber(addr string) *NetworkProber {
	return &NetworkProber{addr: addr}
}

// Probe dials the address and closes the connection.
func (p *NetworkProber) Probe(ctx context.Context) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Reconnect re-dials the address.
func (p *NetworkProber) Reconnect(ctx context.Context) error {
	return p.Probe(ctx)
}
