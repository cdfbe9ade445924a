package relay

import (
	"fmt"

	"github.com/dogmatiq/dodeca/logging"
)

// Option is a function that applies an option to a relay created by New().
type Option func(*Relay) error

// UseLogger returns an option that sets the logger used by the relay.
func UseLogger(l logging.Logger) Option {
	return func(r *Relay) error {
		r.logger = l
		return nil
	}
}

// UsePort returns an option that sets the UDP port of the relayed discovery
// protocol. The default is DefaultPort.
func UsePort(port int) Option {
	return func(r *Relay) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("port %d is out of range", port)
		}

		r.port = port
		return nil
	}
}

// UseReadBuffer returns an option that sets the kernel receive buffer size,
// in bytes, of each interface's socket.
func UseReadBuffer(n int) Option {
	return func(r *Relay) error {
		if n <= 0 {
			return fmt.Errorf("receive buffer size %d is not positive", n)
		}

		r.readBuffer = n
		return nil
	}
}

// AllowLoopbackSources is an option that relays datagrams whose source is a
// loopback address.
//
// By default such datagrams are dropped, matching long-standing relay
// behavior; the drops are visible in Stats.
func AllowLoopbackSources(r *Relay) error {
	r.allowLoopback = true
	return nil
}
