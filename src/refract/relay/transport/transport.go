// Package transport provides the UDP endpoints that the relay engine
// receives from and transmits on, one per configured interface.
package transport

import (
	"fmt"
	"net"

	"github.com/dogmatiq/dodeca/logging"

	ipvx "golang.org/x/net/ipv4"
)

// Config describes the endpoint a binding must provide for one interface.
type Config struct {
	// Address is the interface's local IPv4 address.
	Address net.IP

	// Groups is the set of multicast groups to join on the interface. When
	// empty the binding is a plain unicast socket bound to Address.
	Groups []net.IP

	// Port is the UDP port of the relayed discovery protocol. Both the
	// receiving socket and all transmitted copies use this port.
	Port int

	// ReadBuffer is the kernel receive buffer size, in bytes. Zero leaves
	// the system default in place.
	ReadBuffer int
}

// Binding is a live receive/send capability bound to one interface.
//
// A Binding is owned by whoever opened it and is safe for one concurrent
// reader; writes may come from any goroutine, since each WriteTo is an
// independent datagram send.
type Binding struct {
	addr   net.IP
	port   int
	groups []net.IP
	iface  *net.Interface
	conn   *net.UDPConn
	pc     *ipvx.PacketConn
	logger logging.Logger
}

// Open turns cfg into a working endpoint.
//
// A descriptor that forwards to multicast groups joins each group on the
// interface that owns cfg.Address and receives only traffic addressed to
// those groups arriving on that interface. A descriptor that forwards to
// unicast peers binds directly to cfg.Address.
//
// Any failure leaves no socket behind; the caller treats it as fatal for
// startup.
func Open(cfg Config, logger logging.Logger) (*Binding, error) {
	b := &Binding{
		addr:   cfg.Address,
		port:   cfg.Port,
		groups: cfg.Groups,
		logger: logger,
	}

	if len(cfg.Groups) == 0 {
		conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: cfg.Address, Port: cfg.Port})
		if err != nil {
			return nil, fmt.Errorf("cannot bind %s:%d: %w", cfg.Address, cfg.Port, err)
		}

		b.conn = conn
		b.pc = ipvx.NewPacketConn(conn)
	} else {
		iface, err := interfaceByAddress(cfg.Address)
		if err != nil {
			return nil, err
		}
		b.iface = iface

		// The group receiver binds the wildcard address so that several
		// bindings can share the well-known discovery port, one per
		// interface. Reads are filtered down to this interface and its
		// joined groups via control messages.
		conn, err := listenReuse(&net.UDPAddr{IP: net.IPv4zero, Port: cfg.Port})
		if err != nil {
			return nil, fmt.Errorf("cannot bind multicast socket for %s on port %d: %w", cfg.Address, cfg.Port, err)
		}

		b.conn = conn
		b.pc = ipvx.NewPacketConn(conn)

		if err := b.pc.SetControlMessage(ipvx.FlagInterface|ipvx.FlagDst, true); err != nil {
			b.conn.Close()
			return nil, fmt.Errorf("cannot enable control messages on %s: %w", iface.Name, err)
		}

		for _, g := range cfg.Groups {
			if err := b.pc.JoinGroup(iface, &net.UDPAddr{IP: g}); err != nil {
				b.conn.Close()
				return nil, fmt.Errorf(
					"cannot join the '%s' multicast group on the '%s' interface: %w",
					g,
					iface.Name,
					err,
				)
			}
		}

		// Outgoing group traffic egresses this interface only, with
		// link-local scope. Loopback is disabled so the binding does not
		// receive its own transmissions.
		b.pc.SetMulticastInterface(iface)
		b.pc.SetMulticastTTL(1)
		b.pc.SetMulticastLoopback(false)
	}

	if cfg.ReadBuffer > 0 {
		if err := b.conn.SetReadBuffer(cfg.ReadBuffer); err != nil {
			b.conn.Close()
			return nil, fmt.Errorf("cannot size receive buffer for %s: %w", cfg.Address, err)
		}
	}

	logListening(logger, b.LocalAddr(), b.iface, cfg.Groups)

	return b, nil
}

// Read returns the next datagram received on the binding's interface.
//
// It blocks until a datagram arrives, the binding is closed, or an
// unrecoverable socket error occurs. The returned packet's buffer is pooled;
// call its Close method once the relay decision is complete.
func (b *Binding) Read() (*Inbound, error) {
	buf := getBuffer()

	for {
		n, cm, src, err := b.pc.ReadFrom(buf)
		if err != nil {
			putBuffer(buf)
			logReadError(b.logger, b.LocalAddr(), err)
			return nil, err
		}

		udp, ok := src.(*net.UDPAddr)
		if !ok {
			continue
		}

		if b.iface != nil {
			// Wildcard-bound group sockets see traffic for every interface
			// and every group joined on the host; keep only packets that
			// arrived on this binding's interface addressed to one of its
			// own groups.
			if cm == nil || cm.IfIndex != b.iface.Index || !b.joined(cm.Dst) {
				continue
			}
		}

		return &Inbound{
			Source: udp,
			Data:   buf[:n],
		}, nil
	}
}

// WriteTo transmits one copy of payload to dst.
func (b *Binding) WriteTo(payload []byte, dst *net.UDPAddr) error {
	var cm *ipvx.ControlMessage
	if b.iface != nil {
		cm = &ipvx.ControlMessage{IfIndex: b.iface.Index}
	}

	if _, err := b.pc.WriteTo(payload, cm, dst); err != nil {
		logWriteError(b.logger, dst, b.LocalAddr(), err)
		return err
	}

	return nil
}

// LocalAddr returns the address the binding's socket is bound to.
func (b *Binding) LocalAddr() *net.UDPAddr {
	return b.conn.LocalAddr().(*net.UDPAddr)
}

// Close leaves any joined multicast groups and closes the socket, unblocking
// a pending Read.
func (b *Binding) Close() error {
	for _, g := range b.groups {
		b.pc.LeaveGroup(b.iface, &net.UDPAddr{IP: g})
	}

	return b.conn.Close()
}

func (b *Binding) joined(dst net.IP) bool {
	for _, g := range b.groups {
		if g.Equal(dst) {
			return true
		}
	}

	return false
}
