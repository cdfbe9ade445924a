package transport

import (
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// Inbound is a datagram received from a Binding.
//
// The payload is opaque to the relay; it exists only for the duration of one
// relay decision.
type Inbound struct {
	// Source is the observed source address of the datagram.
	Source *net.UDPAddr

	// Data is the datagram payload, backed by a pooled buffer.
	Data []byte
}

// Message returns the DNS message contained in the packet, if it is one.
//
// The forwarding path never consults the message; it exists for diagnostics
// only.
func (p *Inbound) Message() (*dns.Msg, error) {
	m := &dns.Msg{}
	return m, m.Unpack(p.Data)
}

// Summary returns a short description of the payload for the debug trace.
func (p *Inbound) Summary() string {
	if m, err := p.Message(); err == nil {
		if m.Response {
			return fmt.Sprintf("dns response, %d answer(s)", len(m.Answer))
		}
		return fmt.Sprintf("dns query, %d question(s)", len(m.Question))
	}

	return fmt.Sprintf("%d byte payload", len(p.Data))
}

// Close returns the packet's data buffer to the pool.
func (p *Inbound) Close() {
	putBuffer(p.Data)
	p.Data = nil
}
