// Package relay implements a relay for link-local multicast discovery
// traffic (mDNS, SSDP) between network segments that multicast cannot reach
// directly, such as an Ethernet segment and point-to-point tunnel endpoints.
package relay

import (
	"fmt"
	"net"
)

// Descriptor describes one relay-participating network interface.
//
// Descriptors are produced once at startup and never mutated; the engine
// treats the set as read-only for the process lifetime.
type Descriptor struct {
	// Address is the local IPv4 address bound on this interface.
	Address net.IP

	// Mask is the subnet mask of the interface's local segment. It is used
	// to decide whether a received packet originated on this segment, not
	// for routing.
	Mask net.IPMask

	// ForwardTo is the ordered set of destinations this interface repeats
	// traffic to: either unicast peer addresses, or multicast group
	// addresses to re-announce on this interface's segment. The two kinds
	// are never mixed in one descriptor.
	ForwardTo []net.IP

	// Reverse marks the aggregation point of a star topology. A reverse
	// interface also repeats traffic that originated on its own segment,
	// fanning it back out to the remaining peers, and relayed copies carry
	// the aggregator's address as their source.
	Reverse bool
}

// Validate reports the first problem that makes the descriptor unusable.
func (d Descriptor) Validate() error {
	addr := d.Address.To4()
	if addr == nil {
		return fmt.Errorf("interface address %s is not an IPv4 address", d.Address)
	}

	if addr.IsMulticast() || addr.IsUnspecified() {
		return fmt.Errorf("interface address %s is not a unicast address", d.Address)
	}

	if len(d.Mask) != net.IPv4len {
		return fmt.Errorf("interface %s does not have a valid IPv4 subnet mask", d.Address)
	}

	if len(d.ForwardTo) == 0 {
		return fmt.Errorf("interface %s has no forwarding destinations", d.Address)
	}

	for _, t := range d.ForwardTo {
		if t.To4() == nil {
			return fmt.Errorf("interface %s forwards to %s, which is not an IPv4 address", d.Address, t)
		}

		if t.Equal(d.Address) {
			return fmt.Errorf("interface %s forwards to itself", d.Address)
		}

		if t.IsMulticast() != d.Multicast() {
			return fmt.Errorf("interface %s mixes multicast and unicast forwarding destinations", d.Address)
		}
	}

	return nil
}

// Multicast returns true if the descriptor forwards to multicast groups
// rather than unicast peers.
func (d Descriptor) Multicast() bool {
	return len(d.ForwardTo) > 0 && d.ForwardTo[0].IsMulticast()
}

// Contains returns true if ip belongs to the interface's local segment, as
// defined by its address and mask.
func (d Descriptor) Contains(ip net.IP) bool {
	ip = ip.To4()
	if ip == nil {
		return false
	}

	return d.Address.Mask(d.Mask).Equal(ip.Mask(d.Mask))
}

// ForwardsFrom returns true if this interface must repeat a datagram whose
// observed source address is src.
//
// An interface never repeats traffic that originated on its own segment,
// unless it is the reverse aggregation point, which fans such traffic back
// out to its remaining peers.
func (d Descriptor) ForwardsFrom(src net.IP) bool {
	return d.Reverse || !d.Contains(src)
}

// DescriptorSet is the immutable set of interfaces the relay participates
// on.
type DescriptorSet []Descriptor

// Owns returns true if ip is one of the relay's own interface addresses.
func (s DescriptorSet) Owns(ip net.IP) bool {
	for _, d := range s {
		if d.Address.Equal(ip) {
			return true
		}
	}

	return false
}

// Local returns true if ip belongs to the local segment of at least one
// interface in the set.
func (s DescriptorSet) Local(ip net.IP) bool {
	for _, d := range s {
		if d.Contains(ip) {
			return true
		}
	}

	return false
}
