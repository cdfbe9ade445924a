package relay

import "net"

// TranslateSource computes the source address that a relayed copy must carry
// when it leaves a reverse-mode interface.
//
// In a star topology the remote peers cannot reach each other directly, so a
// copy that kept its original source would invite replies to an unreachable
// tunnel address. The substituted source is always the aggregator's own
// interface address, which routes replies back through the relay.
//
// The function is stateless and total over IPv4 addresses.
func TranslateSource(src, aggregator net.IP) net.IP {
	return aggregator
}
