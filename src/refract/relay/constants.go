package relay

import "net"

const (
	// MDNSPort is the mDNS port number.
	MDNSPort = 5353

	// SSDPPort is the SSDP port number.
	SSDPPort = 1900

	// DefaultPort is the port used when none is configured.
	DefaultPort = MDNSPort
)

var (
	// MDNSGroup is the multicast group used for mDNS over IPv4.
	//
	// See https://tools.ietf.org/html/rfc6762#section-3.
	MDNSGroup = net.ParseIP("224.0.0.251")

	// SSDPGroup is the multicast group used for SSDP over IPv4.
	SSDPGroup = net.ParseIP("239.255.255.250")
)
