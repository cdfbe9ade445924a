package transport

import (
	"fmt"
	"net"
)

// interfaceByAddress finds the network interface that carries the given IPv4
// address.
func interfaceByAddress(addr net.IP) (*net.Interface, error) {
	candidates, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, i := range candidates {
		addrs, err := i.Addrs()
		if err != nil {
			continue
		}

		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}

			if ipnet.IP.Equal(addr) {
				iface := i
				return &iface, nil
			}
		}
	}

	return nil, fmt.Errorf("no interface carries the address %s", addr)
}
