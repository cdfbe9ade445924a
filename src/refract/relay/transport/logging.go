package transport

import (
	"net"

	"github.com/dogmatiq/dodeca/logging"
)

func logListening(logger logging.Logger, addr *net.UDPAddr, iface *net.Interface, groups []net.IP) {
	if iface == nil {
		logging.Debug(
			logger,
			"listening for relayed traffic on %s",
			addr,
		)
		return
	}

	logging.Debug(
		logger,
		"listening for %s group traffic on %s (%s)",
		groups,
		addr,
		iface.Name,
	)
}

func logReadError(logger logging.Logger, addr *net.UDPAddr, err error) {
	logging.Debug(
		logger,
		"unable to read packet via %s: %s",
		addr,
		err,
	)
}

func logWriteError(logger logging.Logger, dest, addr *net.UDPAddr, err error) {
	logging.Log(
		logger,
		"unable to send packet to %s via %s: %s",
		dest,
		addr,
		err,
	)
}
