package relay

// Stats is a snapshot of the relay's packet counters.
//
// Drops are expected behavior, not errors; the counters exist so that policy
// decisions are observable.
type Stats struct {
	// Relayed is the number of copies transmitted.
	Relayed uint64

	// DropSelf counts datagrams discarded by the self-traffic filter.
	DropSelf uint64

	// DropLoopback counts datagrams discarded by the loopback-source policy.
	DropLoopback uint64

	// DropOrigin counts datagrams whose source belonged to no configured
	// segment.
	DropOrigin uint64

	// SendErrors counts transmissions that failed.
	SendErrors uint64
}
