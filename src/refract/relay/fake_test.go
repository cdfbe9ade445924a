package relay

import (
	"errors"
	"net"
	"sync"

	"github.com/jmalloc/refract/src/refract/relay/transport"
)

// fakeBinding is an in-memory binding used to exercise the engine without
// sockets.
type fakeBinding struct {
	packets chan *transport.Inbound
	done    chan struct{}
	once    sync.Once

	mu     sync.Mutex
	fail   map[string]error
	writes []fakeWrite
}

type fakeWrite struct {
	Dst  *net.UDPAddr
	Data []byte
}

func newFakeBinding() *fakeBinding {
	return &fakeBinding{
		packets: make(chan *transport.Inbound),
		done:    make(chan struct{}),
		fail:    map[string]error{},
	}
}

func (b *fakeBinding) Read() (*transport.Inbound, error) {
	select {
	case in := <-b.packets:
		return in, nil
	case <-b.done:
		return nil, errors.New("binding is closed")
	}
}

func (b *fakeBinding) WriteTo(payload []byte, dst *net.UDPAddr) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.fail[dst.IP.String()]; err != nil {
		return err
	}

	b.writes = append(b.writes, fakeWrite{
		Dst:  dst,
		Data: append([]byte(nil), payload...),
	})

	return nil
}

func (b *fakeBinding) Close() error {
	b.once.Do(func() {
		close(b.done)
	})

	return nil
}

// failTo makes future writes to addr fail.
func (b *fakeBinding) failTo(addr net.IP, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fail[addr.String()] = err
}

// Writes returns a snapshot of the writes performed so far.
func (b *fakeBinding) Writes() []fakeWrite {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]fakeWrite(nil), b.writes...)
}

// destinations returns the IP of each write, in order.
func destinations(writes []fakeWrite) []string {
	var ips []string
	for _, w := range writes {
		ips = append(ips, w.Dst.IP.String())
	}

	return ips
}
