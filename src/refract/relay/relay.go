package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/jmalloc/refract/src/refract/relay/transport"

	"github.com/dogmatiq/dodeca/logging"
	"golang.org/x/sync/errgroup"
)

// binding is the live receive/send capability of one interface.
// *transport.Binding satisfies it; tests substitute in-memory fakes.
type binding interface {
	Read() (*transport.Inbound, error)
	WriteTo(payload []byte, dst *net.UDPAddr) error
	Close() error
}

// bound pairs a descriptor with the binding opened for it.
type bound struct {
	desc Descriptor
	conn binding
}

// Relay receives discovery datagrams on each configured interface and
// repeats them onto the others according to the descriptors' forwarding
// rules.
type Relay struct {
	set           DescriptorSet
	port          int
	readBuffer    int
	allowLoopback bool
	logger        logging.Logger
	open          func(transport.Config, logging.Logger) (binding, error)

	bound []*bound

	relayed      uint64
	dropSelf     uint64
	dropLoopback uint64
	dropOrigin   uint64
	sendErrors   uint64
}

// New returns a relay for the given descriptor set.
//
// The set is copied; it is never mutated, before or after Run.
func New(set DescriptorSet, options ...Option) (*Relay, error) {
	if len(set) == 0 {
		return nil, errors.New("no interfaces configured")
	}

	for _, d := range set {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}

	r := &Relay{
		set:  append(DescriptorSet(nil), set...),
		port: DefaultPort,
		open: func(cfg transport.Config, logger logging.Logger) (binding, error) {
			return transport.Open(cfg, logger)
		},
	}

	for _, opt := range options {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.logger == nil {
		r.logger = logging.DefaultLogger
	}

	return r, nil
}

// Run relays datagrams until ctx is canceled or an unrecoverable error
// occurs. It returns nil on cancellation.
//
// Every interface must bind successfully before any relaying begins; a
// partially-bound relay would silently produce one-way traffic, so the first
// failure closes whatever was opened and is returned as a fatal error.
//
// Run may be called at most once.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.bind(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Closing the bindings unblocks the receive goroutines.
		<-gctx.Done()
		r.close()
		return gctx.Err()
	})

	for _, b := range r.bound {
		b := b
		g.Go(func() error {
			return r.receive(gctx, b)
		})
	}

	err := g.Wait()

	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// Stats returns a snapshot of the relay's packet counters.
func (r *Relay) Stats() Stats {
	return Stats{
		Relayed:      atomic.LoadUint64(&r.relayed),
		DropSelf:     atomic.LoadUint64(&r.dropSelf),
		DropLoopback: atomic.LoadUint64(&r.dropLoopback),
		DropOrigin:   atomic.LoadUint64(&r.dropOrigin),
		SendErrors:   atomic.LoadUint64(&r.sendErrors),
	}
}

// bind opens one binding per descriptor, in descriptor order.
func (r *Relay) bind() error {
	for _, d := range r.set {
		cfg := transport.Config{
			Address:    d.Address,
			Port:       r.port,
			ReadBuffer: r.readBuffer,
		}

		if d.Multicast() {
			cfg.Groups = d.ForwardTo
		}

		conn, err := r.open(cfg, r.logger)
		if err != nil {
			r.close()
			return fmt.Errorf("cannot start relaying on interface %s: %w", d.Address, err)
		}

		r.bound = append(r.bound, &bound{desc: d, conn: conn})
	}

	return nil
}

func (r *Relay) close() {
	for _, b := range r.bound {
		b.conn.Close()
	}
}

// receive relays datagrams arriving on b, in arrival order, until the
// binding is closed.
func (r *Relay) receive(ctx context.Context, b *bound) error {
	for {
		in, err := b.conn.Read()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("receiving on interface %s: %w", b.desc.Address, err)
		}

		r.relay(in)
		in.Close()
	}
}

// relay applies the forwarding and loop-prevention policy to one datagram.
func (r *Relay) relay(in *transport.Inbound) {
	src := in.Source.IP.To4()
	if src == nil {
		atomic.AddUint64(&r.dropOrigin, 1)
		return
	}

	// A source address the relay itself owns marks the datagram as a
	// loop-back of our own transmission; relaying it again would loop.
	if r.set.Owns(src) {
		atomic.AddUint64(&r.dropSelf, 1)
		r.logger.Debug("dropping own traffic from %s", in.Source)
		return
	}

	if src.IsLoopback() && !r.allowLoopback {
		atomic.AddUint64(&r.dropLoopback, 1)
		r.logger.Debug("dropping loopback-sourced traffic from %s", in.Source)
		return
	}

	if !r.set.Local(src) {
		atomic.AddUint64(&r.dropOrigin, 1)
		r.logger.Debug("dropping traffic from %s, which is on no known segment", in.Source)
		return
	}

	for _, out := range r.bound {
		if !out.desc.ForwardsFrom(src) {
			continue
		}

		outSrc := out.desc.Address
		if out.desc.Reverse {
			outSrc = TranslateSource(src, out.desc.Address)
		}

		for _, t := range out.desc.ForwardTo {
			// Never repeat a datagram back to the host it came from.
			if t.Equal(src) {
				continue
			}

			dst := &net.UDPAddr{IP: t, Port: r.port}

			if err := out.conn.WriteTo(in.Data, dst); err != nil {
				// Partial delivery is expected; the remaining destinations
				// still get their copies.
				atomic.AddUint64(&r.sendErrors, 1)
				r.logger.Log(
					"unable to relay %d bytes from %s to %s via %s: %s",
					len(in.Data),
					in.Source,
					dst,
					out.desc.Address,
					err,
				)
				continue
			}

			atomic.AddUint64(&r.relayed, 1)

			if r.logger.IsDebug() {
				r.logger.Debug(
					"relayed %s from %s to %s as %s",
					in.Summary(),
					in.Source,
					dst,
					outSrc,
				)
			}
		}
	}
}
