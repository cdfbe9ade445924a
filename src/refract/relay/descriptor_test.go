package relay

import (
	"net"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Descriptor", func() {
	eth := Descriptor{
		Address:   net.IPv4(192, 168, 1, 10),
		Mask:      net.CIDRMask(24, 32),
		ForwardTo: []net.IP{MDNSGroup},
	}

	tunnel := Descriptor{
		Address:   net.IPv4(10, 0, 0, 2),
		Mask:      net.CIDRMask(8, 32),
		ForwardTo: []net.IP{net.IPv4(10, 0, 0, 3)},
	}

	Describe("Contains", func() {
		It("returns true for an address on the local segment", func() {
			Expect(eth.Contains(net.IPv4(192, 168, 1, 22))).To(BeTrue())
		})

		It("returns false for an address outside the local segment", func() {
			Expect(eth.Contains(net.IPv4(192, 168, 2, 22))).To(BeFalse())
		})

		It("returns false for a non-IPv4 address", func() {
			Expect(eth.Contains(net.ParseIP("2001:db8::1"))).To(BeFalse())
		})
	})

	Describe("Multicast", func() {
		It("returns true when the destinations are multicast groups", func() {
			Expect(eth.Multicast()).To(BeTrue())
		})

		It("returns false when the destinations are unicast peers", func() {
			Expect(tunnel.Multicast()).To(BeFalse())
		})
	})

	Describe("ForwardsFrom", func() {
		It("repeats traffic that originated on another segment", func() {
			Expect(tunnel.ForwardsFrom(net.IPv4(192, 168, 1, 22))).To(BeTrue())
		})

		It("does not repeat traffic back onto its own segment", func() {
			Expect(tunnel.ForwardsFrom(net.IPv4(10, 0, 0, 3))).To(BeFalse())
		})

		It("repeats its own segment's traffic when it is the reverse aggregation point", func() {
			aggregator := tunnel
			aggregator.Reverse = true

			Expect(aggregator.ForwardsFrom(net.IPv4(10, 0, 0, 3))).To(BeTrue())
		})
	})

	Describe("Validate", func() {
		It("accepts a well-formed descriptor", func() {
			Expect(eth.Validate()).ShouldNot(HaveOccurred())
			Expect(tunnel.Validate()).ShouldNot(HaveOccurred())
		})

		It("rejects a non-IPv4 interface address", func() {
			d := eth
			d.Address = net.ParseIP("2001:db8::1")

			Expect(d.Validate()).To(MatchError("interface address 2001:db8::1 is not an IPv4 address"))
		})

		It("rejects a multicast interface address", func() {
			d := eth
			d.Address = MDNSGroup

			err := d.Validate()
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("not a unicast address"))
		})

		It("rejects a missing subnet mask", func() {
			d := eth
			d.Mask = nil

			err := d.Validate()
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("subnet mask"))
		})

		It("rejects an empty forwarding list", func() {
			d := eth
			d.ForwardTo = nil

			err := d.Validate()
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no forwarding destinations"))
		})

		It("rejects forwarding to the interface itself", func() {
			d := tunnel
			d.ForwardTo = []net.IP{d.Address}

			err := d.Validate()
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("forwards to itself"))
		})

		It("rejects mixing unicast and multicast destinations", func() {
			d := tunnel
			d.ForwardTo = []net.IP{net.IPv4(10, 0, 0, 3), MDNSGroup}

			err := d.Validate()
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("mixes multicast and unicast"))
		})
	})
})

var _ = Describe("DescriptorSet", func() {
	set := DescriptorSet{
		{
			Address:   net.IPv4(192, 168, 1, 10),
			Mask:      net.CIDRMask(24, 32),
			ForwardTo: []net.IP{MDNSGroup},
		},
		{
			Address:   net.IPv4(10, 0, 0, 2),
			Mask:      net.CIDRMask(8, 32),
			ForwardTo: []net.IP{net.IPv4(10, 0, 0, 3)},
		},
	}

	Describe("Owns", func() {
		It("returns true for the relay's own addresses", func() {
			Expect(set.Owns(net.IPv4(192, 168, 1, 10))).To(BeTrue())
			Expect(set.Owns(net.IPv4(10, 0, 0, 2))).To(BeTrue())
		})

		It("returns false for other hosts", func() {
			Expect(set.Owns(net.IPv4(192, 168, 1, 22))).To(BeFalse())
		})
	})

	Describe("Local", func() {
		It("returns true for an address on any configured segment", func() {
			Expect(set.Local(net.IPv4(192, 168, 1, 22))).To(BeTrue())
			Expect(set.Local(net.IPv4(10, 200, 0, 1))).To(BeTrue())
		})

		It("returns false for an address on no configured segment", func() {
			Expect(set.Local(net.IPv4(172, 16, 0, 9))).To(BeFalse())
		})
	})
})
