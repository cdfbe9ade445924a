package relay

import (
	"net"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("TranslateSource", func() {
	It("substitutes the aggregator's address for any original source", func() {
		aggregator := net.IPv4(10, 0, 0, 1)

		Expect(TranslateSource(net.IPv4(10, 0, 0, 2), aggregator)).To(Equal(aggregator))
		Expect(TranslateSource(net.IPv4(192, 168, 1, 22), aggregator)).To(Equal(aggregator))
		Expect(TranslateSource(nil, aggregator)).To(Equal(aggregator))
	})
})
