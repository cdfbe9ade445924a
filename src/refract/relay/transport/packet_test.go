package transport

import (
	"github.com/miekg/dns"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Inbound", func() {
	Describe("Summary", func() {
		It("describes a DNS query", func() {
			m := &dns.Msg{}
			m.SetQuestion("printer.local.", dns.TypeA)
			data, err := m.Pack()
			Expect(err).ShouldNot(HaveOccurred())

			p := &Inbound{Data: data}

			Expect(p.Summary()).To(Equal("dns query, 1 question(s)"))
		})

		It("describes a DNS response", func() {
			q := &dns.Msg{}
			q.SetQuestion("printer.local.", dns.TypeA)

			m := &dns.Msg{}
			m.SetReply(q)
			data, err := m.Pack()
			Expect(err).ShouldNot(HaveOccurred())

			p := &Inbound{Data: data}

			Expect(p.Summary()).To(Equal("dns response, 0 answer(s)"))
		})

		It("falls back to a byte count for non-DNS payloads", func() {
			p := &Inbound{Data: []byte("NOTIFY * HTTP/1.1\r\n")}

			Expect(p.Summary()).To(Equal("19 byte payload"))
		})
	})
})
