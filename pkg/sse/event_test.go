package sse_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/morfolab/morfo/pkg/sse"
)

var _ = Describe("ParseFrame", func() {
	It("parses event, data, and id fields", func() {
		ev := sse.ParseFrame("event: response.output_text.delta\ndata: {\"delta\":\"kö\"}\nid: 42")
		Expect(ev.Type).To(Equal("response.output_text.delta"))
		Expect(ev.Data).To(Equal(`{"delta":"kö"}`))
		Expect(ev.ID).To(Equal("42"))
	})

	It("strips a single leading space after the colon", func() {
		Expect(sse.ParseFrame("data: hello").Data).To(Equal("hello"))
		Expect(sse.ParseFrame("data:hello").Data).To(Equal("hello"))
		// Only one space is stripped.
		Expect(sse.ParseFrame("data:  hello").Data).To(Equal(" hello"))
	})

	It("joins multiple data lines with a newline", func() {
		ev := sse.ParseFrame("data: first\ndata: second\ndata: third")
		Expect(ev.Data).To(Equal("first\nsecond\nthird"))
	})

	It("preserves an explicitly empty data line when joining", func() {
		ev := sse.ParseFrame("data: first\ndata:\ndata: third")
		Expect(ev.Data).To(Equal("first\n\nthird"))
	})

	It("skips comment lines", func() {
		ev := sse.ParseFrame(": keep-alive\ndata: payload")
		Expect(ev.Data).To(Equal("payload"))
		Expect(ev.Type).To(BeEmpty())
	})

	It("ignores unknown fields", func() {
		ev := sse.ParseFrame("retry: 3000\nwhatever: x\ndata: payload")
		Expect(ev.Data).To(Equal("payload"))
	})

	It("treats a line with no colon as a field name with empty value", func() {
		ev := sse.ParseFrame("data")
		Expect(ev.Data).To(BeEmpty())
		Expect(ev.Empty()).To(BeTrue())
	})

	It("tolerates CRLF line endings", func() {
		ev := sse.ParseFrame("event: done\r\ndata: payload\r")
		Expect(ev.Type).To(Equal("done"))
		Expect(ev.Data).To(Equal("payload"))
	})

	Describe("Empty", func() {
		It("reports a frame with no recognized fields", func() {
			Expect(sse.ParseFrame(": just a comment").Empty()).To(BeTrue())
			Expect(sse.ParseFrame("data: x").Empty()).To(BeFalse())
		})
	})

	Describe("Done", func() {
		It("recognizes the [DONE] sentinel payload", func() {
			Expect(sse.ParseFrame("data: [DONE]").Done()).To(BeTrue())
			Expect(sse.ParseFrame("data: [DONE] ").Done()).To(BeFalse())
			Expect(sse.ParseFrame("data: {\"x\":1}").Done()).To(BeFalse())
		})
	})
})
