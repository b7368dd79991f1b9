package jsonscan_test

import (
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/morfolab/morfo/pkg/jsonscan"
)

func rawStrings(raws []json.RawMessage) []string {
	out := make([]string, len(raws))
	for i, r := range raws {
		out[i] = string(r)
	}
	return out
}

var _ = Describe("Extractor", func() {
	var e *jsonscan.Extractor

	BeforeEach(func() {
		e = jsonscan.NewExtractor(0)
	})

	It("extracts a complete object the moment its closing brace arrives", func() {
		objects := e.Append(`{"type":"entry","surface":"köpek"}`)
		Expect(rawStrings(objects)).To(Equal([]string{`{"type":"entry","surface":"köpek"}`}))
		Expect(e.Rest()).To(BeEmpty())
	})

	It("holds a partial object until completed by a later append", func() {
		Expect(e.Append(`{"type":"entry",`)).To(BeEmpty())
		Expect(e.Rest()).To(Equal(`{"type":"entry",`))

		objects := e.Append(`"surface":"ev"}`)
		Expect(rawStrings(objects)).To(Equal([]string{`{"type":"entry","surface":"ev"}`}))
	})

	It("emits each object exactly once no matter how the input is split", func() {
		full := `{"a":1}{"b":2}{"c":3}`
		var got []string

		// Every possible single split point.
		for cut := 0; cut <= len(full); cut++ {
			e.Reset()
			got = nil
			got = append(got, rawStrings(e.Append(full[:cut]))...)
			got = append(got, rawStrings(e.Append(full[cut:]))...)
			Expect(got).To(Equal([]string{`{"a":1}`, `{"b":2}`, `{"c":3}`}), "split at %d", cut)
		}
	})

	It("returns multiple objects from one append in closing-brace order", func() {
		objects := e.Append(`{"first":1} {"second":{"nested":true}}`)
		Expect(rawStrings(objects)).To(Equal([]string{`{"first":1}`, `{"second":{"nested":true}}`}))
	})

	It("ignores braces inside string values", func() {
		input := `{"note":"use } and { freely"}`
		objects := e.Append(input)
		Expect(rawStrings(objects)).To(Equal([]string{input}))
	})

	It("handles escaped quotes inside strings", func() {
		input := `{"note":"a \"quoted}\" brace"}`
		objects := e.Append(input)
		Expect(rawStrings(objects)).To(Equal([]string{input}))
	})

	It("handles a string split right after a backslash", func() {
		objects := e.Append(`{"note":"say \`)
		Expect(objects).To(BeEmpty())
		objects = e.Append(`"hi\""}`)
		Expect(rawStrings(objects)).To(Equal([]string{`{"note":"say \"hi\""}`}))
	})

	It("skips surrounding non-JSON noise", func() {
		objects := e.Append("Here is your analysis: {\"ok\":true} hope it helps")
		Expect(rawStrings(objects)).To(Equal([]string{`{"ok":true}`}))
		Expect(e.Rest()).To(Equal(" hope it helps"))
	})

	It("ignores stray close braces in noise", func() {
		objects := e.Append(`} } {"ok":true}`)
		Expect(rawStrings(objects)).To(Equal([]string{`{"ok":true}`}))
	})

	It("does not let quotes at top level swallow a following object", func() {
		objects := e.Append(`The word "ev" means house. {"ok":true}`)
		Expect(rawStrings(objects)).To(Equal([]string{`{"ok":true}`}))
	})

	It("silently discards balanced but invalid candidates", func() {
		objects := e.Append(`{not json at all} {"ok":true}`)
		Expect(rawStrings(objects)).To(Equal([]string{`{"ok":true}`}))
	})

	It("handles deeply nested objects", func() {
		input := `{"a":{"b":{"c":{"d":[1,2,{"e":"f"}]}}}}`
		objects := e.Append(input)
		Expect(rawStrings(objects)).To(Equal([]string{input}))
	})

	Describe("buffer limit", func() {
		It("drops the oldest data once the cap is exceeded", func() {
			e = jsonscan.NewExtractor(16)

			Expect(e.Append(strings.Repeat("x", 100))).To(BeEmpty())
			Expect(len(e.Rest())).To(Equal(16))

			// Later well-formed objects still extract.
			objects := e.Append(`{"ok":true}`)
			Expect(rawStrings(objects)).To(Equal([]string{`{"ok":true}`}))
		})

		It("abandons an object whose head was dropped", func() {
			e = jsonscan.NewExtractor(8)

			Expect(e.Append(`{"key":"` + strings.Repeat("v", 40))).To(BeEmpty())

			// The closing quote and brace arrive, but the opening brace is
			// long gone; nothing can be emitted for this object.
			Expect(e.Append(`"}`)).To(BeEmpty())

			objects := e.Append(`{"a":1}`)
			Expect(rawStrings(objects)).To(Equal([]string{`{"a":1}`}))
		})
	})

	Describe("Reset", func() {
		It("discards buffered text and scanner state", func() {
			e.Append(`{"partial":`)
			e.Reset()
			Expect(e.Rest()).To(BeEmpty())

			objects := e.Append(`{"fresh":1}`)
			Expect(rawStrings(objects)).To(Equal([]string{`{"fresh":1}`}))
		})
	})

	It("works from the zero value", func() {
		var zero jsonscan.Extractor
		objects := zero.Append(`{"ok":true}`)
		Expect(rawStrings(objects)).To(Equal([]string{`{"ok":true}`}))
	})
})
