package morph_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/morfolab/morfo/pkg/morph"
)

var _ = Describe("Decode", func() {
	It("tags an object by its type discriminant", func() {
		o := morph.Decode(json.RawMessage(`{"type":"entry","surface":"ev"}`))
		Expect(o.Type).To(Equal(morph.TypeEntry))
		Expect(string(o.Raw)).To(Equal(`{"type":"entry","surface":"ev"}`))
	})

	It("recognizes the done marker", func() {
		o := morph.Decode(json.RawMessage(`{"type":"done"}`))
		Expect(o.IsDone()).To(BeTrue())
	})

	It("passes objects without a type through as opaque content", func() {
		o := morph.Decode(json.RawMessage(`{"surface":"ev"}`))
		Expect(o.Type).To(BeEmpty())
		Expect(o.IsDone()).To(BeFalse())
	})

	It("tolerates a non-string type value", func() {
		o := morph.Decode(json.RawMessage(`{"type":7}`))
		Expect(o.Type).To(BeEmpty())
	})
})

var _ = Describe("DecodeEntry", func() {
	It("decodes a full entry", func() {
		raw := `{
			"type": "entry",
			"surface": "evlerimizden",
			"morphemes": [
				{"text": "ev", "category": "root", "gloss": "house"},
				{"text": "ler", "category": "plural"},
				{"text": "imiz", "category": "person", "gloss": "our"},
				{"text": "den", "category": "case", "gloss": "from"}
			],
			"translation": "from our houses",
			"note": "ablative case"
		}`

		entry, err := morph.DecodeEntry(morph.Decode(json.RawMessage(raw)))
		Expect(err).NotTo(HaveOccurred())
		Expect(entry.Surface).To(Equal("evlerimizden"))
		Expect(entry.Morphemes).To(HaveLen(4))
		Expect(entry.Morphemes[0].Text).To(Equal("ev"))
		Expect(entry.Morphemes[0].Category).To(Equal("root"))
		Expect(entry.Morphemes[1].Gloss).To(BeEmpty())
		Expect(entry.Translation).To(Equal("from our houses"))
		Expect(entry.Note).To(Equal("ablative case"))
	})

	It("rejects objects that are not entries", func() {
		_, err := morph.DecodeEntry(morph.Decode(json.RawMessage(`{"type":"done"}`)))
		Expect(err).To(HaveOccurred())
	})

	It("rejects entries without a surface form", func() {
		_, err := morph.DecodeEntry(morph.Decode(json.RawMessage(`{"type":"entry","translation":"x"}`)))
		Expect(err).To(MatchError(ContainSubstring("no surface form")))
	})
})
