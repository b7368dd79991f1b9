package morph

import (
	"encoding/json"
	"fmt"
)

// Morpheme is one segment of an analyzed word.
type Morpheme struct {
	// Text is the surface text of the segment, e.g. "ler".
	Text string `json:"text"`

	// Category is the linguistic category used for color coding,
	// e.g. "root", "plural", "case", "tense", "person".
	Category string `json:"category"`

	// Gloss is a short human-readable description of the segment's role.
	Gloss string `json:"gloss,omitempty"`
}

// Entry is a morphological breakdown of one surface form. This is the
// presentation-layer view of a content object; the streaming core passes
// entries through without ever decoding them.
type Entry struct {
	// Surface is the full analyzed word, e.g. "evlerimizden".
	Surface string `json:"surface"`

	// Morphemes are the segments in left-to-right order.
	Morphemes []Morpheme `json:"morphemes,omitempty"`

	// Translation is an optional whole-word translation.
	Translation string `json:"translation,omitempty"`

	// Note is an optional markdown usage note.
	Note string `json:"note,omitempty"`
}

// DecodeEntry decodes a content object into an Entry. It returns an error
// for objects that are not entries or that lack a surface form.
func DecodeEntry(o Object) (*Entry, error) {
	if o.Type != TypeEntry {
		return nil, fmt.Errorf("object type %q is not an entry", o.Type)
	}

	var entry Entry
	if err := json.Unmarshal(o.Raw, &entry); err != nil {
		return nil, fmt.Errorf("decoding entry: %w", err)
	}

	if entry.Surface == "" {
		return nil, fmt.Errorf("entry has no surface form")
	}

	return &entry, nil
}
