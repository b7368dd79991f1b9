// Package morph defines the objects the streaming core hands to its
// consumers. Every object the model emits carries a "type" discriminant;
// the core treats all content types as opaque payloads and only reserves
// "done" as the end-of-stream marker.
package morph

import "encoding/json"

// Reserved and well-known object type discriminants.
const (
	// TypeDone marks the terminal object: no further content follows.
	TypeDone = "done"

	// TypeEntry is a morphological analysis entry. The core never inspects
	// it; DecodeEntry is for presentation-layer use.
	TypeEntry = "entry"
)

// Object is one extracted JSON object tagged by its type discriminant.
// Raw is the verbatim object text; ownership passes to the consumer on
// emission and the core retains no reference.
type Object struct {
	Type string
	Raw  json.RawMessage
}

// Decode tags a raw JSON object by its "type" field. Objects without the
// field (or with a non-string value) get an empty Type and pass through
// as opaque content.
func Decode(raw json.RawMessage) Object {
	var envelope struct {
		Type string `json:"type"`
	}
	// Raw has already been validated as JSON by the extractor; a failure
	// here only means the discriminant is missing or oddly typed.
	_ = json.Unmarshal(raw, &envelope)

	return Object{Type: envelope.Type, Raw: raw}
}

// IsDone reports whether the object is the terminal marker.
func (o Object) IsDone() bool {
	return o.Type == TypeDone
}
