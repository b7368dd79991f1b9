// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// frame splitter and field parser for consuming an upstream LLM streaming
// endpoint. Text arrives in arbitrary network-sized pieces; the Splitter
// reassembles it into complete frames and ParseFrame extracts the fields
// of each frame.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// DoneSentinel is the literal data payload some providers send as a final
// frame to mark the end of a stream, distinct from any JSON payload.
const DoneSentinel = "[DONE]"

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// Empty reports whether no recognized field was present in the frame.
// Callers should skip empty events (e.g. keep-alive comment frames).
func (e Event) Empty() bool {
	return e.Type == "" && e.Data == "" && e.ID == ""
}

// Done reports whether the event carries the stream-end sentinel payload.
func (e Event) Done() bool {
	return e.Data == DoneSentinel
}

// ParseFrame parses one complete frame's text (everything between two blank
// lines, without the trailing delimiter) into an Event.
//
// Per the SSE spec, each line has the form "field:value" where a single
// space after the colon is optional and stripped if present. Comment lines
// (leading ':') and lines with unrecognized field names are ignored rather
// than treated as errors, since upstream providers interleave keep-alives
// and vendor extensions freely.
func ParseFrame(frame string) Event {
	var ev Event
	var hasData bool

	for _, line := range strings.Split(frame, "\n") {
		// Tolerate CRLF line endings.
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		var field, value string
		if before, after, ok := strings.Cut(line, ":"); ok {
			field = before
			// Strip a single leading space after the colon, per spec.
			value = strings.TrimPrefix(after, " ")
		} else {
			// Line with no colon: the entire line is the field name with
			// an empty value.
			field = line
		}

		switch field {
		case "data":
			if hasData {
				// Multiple data fields are joined with "\n".
				ev.Data += "\n"
			}
			ev.Data += value
			hasData = true
		case "event":
			ev.Type = value
		case "id":
			ev.ID = value
		default:
			// * "retry" is intentionally ignored — not relevant for a client
			//   that never reconnects mid-stream.
			// * Other unknown fields are ignored per the SSE spec.
		}
	}

	return ev
}
