package stream

import (
	"encoding/json"

	"github.com/morfolab/morfo/pkg/sse"
)

// ActionKind classifies what a dispatched event asks the session to do.
type ActionKind int

const (
	// ActionIgnore drops the event: housekeeping frames, unknown event
	// types, and payloads that fail to parse. Never fatal.
	ActionIgnore ActionKind = iota

	// ActionAppend appends Text to the logical output buffer.
	ActionAppend

	// ActionComplete marks the stream finished successfully.
	ActionComplete

	// ActionFail terminates the stream with Message.
	ActionFail
)

// Action is the dispatcher's verdict for one SSE event.
type Action struct {
	Kind    ActionKind
	Text    string
	Message string
}

// Upstream event types the dispatcher acts on. The upstream vocabulary is
// open-ended (item-added, content-part markers, and whatever gets added
// next), so anything unrecognized is ignored rather than enumerated.
const (
	eventTextDelta = "response.output_text.delta"
	eventCompleted = "response.completed"
	eventFailed    = "response.failed"
	eventError     = "error"
)

// failFallback is used when an error event carries no message of its own.
const failFallback = "the upstream stream reported an error"

// deltaPayload is the envelope of a text-delta event. The delta field
// arrives in one of two shapes: a flat string, or an object carrying a
// type discriminant and the text.
type deltaPayload struct {
	Delta json.RawMessage `json:"delta"`
}

// structuredDelta is the nested delta shape.
type structuredDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// errorPayload covers both error envelope shapes seen upstream.
type errorPayload struct {
	Message string `json:"message"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Dispatch decides what a parsed SSE event means for the session: a text
// delta to accumulate, a completion signal, an error, or noise to skip.
func Dispatch(ev sse.Event) Action {
	if ev.Done() {
		return Action{Kind: ActionComplete}
	}
	if ev.Empty() {
		return Action{Kind: ActionIgnore}
	}

	switch ev.Type {
	case eventTextDelta:
		return dispatchDelta(ev.Data)

	case eventCompleted:
		return Action{Kind: ActionComplete}

	case eventFailed, eventError:
		return Action{Kind: ActionFail, Message: errorMessage(ev.Data)}

	default:
		return Action{Kind: ActionIgnore}
	}
}

func dispatchDelta(data string) Action {
	var payload deltaPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		// Upstream noise; tolerate it.
		return Action{Kind: ActionIgnore}
	}
	if len(payload.Delta) == 0 {
		return Action{Kind: ActionIgnore}
	}

	// Flat shape: "delta" is the text itself.
	var flat string
	if err := json.Unmarshal(payload.Delta, &flat); err == nil {
		return Action{Kind: ActionAppend, Text: flat}
	}

	// Structured shape: "delta" is an object whose type discriminant must
	// mark it as a text delta.
	var nested structuredDelta
	if err := json.Unmarshal(payload.Delta, &nested); err == nil {
		switch nested.Type {
		case "output_text_delta", "text_delta":
			return Action{Kind: ActionAppend, Text: nested.Text}
		}
	}

	return Action{Kind: ActionIgnore}
}

func errorMessage(data string) string {
	var payload errorPayload
	if err := json.Unmarshal([]byte(data), &payload); err == nil {
		if payload.Error != nil && payload.Error.Message != "" {
			return payload.Error.Message
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return failFallback
}
