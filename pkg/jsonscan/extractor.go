// Package jsonscan extracts complete top-level JSON objects from an
// incrementally growing text buffer.
//
// The upstream model emits JSON objects embedded in a raw text stream, split
// across deltas at arbitrary offsets and possibly interleaved with non-JSON
// noise. The Extractor accumulates that text and emits each object the
// moment its closing brace arrives, using a brace-depth scanner that is
// string-literal and escape aware, so braces inside string values never
// affect depth counting.
package jsonscan

import "encoding/json"

// DefaultLimit is the default cap on the accumulated text buffer. The limit
// keeps memory bounded even when the upstream emits malformed or non-JSON
// content indefinitely; oldest data is dropped once the cap is exceeded.
const DefaultLimit = 512 * 1024

// scanState is the scanner's position-independent lexing state.
type scanState int

const (
	// scanNormal is structural scanning, outside any string literal.
	scanNormal scanState = iota

	// scanString is inside a string literal; braces are inert.
	scanString

	// scanStringEscape is inside a string literal, immediately after a
	// backslash; the next character is consumed without interpretation,
	// so an escaped quote does not terminate the string.
	scanStringEscape
)

// Extractor scans accumulated text for complete top-level JSON objects.
// Scanner state persists across Append calls, so each character is examined
// exactly once no matter how the input is split. The zero value is ready to
// use with DefaultLimit; an Extractor is not safe for concurrent use.
type Extractor struct {
	buf   string
	limit int

	// pos is the next unexamined index in buf.
	pos int

	// start is the index of the '{' opening the current top-level object,
	// or -1 when no object is open.
	start int

	depth int
	state scanState
}

// NewExtractor returns an Extractor whose buffer is capped at limit bytes.
// A non-positive limit selects DefaultLimit.
func NewExtractor(limit int) *Extractor {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Extractor{limit: limit, start: -1}
}

// Append adds text to the buffer and returns every complete top-level JSON
// object it closes, in the order their closing braces occur. Each returned
// value is a standalone copy; the consumed prefix is removed from the
// buffer and an unmatched trailing partial object is retained for the next
// Append. Candidates that close with balanced braces but fail to parse as
// JSON are discarded silently and never re-attempted.
func (e *Extractor) Append(text string) []json.RawMessage {
	if e.limit == 0 {
		// Zero value construction.
		e.limit = DefaultLimit
		e.start = -1
	}

	e.buf += text

	var objects []json.RawMessage
	for i := e.pos; i < len(e.buf); i++ {
		c := e.buf[i]

		switch e.state {
		case scanString:
			switch c {
			case '\\':
				e.state = scanStringEscape
			case '"':
				e.state = scanNormal
			}

		case scanStringEscape:
			e.state = scanString

		default:
			switch c {
			case '"':
				// Quotes at depth zero are noise, not literals; entering
				// string mode there could swallow a following object.
				if e.depth > 0 {
					e.state = scanString
				}
			case '{':
				if e.depth == 0 {
					e.start = i
				}
				e.depth++
			case '}':
				if e.depth == 0 {
					// Stray close brace in noise.
					continue
				}
				e.depth--
				if e.depth == 0 {
					candidate := e.buf[e.start : i+1]
					if json.Valid([]byte(candidate)) {
						raw := make(json.RawMessage, len(candidate))
						copy(raw, candidate)
						objects = append(objects, raw)
					}
					// Drop the candidate and any noise preceding it, then
					// continue scanning the remainder from the top.
					e.buf = e.buf[i+1:]
					e.start = -1
					i = -1
				}
			}
		}
	}
	e.pos = len(e.buf)

	e.enforceLimit()

	return objects
}

// Rest returns the unconsumed remainder: trailing noise plus any partial
// object still waiting for its closing brace.
func (e *Extractor) Rest() string {
	return e.buf
}

// Reset discards all buffered text and scanner state.
func (e *Extractor) Reset() {
	e.buf = ""
	e.pos = 0
	e.start = -1
	e.depth = 0
	e.state = scanNormal
}

// enforceLimit drops the oldest buffered text once the cap is exceeded.
// If the head of an in-progress object is cut off it can never parse, so
// the scanner state resets; any dangling close braces that later arrive
// land at depth zero and are ignored as noise.
func (e *Extractor) enforceLimit() {
	if len(e.buf) <= e.limit {
		return
	}

	drop := len(e.buf) - e.limit
	e.buf = e.buf[drop:]
	e.pos = len(e.buf)

	if e.start >= drop {
		e.start -= drop
		return
	}

	e.start = -1
	e.depth = 0
	e.state = scanNormal
}
