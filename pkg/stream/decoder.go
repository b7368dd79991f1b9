// Package stream implements the streaming analysis session: it issues the
// request to the upstream completion endpoint and drives the per-chunk
// pipeline of UTF-8 decoding, SSE frame splitting, event dispatch, and JSON
// object extraction, emitting structured objects to the caller in arrival
// order.
package stream

import (
	"strings"
	"unicode/utf8"
)

// Decoder converts raw network chunks into text, preserving multi-byte
// UTF-8 sequences that are split across chunk boundaries. Incomplete
// trailing bytes are carried over and prepended to the next chunk, so the
// decoded stream is identical however the bytes were chunked.
//
// The zero value is ready to use. A Decoder is not safe for concurrent use.
type Decoder struct {
	carry []byte
}

// Decode appends chunk to any carried-over bytes and returns the longest
// decodable prefix as text. Invalid byte sequences are substituted with
// U+FFFD rather than aborting; decoding never fails.
func (d *Decoder) Decode(chunk []byte) string {
	b := make([]byte, 0, len(d.carry)+len(chunk))
	b = append(b, d.carry...)
	b = append(b, chunk...)

	cut := completePrefix(b)
	d.carry = append(d.carry[:0], b[cut:]...)

	return toText(b[:cut])
}

// Flush returns any remaining carried bytes as text. Call at end of
// transport; a non-empty result means the stream ended mid-character and
// the partial sequence decodes to a substitution character.
func (d *Decoder) Flush() string {
	if len(d.carry) == 0 {
		return ""
	}
	out := toText(d.carry)
	d.carry = d.carry[:0]
	return out
}

// completePrefix returns the length of the longest prefix of b that does
// not end in a truncated multi-byte sequence. Only the final rune can be
// truncated, so at most utf8.UTFMax-1 trailing bytes are examined.
func completePrefix(b []byte) int {
	for j := len(b) - 1; j >= 0 && j > len(b)-utf8.UTFMax; j-- {
		if !utf8.RuneStart(b[j]) {
			continue
		}
		if size := runeLen(b[j]); size > len(b)-j {
			// Truncated sequence; hold it back for the next chunk.
			return j
		}
		break
	}
	return len(b)
}

// runeLen returns the encoded length a UTF-8 sequence starting with lead
// claims. Invalid lead bytes report 1 so they pass through (and later
// degrade to a substitution character) instead of stalling the stream.
func runeLen(lead byte) int {
	switch {
	case lead < 0x80:
		return 1
	case lead >= 0xF0:
		return 4
	case lead >= 0xE0:
		return 3
	case lead >= 0xC0:
		return 2
	default:
		return 1
	}
}

func toText(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
