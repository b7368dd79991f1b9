package sse

// Splitter incrementally splits decoded stream text into complete SSE
// frames. Network reads land at arbitrary byte offsets, so a frame's text
// routinely spans multiple Feed calls; the Splitter holds the trailing,
// possibly-incomplete fragment and prepends it to the next Feed.
//
// Frames are returned in arrival order. The zero value is ready to use.
// A Splitter is not safe for concurrent use; each stream session owns one.
type Splitter struct {
	// buf holds at most one partial frame: the remainder after the last
	// blank-line delimiter seen so far.
	buf string
}

// Feed appends text to the pending buffer and returns the text of every
// frame completed by it, in order. The returned frame texts exclude the
// blank-line delimiter; pass each to ParseFrame.
func (s *Splitter) Feed(text string) []string {
	s.buf += text

	var frames []string
	for {
		end, next := frameEnd(s.buf)
		if end < 0 {
			break
		}
		frames = append(frames, s.buf[:end])
		s.buf = s.buf[next:]
	}

	return frames
}

// Rest returns the buffered partial frame text. A non-empty rest at
// end-of-transport is a frame the upstream never terminated; callers may
// choose to parse it anyway (some providers omit the final blank line).
func (s *Splitter) Rest() string {
	return s.buf
}

// Reset discards any buffered partial frame.
func (s *Splitter) Reset() {
	s.buf = ""
}

// frameEnd locates the first blank-line frame delimiter in buf, tolerating
// both LF and CRLF conventions. It returns the index where the frame text
// ends and the index where the next frame begins, or (-1, -1) when no
// complete delimiter is present yet.
func frameEnd(buf string) (end, next int) {
	for i := 0; i < len(buf); i++ {
		if buf[i] != '\n' {
			continue
		}
		// A newline ends a line; the frame ends if the following line is
		// blank ("\n" or "\r\n").
		j := i + 1
		if j < len(buf) && buf[j] == '\r' {
			j++
		}
		if j < len(buf) && buf[j] == '\n' {
			return i, j + 1
		}
	}
	return -1, -1
}
