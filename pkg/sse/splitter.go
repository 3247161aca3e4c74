package sse

// Splitter reassembles complete SSE frames from a byte stream delivered in
// arbitrary chunks. Network read boundaries have no relationship to frame
// boundaries, so the Splitter keeps an internal buffer across Feed calls: a
// delimiter split exactly across two chunks still yields one frame.
//
// A Splitter belongs to exactly one stream. Concurrent streams must each own
// their own Splitter.
type Splitter struct {
	buf []byte

	// pos is where the next delimiter scan resumes. Bytes before pos have
	// already been scanned without a match, minus a small overlap for a
	// delimiter split across Feed calls.
	pos int
}

// NewSplitter returns an empty Splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Feed appends p to the internal buffer and returns all complete frames now
// available, in stream order. A frame is the text before a blank line (two
// consecutive line terminators, LF or CRLF). Bytes after the last delimiter
// stay buffered for the next call.
//
// p may be any size, including a single byte or empty. No upper bound is
// imposed on a single frame: an unterminated frame keeps buffering, and a
// caller needing a cap must enforce it above this layer.
func (s *Splitter) Feed(p []byte) []string {
	s.buf = append(s.buf, p...)

	var frames []string
	for {
		i, skip := s.findDelimiter()
		if i < 0 {
			break
		}

		frames = append(frames, string(s.buf[:i]))
		s.buf = s.buf[i+skip:]
		s.pos = 0
	}

	return frames
}

// Buffered returns the number of bytes held for an incomplete frame.
func (s *Splitter) Buffered() int {
	return len(s.buf)
}

// Reset discards any buffered partial frame.
func (s *Splitter) Reset() {
	s.buf = nil
	s.pos = 0
}

// findDelimiter scans for a blank line starting at s.pos. It returns the
// index where the frame ends and the delimiter's byte length, or (-1, 0)
// when no complete delimiter is buffered yet.
//
// A blank line is "\n\n" or "\n\r\n"; both CRLF sequences reduce to those
// two patterns because the byte before the first "\n" is part of the frame
// text (a trailing "\r" there is stripped by ParseFrame).
func (s *Splitter) findDelimiter() (int, int) {
	for i := s.pos; i < len(s.buf); i++ {
		if s.buf[i] != '\n' {
			continue
		}

		if i+1 < len(s.buf) && s.buf[i+1] == '\n' {
			return i, 2
		}
		if i+2 < len(s.buf) && s.buf[i+1] == '\r' && s.buf[i+2] == '\n' {
			return i, 3
		}
	}

	// No match. Resume the next scan a delimiter-width back so a split
	// "\n\r\n" or "\n\n" is still found once the rest arrives.
	s.pos = len(s.buf) - 2
	if s.pos < 0 {
		s.pos = 0
	}

	return -1, 0
}
