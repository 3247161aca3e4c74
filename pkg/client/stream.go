package client

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/papercomputeco/respond/pkg/responses"
	"github.com/papercomputeco/respond/pkg/sse"
	"github.com/papercomputeco/respond/pkg/stream"
)

// readChunkSize is the transport read size. Frame boundaries never align
// with it; the decoder owns reassembly.
const readChunkSize = 4096

// Stream iterates the decoded events of one streaming response. It is not
// safe for concurrent use.
type Stream struct {
	body    io.ReadCloser
	decoder *stream.Decoder
	logger  *zap.Logger

	// reader is non-nil when the stream is being recorded: events are
	// parsed through an sse.TeeReader so every raw byte of the body is
	// copied verbatim to the transcript as it is consumed.
	reader *sse.TeeReader

	pending []*responses.StreamingResponse
	buf     []byte
	err     error
}

func newStream(body io.ReadCloser, logger *zap.Logger) *Stream {
	return &Stream{
		body:    body,
		decoder: stream.NewDecoder(),
		logger:  logger,
		buf:     make([]byte, readChunkSize),
	}
}

func newRecordedStream(body io.ReadCloser, dest io.Writer, logger *zap.Logger) *Stream {
	return &Stream{
		body:    body,
		decoder: stream.NewDecoder(),
		logger:  logger,
		reader:  sse.NewTeeReader(body, dest),
	}
}

// Next returns the next decoded event. It returns io.EOF when the stream has
// completed (either via the [DONE] sentinel or the connection closing).
//
// Malformed frames are logged and skipped rather than terminating the
// stream: one bad frame must not cost the events behind it.
func (s *Stream) Next() (*responses.StreamingResponse, error) {
	if s.reader != nil {
		return s.nextRecorded()
	}

	for {
		if len(s.pending) > 0 {
			sr := s.pending[0]
			s.pending = s.pending[1:]
			return sr, nil
		}

		if s.decoder.Done() {
			return nil, io.EOF
		}
		if s.err != nil {
			if errors.Is(s.err, io.EOF) {
				return nil, io.EOF
			}
			return nil, s.err
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			emitted, decodeErr := s.decoder.Feed(s.buf[:n])
			if decodeErr != nil {
				s.logger.Warn("skipping malformed frames", zap.Error(decodeErr))
			}
			s.pending = append(s.pending, emitted...)
		}
		if err != nil {
			s.err = err
		}
	}
}

// nextRecorded drives the tee reader event by event. Malformed payloads are
// logged and skipped, same as the chunked path.
func (s *Stream) nextRecorded() (*responses.StreamingResponse, error) {
	for {
		if s.decoder.Done() {
			return nil, io.EOF
		}

		ev, err := s.reader.Next()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, io.EOF
		}

		sr, err := s.decoder.DecodeEvent(ev)
		if err != nil {
			s.logger.Warn("skipping malformed frame", zap.Error(err))
			continue
		}
		if sr != nil {
			return sr, nil
		}
	}
}

// Done reports whether the [DONE] completion sentinel has been seen.
func (s *Stream) Done() bool {
	return s.decoder.Done()
}

// Tracker exposes the decoder's container tracker, e.g. to read accumulated
// code interpreter source once the stream ends.
func (s *Stream) Tracker() *stream.Tracker {
	return s.decoder.Tracker()
}

// Close releases the underlying connection. Safe to call at any point,
// including before the stream is drained.
func (s *Stream) Close() error {
	return s.body.Close()
}
