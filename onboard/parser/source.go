package parser

import (
	"errors"
	"io"

	pkgerrors "github.com/pkg/errors"
)

const streamChunk = 512

var (
	ErrPositionOutOfRange = errors.New("position is outside of the source")
	ErrSourceExhausted    = errors.New("source exhausted before the requested position")
)

// Source is a byte cursor the lexer reads from. Read and Peek return io.EOF
// once the end of the input has been reached.
type Source interface {
	Read() (byte, error)
	Peek() (byte, error)
	Position() int64
	SetPosition(pos int64) error
}

// BufferSource reads from a fixed in-memory buffer.
type BufferSource struct {
	data []byte
	pos  int
}

func NewBufferSource(data []byte) *BufferSource {
	return &BufferSource{data: data}
}

func (s *BufferSource) Read() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func (s *BufferSource) Peek() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	return s.data[s.pos], nil
}

func (s *BufferSource) Position() int64 {
	return int64(s.pos)
}

func (s *BufferSource) SetPosition(pos int64) error {
	if pos < 0 || pos > int64(len(s.data)) {
		return ErrPositionOutOfRange
	}
	s.pos = int(pos)
	return nil
}

// StreamSource buffers a non-seekable reader so that earlier positions can be
// revisited. Moving past what has been buffered pulls more from the reader.
type StreamSource struct {
	r    io.Reader
	buf  []byte
	pos  int64
	done bool
	err  error
}

func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{r: r}
}

// fill blocks until at least n bytes are buffered or the reader is exhausted.
func (s *StreamSource) fill(n int64) {
	chunk := make([]byte, streamChunk)
	for int64(len(s.buf)) < n && !s.done {
		read, err := s.r.Read(chunk)
		s.buf = append(s.buf, chunk[:read]...)
		if err != nil {
			s.done = true
			if err != io.EOF {
				s.err = pkgerrors.Wrap(err, "reading stream source")
			}
		}
	}
}

func (s *StreamSource) Read() (byte, error) {
	b, err := s.Peek()
	if err != nil {
		return 0, err
	}
	s.pos++
	return b, nil
}

func (s *StreamSource) Peek() (byte, error) {
	s.fill(s.pos + 1)
	if s.pos >= int64(len(s.buf)) {
		if s.err != nil {
			return 0, s.err
		}
		return 0, io.EOF
	}
	return s.buf[s.pos], nil
}

func (s *StreamSource) Position() int64 {
	return s.pos
}

func (s *StreamSource) SetPosition(pos int64) error {
	if pos < 0 {
		return ErrPositionOutOfRange
	}
	s.fill(pos)
	if pos > int64(len(s.buf)) {
		if s.err != nil {
			return s.err
		}
		return ErrSourceExhausted
	}
	s.pos = pos
	return nil
}

// SeekerSource passes straight through to a seekable stream.
type SeekerSource struct {
	rs  io.ReadSeeker
	one [1]byte
}

func NewSeekerSource(rs io.ReadSeeker) *SeekerSource {
	return &SeekerSource{rs: rs}
}

func (s *SeekerSource) Read() (byte, error) {
	n, err := s.rs.Read(s.one[:])
	if n == 1 {
		return s.one[0], nil
	}
	if err == nil || err == io.EOF {
		return 0, io.EOF
	}
	return 0, pkgerrors.Wrap(err, "reading seeker source")
}

func (s *SeekerSource) Peek() (byte, error) {
	b, err := s.Read()
	if err != nil {
		return 0, err
	}
	if _, err := s.rs.Seek(-1, io.SeekCurrent); err != nil {
		return 0, pkgerrors.Wrap(err, "rewinding seeker source")
	}
	return b, nil
}

func (s *SeekerSource) Position() int64 {
	pos, err := s.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	return pos
}

func (s *SeekerSource) SetPosition(pos int64) error {
	if pos < 0 {
		return ErrPositionOutOfRange
	}
	_, err := s.rs.Seek(pos, io.SeekStart)
	return pkgerrors.Wrap(err, "seeking source")
}
