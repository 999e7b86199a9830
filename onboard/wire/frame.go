package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	pkgerrors "github.com/pkg/errors"
)

const (
	HeaderLength = 4

	// MaxFrameLength caps a single payload. The simulator never sends more
	// than a few kilobytes per cycle, anything bigger means the stream is
	// out of step.
	MaxFrameLength = 1 << 20

	PollInterval = time.Millisecond
)

var (
	ErrNoData         = errors.New("no frame available before the timeout")
	ErrFrameTooLong   = errors.New("frame length exceeds MaxFrameLength")
	ErrNotASCII       = errors.New("frame payload contains non-ASCII bytes")
	ErrShortFrame     = errors.New("frame is shorter than its header")
	ErrLengthMismatch = errors.New("frame length prefix does not match the payload")
)

// Poller is a stream that can say whether a read would return data right
// away.
type Poller interface {
	io.Reader
	Ready() (bool, error)
}

func checkPayload(payload []byte) error {
	if len(payload) > MaxFrameLength {
		return ErrFrameTooLong
	}
	for _, b := range payload {
		if b > 0x7f {
			return ErrNotASCII
		}
	}
	return nil
}

// Encode prefixes payload with its big-endian length.
func Encode(payload []byte) ([]byte, error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}
	frame := make([]byte, HeaderLength+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[HeaderLength:], payload)
	return frame, nil
}

// Decode returns the payload of a single complete frame.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < HeaderLength {
		return nil, ErrShortFrame
	}
	n := binary.BigEndian.Uint32(frame)
	if uint64(n) != uint64(len(frame)-HeaderLength) {
		return nil, ErrLengthMismatch
	}
	return frame[HeaderLength:], nil
}

// WriteFrame sends prefix and payload with a single Write so that nothing
// else on the stream can land between them.
func WriteFrame(w io.Writer, payload []byte) error {
	frame, err := Encode(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return pkgerrors.Wrap(err, "writing frame")
	}
	return nil
}

// ReadFrame waits up to timeout for a frame to start arriving and then reads
// it completely. ErrNoData means nothing arrived in time; the stream is left
// untouched and the caller should simply try again next cycle. Any other
// error leaves the stream part way through a frame; it cannot be read from
// again.
func ReadFrame(p Poller, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		ready, err := p.Ready()
		if err != nil {
			return nil, pkgerrors.Wrap(err, "polling for frame")
		}
		if ready {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrNoData
		}
		time.Sleep(PollInterval)
	}

	var header [HeaderLength]byte
	if _, err := io.ReadFull(p, header[:]); err != nil {
		return nil, pkgerrors.Wrap(err, "reading frame header")
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > MaxFrameLength {
		return nil, ErrFrameTooLong
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(p, payload); err != nil {
		return nil, pkgerrors.Wrapf(err, "reading %d byte frame payload", n)
	}
	return payload, nil
}

// BufferPoller is an in-memory Poller, ready whenever it holds unread bytes.
type BufferPoller struct {
	bytes.Buffer
}

func (b *BufferPoller) Ready() (bool, error) {
	return b.Len() > 0, nil
}
