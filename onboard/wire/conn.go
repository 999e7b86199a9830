package wire

import (
	"bufio"
	"net"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// probeWindow bounds how long Ready waits on the socket for a first byte.
const probeWindow = time.Millisecond

// Conn carries frames over a stream connection to the simulator. Reads are
// meant for a single owner; writes are serialised.
type Conn struct {
	conn   net.Conn
	r      *bufio.Reader
	wl     sync.Mutex
	broken error
}

func Dial(addr string, timeout time.Duration) (*Conn, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "connecting to %s", addr)
	}
	return NewConn(c), nil
}

func NewConn(c net.Conn) *Conn {
	return &Conn{
		conn: c,
		r:    bufio.NewReader(c),
	}
}

func (c *Conn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

// Ready reports whether at least one byte can be read without waiting.
func (c *Conn) Ready() (bool, error) {
	if c.r.Buffered() > 0 {
		return true, nil
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(probeWindow)); err != nil {
		return false, err
	}
	_, err := c.r.Peek(1)
	if resetErr := c.conn.SetReadDeadline(time.Time{}); resetErr != nil {
		return false, resetErr
	}

	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadFrame reads the next frame. An oversized length prefix closes the
// connection, since the rest of the stream can no longer be framed.
func (c *Conn) ReadFrame(timeout time.Duration) ([]byte, error) {
	if c.broken != nil {
		return nil, c.broken
	}

	payload, err := ReadFrame(c, timeout)
	if err == ErrFrameTooLong {
		c.broken = pkgerrors.Wrap(err, "connection out of step")
		c.conn.Close()
	}
	return payload, err
}

func (c *Conn) WriteFrame(payload []byte) error {
	c.wl.Lock()
	defer c.wl.Unlock()

	return WriteFrame(c.conn, payload)
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
