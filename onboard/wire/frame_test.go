package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// chunkedPoller hands out at most step bytes per Read, the way a socket
// delivers a large frame in several segments.
type chunkedPoller struct {
	BufferPoller
	step  int
	reads int
}

func (c *chunkedPoller) Read(p []byte) (int, error) {
	c.reads++
	if len(p) > c.step {
		p = p[:c.step]
	}
	return c.BufferPoller.Read(p)
}

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func asciiPayload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte('a' + i%26)
	}
	return p
}

func TestCodec(t *testing.T) {
	Convey("encoding prefixes the big-endian length", t, func() {
		frame, err := Encode([]byte("(syn)"))
		So(err, ShouldBeNil)
		So(frame, ShouldResemble, []byte{0, 0, 0, 5, '(', 's', 'y', 'n', ')'})
	})

	Convey("decode reverses encode", t, func() {
		for _, n := range []int{0, 1, 300, 70000} {
			payload := asciiPayload(n)
			frame, err := Encode(payload)
			So(err, ShouldBeNil)
			So(len(frame), ShouldEqual, HeaderLength+n)

			out, err := Decode(frame)
			So(err, ShouldBeNil)
			So(bytes.Equal(out, payload), ShouldBeTrue)
		}
	})

	Convey("malformed payloads are refused", t, func() {
		_, err := Encode([]byte("caf\xc3\xa9"))
		So(err, ShouldEqual, ErrNotASCII)

		_, err = Encode(make([]byte, MaxFrameLength+1))
		So(err, ShouldEqual, ErrFrameTooLong)

		var w countingWriter
		So(WriteFrame(&w, []byte{0x80}), ShouldEqual, ErrNotASCII)
		So(w.writes, ShouldEqual, 0)
	})

	Convey("malformed frames are refused", t, func() {
		_, err := Decode([]byte{0, 0})
		So(err, ShouldEqual, ErrShortFrame)

		_, err = Decode([]byte{0, 0, 0, 3, 'a'})
		So(err, ShouldEqual, ErrLengthMismatch)
	})
}

func TestReadWriteFrame(t *testing.T) {
	Convey("a frame is written with one call", t, func() {
		var w countingWriter
		So(WriteFrame(&w, []byte("(beam 1 2 3)")), ShouldBeNil)
		So(w.writes, ShouldEqual, 1)
		So(w.Len(), ShouldEqual, HeaderLength+12)
	})

	Convey("frames read back in order", t, func() {
		var p BufferPoller
		So(WriteFrame(&p, []byte("first")), ShouldBeNil)
		So(WriteFrame(&p, nil), ShouldBeNil)
		So(WriteFrame(&p, []byte("third")), ShouldBeNil)

		for _, want := range []string{"first", "", "third"} {
			got, err := ReadFrame(&p, time.Millisecond)
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, want)
		}
	})

	Convey("reading consumes exactly the frame", t, func() {
		var p BufferPoller
		So(WriteFrame(&p, []byte("(syn)")), ShouldBeNil)
		p.WriteString("tail")

		_, err := ReadFrame(&p, time.Millisecond)
		So(err, ShouldBeNil)
		So(p.String(), ShouldEqual, "tail")
	})

	Convey("a large frame arriving in pieces is read completely", t, func() {
		payload := asciiPayload(100000)
		p := &chunkedPoller{step: 1460}
		So(WriteFrame(p, payload), ShouldBeNil)

		got, err := ReadFrame(p, time.Millisecond)
		So(err, ShouldBeNil)
		So(bytes.Equal(got, payload), ShouldBeTrue)
		So(p.reads, ShouldBeGreaterThan, 1)
		So(p.Len(), ShouldEqual, 0)
	})

	Convey("an idle stream times out with no data", t, func() {
		var p BufferPoller
		start := time.Now()
		got, err := ReadFrame(&p, 10*time.Millisecond)

		So(err, ShouldEqual, ErrNoData)
		So(got, ShouldBeNil)
		So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 10*time.Millisecond)
	})

	Convey("an oversized length prefix is refused", t, func() {
		var p BufferPoller
		var header [HeaderLength]byte
		binary.BigEndian.PutUint32(header[:], MaxFrameLength+1)
		p.Write(header[:])

		_, err := ReadFrame(&p, time.Millisecond)
		So(err, ShouldEqual, ErrFrameTooLong)
	})

	Convey("a truncated payload is an error", t, func() {
		var p BufferPoller
		p.Write([]byte{0, 0, 0, 10, 'a', 'b'})

		_, err := ReadFrame(&p, time.Millisecond)
		So(err, ShouldNotBeNil)
		So(err, ShouldNotEqual, ErrNoData)
	})
}

func BenchmarkReadFrame(b *testing.B) {
	frame, _ := Encode(asciiPayload(2048))
	var p BufferPoller

	for n := 0; n < b.N; n++ {
		p.Write(frame)
		ReadFrame(&p, time.Millisecond)
	}
}
