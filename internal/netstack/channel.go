package netstack

import (
	"errors"
	"io"
)

// DefaultBufferSize fits the largest discovery frame the outbound transform
// can produce (remaining length < 512) plus fixed header, with headroom for
// ordinary application frames.
const DefaultBufferSize = 600

// TransmitChannel is the shared outbound transmit region. The network stack
// owns it and hands it to exactly one writer at a time; whatever that writer
// leaves in the buffer, up to the pending length, is what goes on the wire.
// Both fields are overwritten on every outbound turn. No locking: the control
// loop is single threaded.
type TransmitChannel struct {
	buf     []byte
	pending int
}

func NewTransmitChannel(size int) *TransmitChannel {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &TransmitChannel{buf: make([]byte, size)}
}

// Cursor returns a bounded forward writer positioned at the start of the
// buffer. Taking a cursor invalidates any previously pending bytes.
func (c *TransmitChannel) Cursor() *BufferCursor {
	c.pending = 0
	return &BufferCursor{buf: c.buf}
}

// SetPending publishes how many bytes at the start of the buffer are valid
// for transmission. This is the uip_slen hand-off: the network stack reads it
// the moment the transform returns.
func (c *TransmitChannel) SetPending(n int) {
	if n < 0 || n > len(c.buf) {
		n = 0
	}
	c.pending = n
}

func (c *TransmitChannel) Pending() int { return c.pending }

// Bytes returns the pending region of the buffer.
func (c *TransmitChannel) Bytes() []byte { return c.buf[:c.pending] }

// Capacity returns the size of the underlying buffer.
func (c *TransmitChannel) Capacity() int { return len(c.buf) }

var errNothingPending = errors.New("netstack: flush with no pending bytes")

// Flush writes the pending bytes to w and clears the pending length.
func (c *TransmitChannel) Flush(w io.Writer) error {
	if c.pending == 0 {
		return errNothingPending
	}
	_, err := w.Write(c.buf[:c.pending])
	c.pending = 0
	return err
}

// BufferCursor is a bounded, forward-only writer over a byte region. Writes
// past capacity are dropped and latch the overrun flag; the caller checks
// Overrun once after its final write instead of guarding every one.
type BufferCursor struct {
	buf     []byte
	pos     int
	overrun bool
}

func NewBufferCursor(buf []byte) *BufferCursor { return &BufferCursor{buf: buf} }

func (c *BufferCursor) WriteByte(b byte) {
	if c.pos >= len(c.buf) {
		c.overrun = true
		return
	}
	c.buf[c.pos] = b
	c.pos++
}

func (c *BufferCursor) Write(p []byte) {
	n := copy(c.buf[c.pos:], p)
	c.pos += n
	if n < len(p) {
		c.overrun = true
	}
}

func (c *BufferCursor) WriteString(s string) {
	n := copy(c.buf[c.pos:], s)
	c.pos += n
	if n < len(s) {
		c.overrun = true
	}
}

// Pos returns the number of bytes written so far.
func (c *BufferCursor) Pos() int { return c.pos }

// Overrun reports whether any write ran past capacity.
func (c *BufferCursor) Overrun() bool { return c.overrun }
