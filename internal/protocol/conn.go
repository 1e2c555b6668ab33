package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// Transport sends and receives frames over one participant connection.
// Receive returns io.EOF when the peer closed the connection cleanly.
// A Transport is used by one goroutine at a time.
type Transport interface {
	Send(f Frame) error
	Receive() (Frame, error)
	Close() error
	RemoteAddr() string
}

// Transport names accepted in configuration
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

var (
	_ Transport = (*Conn)(nil)
	_ Transport = (*WSConn)(nil)
)

// Conn is a Transport over a byte stream such as TCP
type Conn struct {
	conn      net.Conn
	r         *bufio.Reader
	w         *bufio.Writer
	closeOnce sync.Once
}

// NewConn wraps a stream connection
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		conn: conn,
		r:    bufio.NewReaderSize(conn, MaxRecordSize),
		w:    bufio.NewWriter(conn),
	}
}

// Dial connects to a coordinator over TCP
func Dial(ctx context.Context, addr string) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewConn(c), nil
}

// Send encodes the frame and flushes it before returning
func (c *Conn) Send(f Frame) error {
	record, err := Encode(f)
	if err != nil {
		return err
	}
	if _, err := c.w.Write(record); err != nil {
		return fmt.Errorf("write %s: %w", f.Tag(), err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", f.Tag(), err)
	}
	return nil
}

// Receive blocks until a whole record has arrived and decodes it
func (c *Conn) Receive() (Frame, error) {
	record, err := c.r.ReadSlice(Terminator)
	switch {
	case err == nil:
	case errors.Is(err, bufio.ErrBufferFull):
		return nil, fmt.Errorf("%w: no terminator within %d bytes", ErrRecordTooLong, MaxRecordSize)
	case errors.Is(err, io.EOF):
		if len(record) == 0 {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("connection closed mid-record after %d bytes: %w", len(record), io.ErrUnexpectedEOF)
	default:
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(record)
}

// Close closes the underlying connection
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr returns the peer's address
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
