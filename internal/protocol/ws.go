package protocol

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeGracePeriod = time.Second

// WSConn is a Transport carrying one record per WebSocket binary message
type WSConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

// NewWSConn wraps an established WebSocket connection
func NewWSConn(conn *websocket.Conn) *WSConn {
	conn.SetReadLimit(MaxRecordSize)
	return &WSConn{conn: conn}
}

// DialWS connects to a coordinator's WebSocket endpoint
func DialWS(ctx context.Context, url string) (*WSConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWSConn(conn), nil
}

// Send writes the frame as a single message
func (c *WSConn) Send(f Frame) error {
	record, err := Encode(f)
	if err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, record); err != nil {
		return fmt.Errorf("write %s: %w", f.Tag(), err)
	}
	return nil
}

// Receive reads one message and decodes it
func (c *WSConn) Receive() (Frame, error) {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		switch {
		case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
			return nil, io.EOF
		case websocket.IsCloseError(err, websocket.CloseAbnormalClosure):
			return nil, fmt.Errorf("connection lost: %w", io.ErrUnexpectedEOF)
		case errors.Is(err, websocket.ErrReadLimit):
			return nil, fmt.Errorf("%w: %v", ErrRecordTooLong, err)
		default:
			return nil, fmt.Errorf("read: %w", err)
		}
	}
	if len(msg) == 0 || msg[len(msg)-1] != Terminator {
		return nil, fmt.Errorf("%w: message is not a terminated record", ErrMalformedFrame)
	}
	if bytes.Count(msg, []byte{Terminator}) != 1 {
		return nil, fmt.Errorf("%w: message holds more than one record", ErrMalformedFrame)
	}
	return Decode(msg)
}

// Close sends a close message and closes the connection
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod)) // best effort
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr returns the peer's address
func (c *WSConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
