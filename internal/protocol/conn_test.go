package protocol

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/lox/cribbage/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnSendReceive(t *testing.T) {
	a, b := net.Pipe()
	client, server := NewConn(a), NewConn(b)
	defer client.Close()
	defer server.Close()

	frames := []Frame{
		Name{Name: "alice"},
		Hand{Cards: deck.MustParseCards("5S6H")},
		Play{},
		RoundDone{},
	}

	errc := make(chan error, 1)
	go func() {
		for _, f := range frames {
			if err := client.Send(f); err != nil {
				errc <- err
				return
			}
		}
		errc <- nil
	}()

	for _, want := range frames {
		got, err := server.Receive()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	require.NoError(t, <-errc)
}

func TestConnCleanCloseIsEOF(t *testing.T) {
	a, b := net.Pipe()
	server := NewConn(b)
	require.NoError(t, a.Close())

	_, err := server.Receive()
	assert.ErrorIs(t, err, io.EOF)
}

func TestConnCloseMidRecordIsError(t *testing.T) {
	a, b := net.Pipe()
	server := NewConn(b)

	go func() {
		_, _ = a.Write([]byte("\x01ali"))
		_ = a.Close()
	}()

	_, err := server.Receive()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestConnRecordTooLong(t *testing.T) {
	a, b := net.Pipe()
	server := NewConn(b)
	defer a.Close()

	go func() {
		_, _ = a.Write([]byte("\x01" + strings.Repeat("x", MaxRecordSize+10)))
	}()

	_, err := server.Receive()
	assert.ErrorIs(t, err, ErrRecordTooLong)
}

func TestConnMalformedRecord(t *testing.T) {
	a, b := net.Pipe()
	server := NewConn(b)
	defer a.Close()

	go func() {
		_, _ = a.Write([]byte("\x42junk\n"))
	}()

	_, err := server.Receive()
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func newWSPair(t *testing.T) (*WSConn, *WSConn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	accepted := make(chan *WSConn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		accepted <- NewWSConn(conn)
	}))
	t.Cleanup(srv.Close)

	client, err := DialWS(t.Context(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	server := <-accepted
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server
}

func TestWSConnSendReceive(t *testing.T) {
	client, server := newWSPair(t)

	magic := deck.MustParseCard("JS")
	want := Hand{Cards: deck.MustParseCards("5S6H7D8C"), Magic: &magic}
	require.NoError(t, client.Send(want))

	got, err := server.Receive()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, server.Send(Start{Names: []string{"a", "b"}}))
	got, err = client.Receive()
	require.NoError(t, err)
	assert.Equal(t, Start{Names: []string{"a", "b"}}, got)
}

func TestWSConnCloseIsEOF(t *testing.T) {
	client, server := newWSPair(t)
	require.NoError(t, client.Close())

	_, err := server.Receive()
	assert.ErrorIs(t, err, io.EOF)
}

func TestExpect(t *testing.T) {
	a, b := net.Pipe()
	client, server := NewConn(a), NewConn(b)
	defer client.Close()
	defer server.Close()

	go func() {
		_ = client.Send(Name{Name: "alice"})
		_ = client.Send(RoundDone{})
	}()

	name, err := Expect[Name](server)
	require.NoError(t, err)
	assert.Equal(t, "alice", name.Name)

	_, err = Expect[Play](server)
	require.ErrorIs(t, err, ErrUnexpectedFrame)
	assert.Contains(t, err.Error(), "round_done")
}
