// Package quic layers clavis sessions over QUIC. Each dialed or accepted
// connection exposes one bidirectional stream as the ordered byte stream
// the session runs on; the session's own handshake and AEAD framing ride
// inside it unchanged.
package quic

import (
	"context"
	"net"

	q "github.com/quic-go/quic-go"
)

// StreamConn is a single bidirectional QUIC stream bound to its
// connection, usable as the byte stream under an encrypted session.
// Closing it closes both the stream and the connection.
type StreamConn struct {
	conn   q.Connection
	stream q.Stream
}

func (c *StreamConn) Read(p []byte) (int, error)  { return c.stream.Read(p) }
func (c *StreamConn) Write(p []byte) (int, error) { return c.stream.Write(p) }

func (c *StreamConn) Close() error {
	_ = c.stream.Close()
	return c.conn.CloseWithError(0, "")
}

func (c *StreamConn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *StreamConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

type Listener struct {
	inner *q.Listener
}

func Listen(addr string) (*Listener, error) {
	tlsConf, err := NewServerTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, &q.Config{})
	if err != nil {
		return nil, err
	}
	return &Listener{inner: ln}, nil
}

// Accept waits for a connection and its first stream. The dialing side
// must play the session Initiator: the stream only surfaces here once
// the peer's first handshake bytes arrive.
func (l *Listener) Accept(ctx context.Context) (*StreamConn, error) {
	conn, err := l.inner.Accept(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, err
	}
	return &StreamConn{conn: conn, stream: stream}, nil
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

func (l *Listener) AddrString() string {
	if l.inner == nil {
		return ""
	}
	return l.inner.Addr().String()
}

func (l *Listener) Close() error { return l.inner.Close() }

// Dial connects and opens the stream the session will run over.
func Dial(ctx context.Context, addr string) (*StreamConn, error) {
	tlsConf, err := NewClientTLSConfig()
	if err != nil {
		return nil, err
	}
	conn, err := q.DialAddr(ctx, addr, tlsConf, &q.Config{})
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, err
	}
	return &StreamConn{conn: conn, stream: stream}, nil
}
