package zaptransport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/jeeves-cluster-organization/zapcore/zapwire"
)

// DefaultMaxFrameBytes is the frame-size ceiling applied when a caller does
// not configure one explicitly.
const DefaultMaxFrameBytes = 16 * 1024 * 1024

// Conn is a framed, write-serialized connection to a ZAP endpoint. Reads
// are expected to be driven by a single goroutine (zapclient's receive
// loop); writes are safe to call from multiple goroutines concurrently.
type Conn struct {
	rw            net.Conn
	maxFrameBytes int
	writeMu       sync.Mutex
}

// NewConn wraps an already-established net.Conn as a framed ZAP
// connection. maxFrameBytes <= 0 selects DefaultMaxFrameBytes.
func NewConn(rw net.Conn, maxFrameBytes int) *Conn {
	if maxFrameBytes <= 0 {
		maxFrameBytes = DefaultMaxFrameBytes
	}
	return &Conn{rw: rw, maxFrameBytes: maxFrameBytes}
}

// Dial connects to the given endpoint, establishing TLS when the endpoint
// scheme requires it. The context governs the dial attempt only, not the
// lifetime of the resulting connection.
func Dial(ctx context.Context, endpoint Endpoint, dialTimeout time.Duration, maxFrameBytes int) (*Conn, error) {
	deadline := time.Now().Add(dialTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := &net.Dialer{Deadline: deadline}

	var (
		rw  net.Conn
		err error
	)
	switch endpoint.Scheme {
	case SchemeTCP:
		rw, err = dialer.DialContext(ctx, "tcp", endpoint.Address)
	case SchemeUnix:
		rw, err = dialer.DialContext(ctx, "unix", endpoint.Address)
	case SchemeTLS:
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config:    &tls.Config{ServerName: endpoint.ServerName},
		}
		rw, err = tlsDialer.DialContext(ctx, "tcp", endpoint.Address)
	default:
		return nil, fmt.Errorf("zaptransport: unsupported scheme %q", endpoint.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("zaptransport: dial %s: %w", endpoint.Address, err)
	}

	return NewConn(rw, maxFrameBytes), nil
}

// WriteMessage encodes and writes a full frame. Concurrent callers are
// serialized so that interleaved writes never corrupt a frame.
func (c *Conn) WriteMessage(msg zapwire.Message) error {
	frame, err := msg.Encode()
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.rw.Write(frame); err != nil {
		return fmt.Errorf("zaptransport: write frame: %w", err)
	}
	return nil
}

// ReadMessage reads one length-prefixed frame and decodes it. It blocks
// until a full frame arrives, the connection is closed, or a read error
// occurs. Callers must serialize reads themselves (normally via a single
// receive-loop goroutine).
func (c *Conn) ReadMessage() (zapwire.Message, error) {
	prefix := make([]byte, zapwire.LengthPrefixSize)
	if _, err := io.ReadFull(c.rw, prefix); err != nil {
		return zapwire.Message{}, err
	}

	length, err := zapwire.DecodeLength(prefix)
	if err != nil {
		return zapwire.Message{}, err
	}
	if int(length) > c.maxFrameBytes {
		return zapwire.Message{}, fmt.Errorf("zaptransport: frame of %d bytes exceeds max %d", length, c.maxFrameBytes)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(c.rw, body); err != nil {
		return zapwire.Message{}, fmt.Errorf("zaptransport: read frame body: %w", err)
	}

	return zapwire.Decode(body)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.rw.Close()
}

// SetDeadline forwards to the underlying net.Conn.
func (c *Conn) SetDeadline(t time.Time) error {
	return c.rw.SetDeadline(t)
}
