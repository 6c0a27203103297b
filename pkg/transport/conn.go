// Package transport moves length-prefixed frames over an unreliable byte
// stream and exposes a small connection state machine with clean
// connect/send/receive/disconnect semantics.
//
// # Wire format
//
// Every frame is a 4-byte unsigned little-endian length prefix followed
// by exactly that many payload bytes. The prefix does not include itself;
// there is no magic number, checksum, or version byte at this layer —
// those belong to the payload's own schema.
//
// # Lifecycle
//
// A Conn is Disconnected until Connect succeeds, Connected while the
// background receive loop runs, and converges on one idempotent teardown
// path whatever ends the session: an explicit Disconnect, a clean remote
// close, an I/O fault, or cancellation. The handler's disconnect
// notification fires exactly once per session.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
)

const (
	// FrameHeaderSize is the length prefix width in bytes.
	FrameHeaderSize = 4

	// DefaultMaxFrameSize caps a declared frame length. The prefix could
	// name up to 4 GiB; accepting that would let one malformed or
	// hostile peer grow the accumulator without bound, so anything above
	// the cap fails the connection as a protocol violation.
	DefaultMaxFrameSize = 1 << 20
)

// Connection errors.
var (
	ErrNotConnected     = errors.New("transport: not connected")
	ErrAlreadyConnected = errors.New("transport: connection already in use")
	ErrFrameTooLarge    = errors.New("transport: frame exceeds maximum size")
	ErrConnectAborted   = errors.New("transport: disconnected while connecting")
)

// Handler receives a Conn's decoded frames and its single disconnect
// notification. Calls arrive from the receive goroutine; implementations
// that need to block should hand off to their own queue.
type Handler interface {
	// HandleFrame is called once per reassembled frame with the payload
	// bytes. The slice is owned by the receiver.
	HandleFrame(payload []byte)

	// HandleDisconnect is called exactly once when the session ends. An
	// empty reason means a caller-initiated graceful close.
	HandleDisconnect(reason string)
}

// Conn is one framed connection over a byte stream. Sends may originate
// from any goroutine; each frame is written atomically. The receive loop
// runs in its own goroutine for the lifetime of a Connected session.
type Conn struct {
	config  *Config
	handler Handler
	logger  *slog.Logger

	state atomic.Int32

	mu     sync.Mutex // serializes sends and guards stream swap
	stream io.ReadWriteCloser
	remote string
	send   []byte // frame staging buffer, reused under mu

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// New creates a disconnected Conn that will report to handler once
// connected.
func New(handler Handler, config *Config) *Conn {
	cfg := config.Clone().withDefaults()
	return &Conn{
		config:  cfg,
		handler: handler,
		logger:  cfg.Logger,
	}
}

// State returns the connection's current lifecycle phase.
func (c *Conn) State() State {
	return State(c.state.Load())
}

// RemoteAddr returns the peer address of the current or most recent
// session, or "" before the first connect.
func (c *Conn) RemoteAddr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remote
}

// Connect establishes a TCP stream to host:port. On success the Conn is
// Connected and the background receive loop is running. On failure the
// Conn runs its cleanup path, lands back on Disconnected, and returns the
// wrapped dial error. The attempt is cancellable through ctx.
func (c *Conn) Connect(ctx context.Context, host string, port int) error {
	if !c.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return ErrAlreadyConnected
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	d := net.Dialer{Timeout: c.config.DialTimeout}
	stream, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.abortConnect()
		return fmt.Errorf("transport: connect %s: %w", addr, err)
	}

	if !c.adopt(stream, stream.RemoteAddr().String()) {
		return fmt.Errorf("transport: connect %s: %w", addr, ErrConnectAborted)
	}
	return nil
}

// abortConnect unwinds a failed dial. The Connecting state is released
// through the Disconnecting cleanup path unless a concurrent Disconnect
// already claimed it, in which case that teardown owns the transition.
func (c *Conn) abortConnect() {
	if !c.state.CompareAndSwap(int32(StateConnecting), int32(StateDisconnecting)) {
		return
	}
	c.releaseStream()
	c.state.Store(int32(StateDisconnected))
}

// adopt installs an established stream and starts the receive loop.
// Callers must hold the Connecting state. If a concurrent Disconnect
// claimed that state while the dial was in flight, the stream is closed
// and adopt reports false: the session never starts, and the disconnect
// notification that already fired stands alone.
func (c *Conn) adopt(stream io.ReadWriteCloser, remote string) bool {
	c.mu.Lock()
	c.stream = stream
	c.remote = remote
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelMu.Lock()
	c.cancel = cancel
	c.cancelMu.Unlock()

	if !c.state.CompareAndSwap(int32(StateConnecting), int32(StateConnected)) {
		c.cancelMu.Lock()
		c.cancel = nil
		c.cancelMu.Unlock()
		cancel()
		c.releaseStream()
		return false
	}

	c.logger.Info("connected", "remote", remote)
	go c.readLoop(ctx, stream)
	return true
}

// Send frames the payload — 4-byte little-endian length prefix, then the
// bytes — and writes it to the stream as one atomic unit. It fails with
// ErrNotConnected outside the Connected state and ErrFrameTooLarge when
// the payload exceeds the configured maximum.
func (c *Conn) Send(payload []byte) error {
	if c.State() != StateConnected {
		return ErrNotConnected
	}
	if len(payload) > c.config.MaxFrameSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(payload), c.config.MaxFrameSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		// Lost a race with teardown.
		return ErrNotConnected
	}

	n := uint32(len(payload))
	c.send = append(c.send[:0],
		byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	c.send = append(c.send, payload...)

	if _, err := c.stream.Write(c.send); err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	return nil
}

// Disconnect tears the session down: it cancels the receive loop, closes
// the stream exactly once, and fires the handler's disconnect
// notification exactly once with the given reason. It is idempotent and
// safe to call from any trigger — caller request, remote close, I/O
// fault, or the receive loop itself — even when several race.
func (c *Conn) Disconnect(reason string) {
	for {
		s := State(c.state.Load())
		if s == StateDisconnected || s == StateDisconnecting {
			return
		}
		if c.state.CompareAndSwap(int32(s), int32(StateDisconnecting)) {
			break
		}
	}

	c.cancelMu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.cancelMu.Unlock()

	c.releaseStream()
	c.state.Store(int32(StateDisconnected))

	if reason == "" {
		c.logger.Info("disconnected")
	} else {
		c.logger.Info("disconnected", "reason", reason)
	}
	if c.handler != nil {
		c.handler.HandleDisconnect(reason)
	}
}

func (c *Conn) releaseStream() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		c.stream.Close()
		c.stream = nil
	}
}

// readLoop reassembles frames from the stream until the session ends.
// Cancellation is checked at each read boundary: a read that fails after
// ctx was canceled is an orderly shutdown, not an error.
func (c *Conn) readLoop(ctx context.Context, stream io.Reader) {
	var acc []byte // bytes received but not yet carved into frames
	buf := make([]byte, c.config.ReadBufferSize)

	for {
		n, err := stream.Read(buf)
		if n > 0 {
			acc = append(acc, buf[:n]...)
			var ok bool
			if acc, ok = c.drainFrames(acc); !ok {
				return
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				// Cooperative cancellation during teardown.
				return
			}
			if errors.Is(err, io.EOF) {
				c.Disconnect("remote closed connection")
			} else {
				c.Disconnect(fmt.Sprintf("read error: %v", err))
			}
			return
		}
	}
}

// drainFrames carves every complete frame off the front of the
// accumulator and emits it. It returns the remaining bytes and false if
// the connection was failed for a protocol violation.
func (c *Conn) drainFrames(acc []byte) ([]byte, bool) {
	consumed := 0
	for {
		rest := acc[consumed:]
		if len(rest) < FrameHeaderSize {
			break
		}
		declared := uint32(rest[0]) | uint32(rest[1])<<8 |
			uint32(rest[2])<<16 | uint32(rest[3])<<24
		if uint64(declared) > uint64(c.config.MaxFrameSize) {
			c.Disconnect(fmt.Sprintf("frame length %d exceeds limit %d",
				declared, c.config.MaxFrameSize))
			return nil, false
		}
		length := int(declared)
		if len(rest) < FrameHeaderSize+length {
			// Partial frame; wait for more bytes.
			break
		}

		payload := make([]byte, length)
		copy(payload, rest[FrameHeaderSize:FrameHeaderSize+length])
		consumed += FrameHeaderSize + length

		if c.handler != nil {
			c.handler.HandleFrame(payload)
		}
	}

	if consumed == 0 {
		return acc, true
	}
	// Shift the tail to the front so the accumulator never grows past
	// one partial frame plus one read chunk.
	remaining := copy(acc, acc[consumed:])
	return acc[:remaining], true
}
