package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
)

// AcceptFunc is called once per accepted connection, before the receive
// loop starts, so it can install the Conn's handler via the return value.
// Returning nil drops and closes the connection.
type AcceptFunc func(c *Conn, remote string) Handler

// Listener accepts TCP peers and hands each one to an AcceptFunc as a
// ready Conn.
type Listener struct {
	config *Config
	logger *slog.Logger
	accept AcceptFunc

	ln     net.Listener
	closed atomic.Bool
}

// Listen binds addr (e.g. ":7775") and returns a Listener ready to Serve.
func Listen(addr string, accept AcceptFunc, config *Config) (*Listener, error) {
	cfg := config.Clone().withDefaults()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	return &Listener{
		config: cfg,
		logger: cfg.Logger,
		accept: accept,
		ln:     ln,
	}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Serve accepts connections until ctx is canceled or Close is called.
// A closed listener returns nil; any other accept failure is returned.
func (l *Listener) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	for {
		stream, err := l.ln.Accept()
		if err != nil {
			if l.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("transport: accept: %w", err)
		}

		remote := stream.RemoteAddr().String()
		conn := New(nil, l.config)
		conn.state.Store(int32(StateConnecting))

		handler := l.accept(conn, remote)
		if handler == nil {
			stream.Close()
			conn.state.Store(int32(StateDisconnected))
			continue
		}
		conn.handler = handler

		if !conn.adopt(stream, remote) {
			continue
		}
		l.logger.Info("accepted", "remote", remote)
	}
}

// Close stops accepting. In-flight connections are unaffected.
func (l *Listener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.ln.Close()
}
