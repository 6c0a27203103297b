package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
)

// wsStream adapts a WebSocket connection's binary message stream to the
// plain byte stream a Conn consumes, so browser peers speak the same
// frame format as TCP peers. Non-binary messages are skipped.
type wsStream struct {
	ws  *websocket.Conn
	cur io.Reader // reader over the in-progress message, nil between messages
}

func (s *wsStream) Read(p []byte) (int, error) {
	for {
		if s.cur == nil {
			mt, r, err := s.ws.NextReader()
			if err != nil {
				return 0, err
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			s.cur = r
		}
		n, err := s.cur.Read(p)
		if err == io.EOF {
			s.cur = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) Close() error {
	return s.ws.Close()
}

// ConnectWebSocket establishes the session over a WebSocket URL
// (ws:// or wss://) instead of raw TCP. The state machine, framing, and
// disconnect semantics are identical to Connect.
func (c *Conn) ConnectWebSocket(ctx context.Context, url string) error {
	if !c.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return ErrAlreadyConnected
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.config.DialTimeout}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		c.abortConnect()
		return fmt.Errorf("transport: connect %s: %w", url, err)
	}

	if !c.adopt(&wsStream{ws: ws}, ws.RemoteAddr().String()) {
		return fmt.Errorf("transport: connect %s: %w", url, ErrConnectAborted)
	}
	return nil
}

// ErrRejected is returned when an accept callback declines a connection.
var ErrRejected = errors.New("transport: connection rejected")

// UpgradeWebSocket upgrades an HTTP request to a WebSocket session, the
// server-side counterpart of ConnectWebSocket. The config's CheckOrigin
// gate runs during the handshake, same-origin by default. Like Listener, it calls
// accept before the receive loop starts so the handler is installed with
// no registration window; a nil handler from accept closes the peer and
// returns ErrRejected.
func UpgradeWebSocket(w http.ResponseWriter, r *http.Request, accept AcceptFunc, config *Config) (*Conn, error) {
	cfg := config.Clone().withDefaults()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.ReadBufferSize,
		CheckOrigin:     cfg.CheckOrigin,
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: upgrade: %w", err)
	}

	remote := ws.RemoteAddr().String()
	conn := New(nil, cfg)
	conn.state.Store(int32(StateConnecting))

	handler := accept(conn, remote)
	if handler == nil {
		ws.Close()
		conn.state.Store(int32(StateDisconnected))
		return nil, ErrRejected
	}
	conn.handler = handler

	if !conn.adopt(&wsStream{ws: ws}, remote) {
		return nil, ErrConnectAborted
	}
	return conn, nil
}
