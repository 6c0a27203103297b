package gateway

import (
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riftlands/netcore/pkg/identity"
	"github.com/riftlands/netcore/pkg/transport"
)

// Session is one connected peer: a transport connection plus the identity
// the gateway minted for it at join time.
type Session struct {
	id     identity.ID
	conn   *transport.Conn
	remote string
	joined time.Time

	gw     *Gateway
	logger *slog.Logger
	span   trace.Span

	framesIn atomic.Uint64
	bytesIn  atomic.Uint64
	bytesOut atomic.Uint64
}

func newSession(gw *Gateway, conn *transport.Conn, remote string) *Session {
	id := gw.ids.Generate()
	s := &Session{
		id:     id,
		conn:   conn,
		remote: remote,
		joined: time.Now(),
		gw:     gw,
		logger: gw.logger.With("session_id", id.String()),
	}
	_, s.span = gw.tracer.Start(gw.baseCtx, "gateway.session",
		trace.WithAttributes(
			attribute.String("session.id", id.String()),
			attribute.String("net.peer.address", remote),
			attribute.Int("shard.id", int(id.Shard())),
		))
	return s
}

// ID returns the session's minted identity.
func (s *Session) ID() identity.ID {
	return s.id
}

// Remote returns the peer address.
func (s *Session) Remote() string {
	return s.remote
}

// JoinedAt returns when the session was accepted.
func (s *Session) JoinedAt() time.Time {
	return s.joined
}

// Send ships one framed payload to the peer.
func (s *Session) Send(payload []byte) error {
	if err := s.conn.Send(payload); err != nil {
		return err
	}
	s.bytesOut.Add(uint64(len(payload)))
	s.gw.metrics.framesSent.Inc()
	s.gw.metrics.bytesSent.Add(float64(len(payload)))
	return nil
}

// Close disconnects the peer with the given reason.
func (s *Session) Close(reason string) {
	s.conn.Disconnect(reason)
}

// HandleFrame implements transport.Handler: count the frame and hand the
// raw payload to the application's frame handler.
func (s *Session) HandleFrame(payload []byte) {
	s.framesIn.Add(1)
	s.bytesIn.Add(uint64(len(payload)))
	s.gw.metrics.framesReceived.Inc()
	s.gw.metrics.bytesReceived.Add(float64(len(payload)))

	if h := s.gw.frameHandler.Load(); h != nil {
		(*h)(s, payload)
	}
}

// HandleDisconnect implements transport.Handler; it runs exactly once per
// session, whatever ended it.
func (s *Session) HandleDisconnect(reason string) {
	s.gw.dropSession(s)

	if reason != "" {
		s.span.SetStatus(codes.Error, reason)
	}
	s.span.SetAttributes(
		attribute.Int64("session.frames_in", int64(s.framesIn.Load())),
		attribute.Int64("session.bytes_in", int64(s.bytesIn.Load())),
		attribute.Int64("session.bytes_out", int64(s.bytesOut.Load())),
	)
	s.span.End()

	s.logger.Info("session closed",
		"reason", reason,
		"frames_in", s.framesIn.Load(),
		"bytes_in", s.bytesIn.Load(),
		"bytes_out", s.bytesOut.Load())
}
