// Package gateway is the connection hub of a realm shard: it accepts
// framed transport sessions, mints an identity for each peer, drives the
// simulation clock, and broadcasts the server-time heartbeat every tick.
//
// The gateway defines no gameplay messages. Received payloads are handed,
// raw, to a pluggable FrameHandler; content systems build their own
// formats on top with pkg/wire.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/riftlands/netcore/pkg/clock"
	"github.com/riftlands/netcore/pkg/identity"
	"github.com/riftlands/netcore/pkg/transport"
	"github.com/riftlands/netcore/pkg/wire"
)

// FrameHandler receives every payload a session delivers. It runs on the
// session's receive goroutine.
type FrameHandler func(s *Session, payload []byte)

// Config holds gateway construction parameters.
type Config struct {
	// ListenAddr is the TCP endpoint for game traffic, e.g. ":7775".
	ListenAddr string

	// AdminAddr is the HTTP endpoint for health, status, metrics, and
	// WebSocket peers. Empty disables the admin server.
	AdminAddr string

	// ShardID identifies this process in every identity it mints.
	ShardID int

	// TickRate overrides clock.DefaultTickRate when > 0.
	TickRate int

	// Transport tunes the per-connection transport layer.
	Transport *transport.Config

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Registry receives the gateway's Prometheus metrics. Defaults to a
	// private registry served at /metrics on the admin endpoint.
	Registry *prometheus.Registry
}

// Gateway owns one shard's clock, identity generator, and listener, plus
// the registry of live sessions.
type Gateway struct {
	config *Config
	logger *slog.Logger

	clock *clock.Clock
	ids   *identity.Generator

	listener atomic.Pointer[transport.Listener]
	admin    *http.Server

	mu       sync.RWMutex
	sessions map[identity.ID]*Session

	frameHandler atomic.Pointer[FrameHandler]

	metrics  *metrics
	registry *prometheus.Registry
	tracer   trace.Tracer
	baseCtx  context.Context

	startedAt time.Time
}

// New builds a Gateway from config. The shard id is validated here; an
// out-of-range shard fails construction.
func New(config *Config) (*Gateway, error) {
	if config == nil {
		config = &Config{}
	}
	if config.ListenAddr == "" {
		config.ListenAddr = fmt.Sprintf(":%d", transport.DefaultPort)
	}

	ids, err := identity.NewGenerator(config.ShardID)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "gateway")

	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	g := &Gateway{
		config:   config,
		logger:   logger,
		clock:    clock.New(config.TickRate),
		ids:      ids,
		sessions: make(map[identity.ID]*Session),
		metrics:  newMetrics(registry),
		registry: registry,
		tracer:   otel.Tracer("netcore/gateway"),
		baseCtx:  context.Background(),
	}
	return g, nil
}

// Addr returns the bound game-traffic address once Run has started, or
// nil before that.
func (g *Gateway) Addr() net.Addr {
	if l := g.listener.Load(); l != nil {
		return l.Addr()
	}
	return nil
}

// OnFrame installs the handler that receives every session payload.
func (g *Gateway) OnFrame(h FrameHandler) {
	if h == nil {
		g.frameHandler.Store(nil)
		return
	}
	g.frameHandler.Store(&h)
}

// Clock exposes the gateway's tick clock for read-only snapshots.
func (g *Gateway) Clock() *clock.Clock {
	return g.clock
}

// Identities exposes the gateway's identity generator so co-located
// systems mint from the same shard sequence.
func (g *Gateway) Identities() *identity.Generator {
	return g.ids
}

// Run serves game traffic and the admin endpoint until ctx is canceled,
// then disconnects every session and returns.
func (g *Gateway) Run(ctx context.Context) error {
	listener, err := transport.Listen(g.config.ListenAddr, g.acceptSession, g.config.Transport)
	if err != nil {
		return err
	}
	g.startedAt = time.Now()
	g.listener.Store(listener)

	errCh := make(chan error, 2)
	go func() { errCh <- listener.Serve(ctx) }()

	if g.config.AdminAddr != "" {
		g.admin = &http.Server{Addr: g.config.AdminAddr, Handler: g.adminRouter()}
		go func() {
			if err := g.admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	g.logger.Info("gateway running",
		"listen", g.config.ListenAddr,
		"admin", g.config.AdminAddr,
		"shard", g.config.ShardID,
		"tick_rate", g.clock.Rate())

	g.clock.Start()
	tickErr := g.tickLoop(ctx, errCh)

	g.shutdown()
	return tickErr
}

// tickLoop is the scheduler: advance the frame, apply every owed tick,
// then sleep out the budget until the next one.
func (g *Gateway) tickLoop(ctx context.Context, errCh <-chan error) error {
	for {
		g.clock.AdvanceFrame()
		for g.clock.ShouldTick() {
			g.clock.Tick()
			g.metrics.ticksTotal.Inc()
			g.broadcastHeartbeat()
		}

		sleep := time.Duration(g.clock.MillisUntilNextTick()) * time.Millisecond
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-time.After(sleep):
		}
	}
}

// broadcastHeartbeat sends every session the current tick and wall-clock
// millisecond so clients can slave their interpolation to server time.
func (g *Gateway) broadcastHeartbeat() {
	w := wire.NewWriter()
	defer w.Close()
	w.WriteUint64(g.clock.Current().Uint64())
	w.WriteInt64(time.Now().UnixMilli())
	g.Broadcast(w.Bytes())
}

// Broadcast sends the payload to every live session. Send failures are
// left to each connection's own teardown path.
func (g *Gateway) Broadcast(payload []byte) {
	for _, s := range g.Sessions() {
		if err := s.Send(payload); err != nil && !errors.Is(err, transport.ErrNotConnected) {
			s.logger.Warn("broadcast send failed", "error", err)
		}
	}
}

// Sessions returns a snapshot of the live sessions.
func (g *Gateway) Sessions() []*Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Session, 0, len(g.sessions))
	for _, s := range g.sessions {
		out = append(out, s)
	}
	return out
}

// SessionCount returns the number of live sessions.
func (g *Gateway) SessionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}

// Session returns the live session with the given identity, or nil.
func (g *Gateway) Session(id identity.ID) *Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sessions[id]
}

func (g *Gateway) acceptSession(conn *transport.Conn, remote string) transport.Handler {
	s := newSession(g, conn, remote)

	g.mu.Lock()
	g.sessions[s.id] = s
	count := len(g.sessions)
	g.mu.Unlock()

	g.metrics.sessionsTotal.Inc()
	g.metrics.activeSessions.Set(float64(count))
	s.logger.Info("session joined", "remote", remote, "sessions", count)
	return s
}

func (g *Gateway) dropSession(s *Session) {
	g.mu.Lock()
	_, present := g.sessions[s.id]
	delete(g.sessions, s.id)
	count := len(g.sessions)
	g.mu.Unlock()

	if !present {
		return
	}
	g.metrics.disconnects.Inc()
	g.metrics.activeSessions.Set(float64(count))
}

func (g *Gateway) shutdown() {
	if l := g.listener.Load(); l != nil {
		l.Close()
	}

	for _, s := range g.Sessions() {
		s.Close("server shutting down")
	}

	if g.admin != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		g.admin.Shutdown(ctx)
		cancel()
	}

	g.logger.Info("gateway stopped", "final_tick", g.clock.Current().Uint64())
}
