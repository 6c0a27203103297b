package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riftlands/netcore/pkg/transport"
)

// statusReport is the JSON shape served at /status.
type statusReport struct {
	Tick          uint64  `json:"tick"`
	TickRate      int     `json:"tickRate"`
	Shard         int     `json:"shard"`
	Sessions      int     `json:"sessions"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// adminRouter serves operational endpoints: liveness, a status snapshot,
// Prometheus metrics, and the WebSocket join point for browser peers.
func (g *Gateway) adminRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		report := statusReport{
			Tick:          g.clock.Current().Uint64(),
			TickRate:      g.clock.Rate(),
			Shard:         g.config.ShardID,
			Sessions:      g.SessionCount(),
			UptimeSeconds: time.Since(g.startedAt).Seconds(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	})

	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(g.registry, promhttp.HandlerOpts{}))

	r.Get("/ws", g.handleWebSocketJoin)

	return r
}

// handleWebSocketJoin upgrades a browser peer onto the same framed
// session path as TCP peers.
func (g *Gateway) handleWebSocketJoin(w http.ResponseWriter, r *http.Request) {
	if _, err := transport.UpgradeWebSocket(w, r, g.acceptSession, g.config.Transport); err != nil {
		g.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
	}
}
