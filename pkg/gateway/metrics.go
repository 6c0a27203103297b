package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "netcore"

type metrics struct {
	activeSessions prometheus.Gauge
	sessionsTotal  prometheus.Counter
	disconnects    prometheus.Counter
	framesReceived prometheus.Counter
	framesSent     prometheus.Counter
	bytesReceived  prometheus.Counter
	bytesSent      prometheus.Counter
	ticksTotal     prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "active_sessions",
			Help:      "Number of currently connected sessions.",
		}),
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "sessions_total",
			Help:      "Total sessions accepted since start.",
		}),
		disconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "disconnects_total",
			Help:      "Total session disconnects, from any trigger.",
		}),
		framesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "frames_received_total",
			Help:      "Frames received across all sessions.",
		}),
		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "frames_sent_total",
			Help:      "Frames sent across all sessions.",
		}),
		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "bytes_received_total",
			Help:      "Payload bytes received across all sessions.",
		}),
		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gateway",
			Name:      "bytes_sent_total",
			Help:      "Payload bytes sent across all sessions.",
		}),
		ticksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "clock",
			Name:      "ticks_total",
			Help:      "Simulation ticks applied since start.",
		}),
	}
}
