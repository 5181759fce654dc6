package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector defines the interface for metrics collection
type Collector interface {
	// Connection metrics
	ClientConnected()
	ClientDisconnected()

	// Chat metrics
	ChatMessage()
	Heart()

	// Signaling metrics
	SignalRelayed(kind string)
	SignalDropped(kind string)

	// Arbiter metrics
	ClaimAccepted(policy string)
	ClaimRejected(policy string)
	BroadcasterEvicted()
	StreamLive(live bool)

	// Protocol metrics
	InvalidMessage()

	// Handler returns an HTTP handler for the metrics endpoint
	Handler() http.Handler
}

// PrometheusCollector implements the Collector interface using Prometheus
type PrometheusCollector struct {
	activeClients     prometheus.Gauge
	clientConnections prometheus.Counter
	clientDisconnects prometheus.Counter

	chatMessages prometheus.Counter
	hearts       prometheus.Counter

	signalsRelayed *prometheus.CounterVec
	signalsDropped *prometheus.CounterVec

	claimsAccepted *prometheus.CounterVec
	claimsRejected *prometheus.CounterVec
	evictions      prometheus.Counter
	streamLive     prometheus.Gauge

	invalidMessages prometheus.Counter
}

// NewPrometheusCollector creates a new PrometheusCollector
func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		activeClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_active_clients",
			Help: "Number of active WebSocket clients",
		}),

		clientConnections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signaling_client_connections_total",
			Help: "Total number of WebSocket client connections",
		}),

		clientDisconnects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signaling_client_disconnects_total",
			Help: "Total number of WebSocket client disconnections",
		}),

		chatMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signaling_chat_messages_total",
			Help: "Total number of chat messages posted",
		}),

		hearts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signaling_hearts_total",
			Help: "Total number of heart reactions",
		}),

		signalsRelayed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_messages_relayed_total",
				Help: "Total number of negotiation messages relayed",
			},
			[]string{"kind"},
		),

		signalsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_messages_dropped_total",
				Help: "Total number of negotiation messages dropped for unknown targets",
			},
			[]string{"kind"},
		),

		claimsAccepted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_claims_accepted_total",
				Help: "Total number of accepted broadcaster claims",
			},
			[]string{"policy"},
		),

		claimsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_claims_rejected_total",
				Help: "Total number of rejected broadcaster claims",
			},
			[]string{"policy"},
		),

		evictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signaling_broadcaster_evictions_total",
			Help: "Total number of broadcasters evicted by a going-live claim",
		}),

		streamLive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_stream_live",
			Help: "Whether the stream is currently live (1) or offline (0)",
		}),

		invalidMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signaling_invalid_messages_total",
			Help: "Total number of malformed or unknown inbound messages",
		}),
	}
}

// ClientConnected records a client connection
func (c *PrometheusCollector) ClientConnected() {
	c.clientConnections.Inc()
	c.activeClients.Inc()
}

// ClientDisconnected records a client disconnection
func (c *PrometheusCollector) ClientDisconnected() {
	c.clientDisconnects.Inc()
	c.activeClients.Dec()
}

// ChatMessage records a chat message being posted
func (c *PrometheusCollector) ChatMessage() {
	c.chatMessages.Inc()
}

// Heart records a heart reaction
func (c *PrometheusCollector) Heart() {
	c.hearts.Inc()
}

// SignalRelayed records a relayed negotiation message
func (c *PrometheusCollector) SignalRelayed(kind string) {
	c.signalsRelayed.WithLabelValues(kind).Inc()
}

// SignalDropped records a dropped negotiation message
func (c *PrometheusCollector) SignalDropped(kind string) {
	c.signalsDropped.WithLabelValues(kind).Inc()
}

// ClaimAccepted records an accepted broadcaster claim
func (c *PrometheusCollector) ClaimAccepted(policy string) {
	c.claimsAccepted.WithLabelValues(policy).Inc()
}

// ClaimRejected records a rejected broadcaster claim
func (c *PrometheusCollector) ClaimRejected(policy string) {
	c.claimsRejected.WithLabelValues(policy).Inc()
}

// BroadcasterEvicted records a forced eviction
func (c *PrometheusCollector) BroadcasterEvicted() {
	c.evictions.Inc()
}

// StreamLive records the stream live/offline state
func (c *PrometheusCollector) StreamLive(live bool) {
	if live {
		c.streamLive.Set(1)
	} else {
		c.streamLive.Set(0)
	}
}

// InvalidMessage records a malformed or unknown inbound message
func (c *PrometheusCollector) InvalidMessage() {
	c.invalidMessages.Inc()
}

// Handler returns an HTTP handler for the metrics endpoint
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.Handler()
}

// Noop is a Collector that records nothing.
type Noop struct{}

func (Noop) ClientConnected()      {}
func (Noop) ClientDisconnected()   {}
func (Noop) ChatMessage()          {}
func (Noop) Heart()                {}
func (Noop) SignalRelayed(string)  {}
func (Noop) SignalDropped(string)  {}
func (Noop) ClaimAccepted(string)  {}
func (Noop) ClaimRejected(string)  {}
func (Noop) BroadcasterEvicted()   {}
func (Noop) StreamLive(bool)       {}
func (Noop) InvalidMessage()       {}
func (Noop) Handler() http.Handler { return http.NotFoundHandler() }
