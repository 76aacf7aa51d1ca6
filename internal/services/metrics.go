package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	MessagesProcessed *prometheus.CounterVec
	LookupRequests    *prometheus.CounterVec
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	ActionsExecuted   prometheus.Counter
	WSConnections     prometheus.Gauge
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics(agent *AgentService, connManager *ConnectionManager) *Metrics {
	metrics := &Metrics{
		// Messages by resulting category (counter - only goes up)
		MessagesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nova_messages_processed_total",
			Help: "Total number of chat messages processed by category",
		}, []string{"category"}),

		// External lookups by domain and outcome
		LookupRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nova_lookup_requests_total",
			Help: "Total number of external lookups by domain and result",
		}, []string{"domain", "result"}), // result: "hit", "fetched", "unavailable"

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nova_cache_hits_total",
			Help: "Total number of lookup cache hits",
		}),

		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nova_cache_misses_total",
			Help: "Total number of lookup cache misses",
		}),

		ActionsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nova_agent_actions_executed_total",
			Help: "Total number of agent actions executed",
		}),

		// WebSocket active connections (gauge - can go up and down)
		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "nova_websocket_connections_active",
			Help: "Number of active WebSocket connections",
		}),
	}

	// Pending actions tracked straight off the agent so the gauge never drifts
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "nova_agent_pending_actions",
			Help: "Current number of pending agent actions",
		},
		func() float64 {
			if agent != nil {
				return float64(agent.PendingCount())
			}
			return 0
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "nova_websocket_connections_current",
			Help: "Current number of active WebSocket connections (from connection manager)",
		},
		func() float64 {
			if connManager != nil {
				return float64(connManager.Count())
			}
			return 0
		},
	))

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordMessage records a processed message by category
func (m *Metrics) RecordMessage(category string) {
	m.MessagesProcessed.WithLabelValues(category).Inc()
}

// RecordLookup records an external lookup outcome
func (m *Metrics) RecordLookup(domain, result string) {
	m.LookupRequests.WithLabelValues(domain, result).Inc()
}

// RecordCacheHit records a lookup served from cache
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a lookup that had to go upstream
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// RecordActionExecuted records an executed agent action
func (m *Metrics) RecordActionExecuted() {
	m.ActionsExecuted.Inc()
}

// RecordWSConnect records a new WebSocket connection
func (m *Metrics) RecordWSConnect() {
	m.WSConnections.Inc()
}

// RecordWSDisconnect records a WebSocket disconnection
func (m *Metrics) RecordWSDisconnect() {
	m.WSConnections.Dec()
}
