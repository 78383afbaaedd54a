package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "availability"

// Metrics holds all application metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	refreshCycles   prometheus.Counter
	refreshErrors   prometheus.Counter
	refreshDuration prometheus.Histogram

	agentsTotal    prometheus.Gauge
	agentsByStatus *prometheus.GaugeVec
	agentsByRing   *prometheus.GaugeVec
	agentsAlerting *prometheus.GaugeVec

	polls *prometheus.CounterVec // source, result

	bindingPushes *prometheus.CounterVec // table
	bindingErrors prometheus.Counter

	wsConnectionsTotal prometheus.Counter
	wsActive           prometheus.Gauge
	snapshotsBroadcast prometheus.Counter

	breachChecks  prometheus.Counter
	historyWrites *prometheus.CounterVec // result
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// New creates a metrics set on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		refreshCycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Number of dashboard refresh cycles run",
		}),
		refreshErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Refresh cycles where at least one binding failed to decode",
		}),
		refreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Time spent reconciling and broadcasting one snapshot",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),

		agentsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agents_total",
			Help:      "Resolved agents in the latest snapshot",
		}),
		agentsByStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agents_by_status",
			Help:      "Resolved agents by status",
		}, []string{"status"}),
		agentsByRing: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agents_by_ring",
			Help:      "Resolved agents by ring colour",
		}, []string{"ring"}),
		agentsAlerting: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agents_alerting",
			Help:      "Resolved agents carrying an alert, by severity",
		}, []string{"severity"}),

		polls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "External API polls by source and result",
		}, []string{"source", "result"}),

		bindingPushes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "binding_pushes_total",
			Help:      "Host data-binding pushes received by table",
		}, []string{"table"}),
		bindingErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "binding_push_errors_total",
			Help:      "Host data-binding pushes rejected",
		}),

		wsConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_connections_total",
			Help:      "WebSocket connections accepted",
		}),
		wsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_active_connections",
			Help:      "Currently connected dashboard clients",
		}),
		snapshotsBroadcast: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_broadcast_total",
			Help:      "Dashboard snapshots handed to the hub",
		}),

		breachChecks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breach_checks_total",
			Help:      "Conversations sent to the assignment-status endpoint",
		}),
		historyWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "Status change records written by result",
		}, []string{"result"}),
	}
}

// RecordRefresh records one refresh cycle
func (m *Metrics) RecordRefresh(duration time.Duration) {
	m.refreshCycles.Inc()
	m.refreshDuration.Observe(duration.Seconds())
}

// RecordRefreshError increments the refresh error counter
func (m *Metrics) RecordRefreshError() {
	m.refreshErrors.Inc()
}

// UpdateAgentStats replaces the agent distribution gauges
func (m *Metrics) UpdateAgentStats(agents []types.ResolvedAgent) {
	summary := types.Summarize(agents)
	m.agentsTotal.Set(float64(summary.TotalAgents))
	for _, s := range types.AllStatuses {
		m.agentsByStatus.WithLabelValues(string(s)).Set(float64(summary.StatusBreakdown[s]))
	}
	for _, r := range types.AllRingColors {
		m.agentsByRing.WithLabelValues(string(r)).Set(float64(summary.RingBreakdown[r]))
	}
	for _, sev := range types.AllSeverities {
		m.agentsAlerting.WithLabelValues(string(sev)).Set(float64(summary.AlertBreakdown[sev]))
	}
}

// RecordPoll records the result of one external poll
func (m *Metrics) RecordPoll(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.polls.WithLabelValues(source, result).Inc()
}

// RecordBindingPush increments the push counter for a table
func (m *Metrics) RecordBindingPush(table string) {
	m.bindingPushes.WithLabelValues(table).Inc()
}

// RecordBindingError increments the rejected push counter
func (m *Metrics) RecordBindingError() {
	m.bindingErrors.Inc()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.wsConnectionsTotal.Inc()
	m.wsActive.Inc()
}

// RecordWebSocketDisconnect decrements the active connection gauge
func (m *Metrics) RecordWebSocketDisconnect() {
	m.wsActive.Dec()
}

// RecordBroadcast increments the snapshot counter
func (m *Metrics) RecordBroadcast() {
	m.snapshotsBroadcast.Inc()
}

// RecordBreachChecks adds to the breach check counter
func (m *Metrics) RecordBreachChecks(n int) {
	m.breachChecks.Add(float64(n))
}

// RecordHistoryWrite records one status history write
func (m *Metrics) RecordHistoryWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.historyWrites.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
