// Package metrics provides optional Prometheus instrumentation for the
// SMB client engine. Metrics are disabled until InitRegistry is called;
// constructors return nil when disabled and every method is safe to call
// on a nil receiver, so instrumented code never branches on enablement.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry *prometheus.Registry

// InitRegistry enables metrics collection. Call once at startup, before
// constructing any metrics instances.
func InitRegistry() {
	registry = prometheus.NewRegistry()
}

// IsEnabled reports whether InitRegistry has been called
func IsEnabled() bool {
	return registry != nil
}

// GetRegistry returns the active registry, or nil when metrics are disabled
func GetRegistry() *prometheus.Registry {
	return registry
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format. Returns nil when metrics are disabled.
func Handler() http.Handler {
	if registry == nil {
		return nil
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ClientMetrics instruments one SMB connection: traffic per command,
// outstanding calls, the credit window and failure counters.
type ClientMetrics struct {
	requests   *prometheus.CounterVec
	responses  *prometheus.CounterVec
	pending    prometheus.Gauge
	credits    prometheus.Gauge
	queueDepth prometheus.Gauge

	timeouts    prometheus.Counter
	disconnects prometheus.Counter
}

// NewClientMetrics creates a Prometheus-backed metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewClientMetrics() *ClientMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &ClientMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbcore_client_requests_total",
				Help: "Total SMB2 requests submitted, by command",
			},
			[]string{"command"},
		),
		responses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "smbcore_client_responses_total",
				Help: "Total SMB2 response segments received, by command",
			},
			[]string{"command"},
		),
		pending: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "smbcore_client_pending_calls",
				Help: "Calls awaiting a terminal response",
			},
		),
		credits: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "smbcore_client_credits_available",
				Help: "Send credits currently granted by the server",
			},
		),
		queueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "smbcore_client_send_queue_depth",
				Help: "Requests queued waiting for credits",
			},
		),
		timeouts: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "smbcore_client_call_timeouts_total",
				Help: "Calls that expired before a terminal response arrived",
			},
		),
		disconnects: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "smbcore_client_disconnects_total",
				Help: "Connections torn down by transport or protocol failure",
			},
		),
	}
}

// ObserveRequest counts one submitted request
func (m *ClientMetrics) ObserveRequest(command string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(command).Inc()
}

// ObserveResponse counts one received response segment
func (m *ClientMetrics) ObserveResponse(command string) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(command).Inc()
}

// SetPending updates the outstanding-call gauge
func (m *ClientMetrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// SetCredits updates the credit-window gauge
func (m *ClientMetrics) SetCredits(n int) {
	if m == nil {
		return
	}
	m.credits.Set(float64(n))
}

// SetQueueDepth updates the send-queue gauge
func (m *ClientMetrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// ObserveTimeouts counts calls expired by their deadline
func (m *ClientMetrics) ObserveTimeouts(n int) {
	if m == nil || n == 0 {
		return
	}
	m.timeouts.Add(float64(n))
}

// ObserveDisconnect counts one fatal connection teardown
func (m *ClientMetrics) ObserveDisconnect() {
	if m == nil {
		return
	}
	m.disconnects.Inc()
}
