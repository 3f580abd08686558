package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	GatewayKindPayment = "payment"
	GatewayKindCarrier = "carrier"

	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// GatewayMetrics tracks calls made to payment gateways and shipping carriers.
type GatewayMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_calls_total",
		Help: "External gateway calls by outcome.",
	}, []string{"kind", "gateway", "operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_call_duration_seconds",
		Help:    "Latency of external gateway calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind", "gateway", "operation"})
	reg.MustRegister(calls, duration)
	return &GatewayMetrics{calls: calls, duration: duration}
}

// Observe records one call. err decides the outcome label.
func (m *GatewayMetrics) Observe(kind, gateway, operation string, started time.Time, err error) {
	if m == nil || m.calls == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	gateway = normalizeLabel(gateway)
	m.calls.WithLabelValues(kind, gateway, operation, outcome).Inc()
	m.duration.WithLabelValues(kind, gateway, operation).Observe(time.Since(started).Seconds())
}
