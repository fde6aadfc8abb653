package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters/histograms for outbound workflow calls.
type WebhookMetrics struct {
	requestsTotal  *prometheus.CounterVec
	retriesTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medilens",
			Subsystem: "webhook",
			Name:      "requests_total",
			Help:      "Total outbound webhook requests",
		}, []string{"target", "outcome"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medilens",
			Subsystem: "webhook",
			Name:      "retries_total",
			Help:      "Total webhook retry attempts",
		}, []string{"target"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medilens",
			Subsystem: "webhook",
			Name:      "request_latency_seconds",
			Help:      "Latency of outbound webhook requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.retriesTotal, m.requestLatency)
	return m
}

func (m *WebhookMetrics) ObserveRequest(target, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(target, outcome).Inc()
}

func (m *WebhookMetrics) ObserveRetry(target string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(target).Inc()
}

func (m *WebhookMetrics) ObserveLatency(target string, seconds float64) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(target).Observe(seconds)
}
