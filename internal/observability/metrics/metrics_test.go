package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	require.NotNil(t, m)

	m.ObserveRequest("triage", "ok")
	m.ObserveRequest("triage", "ok")
	m.ObserveRequest("triage", "error")
	m.ObserveRetry("triage")
	m.ObserveLatency("triage", 0.25)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestsTotal.WithLabelValues("triage", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues("triage", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.retriesTotal.WithLabelValues("triage")))
}

func TestWebhookMetricsNilReceiver(t *testing.T) {
	var m *WebhookMetrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("triage", "ok")
		m.ObserveRetry("triage")
		m.ObserveLatency("triage", 1)
	})
}
