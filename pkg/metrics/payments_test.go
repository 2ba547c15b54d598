package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPaymentMetrics(reg)

	m.ObserveSettlement("confirm", "paid")
	m.ObserveSettlement("confirm", "paid")
	m.ObserveSettlement("webhook", "already_settled")
	m.IncTransferFailure("designer")
	m.ObserveWebhookEvent("payment_intent.succeeded", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.settlements.WithLabelValues("confirm", "paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settlements.WithLabelValues("webhook", "already_settled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transferFailures.WithLabelValues("designer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhookEvents.WithLabelValues("payment_intent.succeeded", "ok")))
}

func TestPaymentMetricsNilSafe(t *testing.T) {
	m := NewPaymentMetrics(nil)
	require.NotNil(t, m)

	// no registry, no panic
	m.ObserveSettlement("confirm", "paid")
	m.IncTransferFailure("seamstress")
	m.ObserveWebhookEvent("payment_intent.payment_failed", "error")
}
