package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records settlement and payout outcomes. Transfer failures
// are the operational alert surface for degraded payouts: the order stays
// PAID while a human reconciles the transfer.
type PaymentMetrics struct {
	settlements      *prometheus.CounterVec
	transferFailures *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_settlements_total",
		Help: "Order settlements by path (confirm/webhook) and outcome.",
	}, []string{"path", "outcome"})
	transferFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_transfer_failures_total",
		Help: "Failed payout transfers to connected accounts.",
	}, []string{"recipient"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Stripe webhook events by type and outcome.",
	}, []string{"type", "outcome"})
	reg.MustRegister(settlements, transferFailures, webhookEvents)
	return &PaymentMetrics{
		settlements:      settlements,
		transferFailures: transferFailures,
		webhookEvents:    webhookEvents,
	}
}

// ObserveSettlement counts one settlement attempt for the given path.
func (p *PaymentMetrics) ObserveSettlement(path, outcome string) {
	if p == nil || p.settlements == nil {
		return
	}
	p.settlements.WithLabelValues(path, outcome).Inc()
}

// IncTransferFailure counts a failed payout transfer.
func (p *PaymentMetrics) IncTransferFailure(recipient string) {
	if p == nil || p.transferFailures == nil {
		return
	}
	p.transferFailures.WithLabelValues(recipient).Inc()
}

// ObserveWebhookEvent counts a processed webhook event.
func (p *PaymentMetrics) ObserveWebhookEvent(eventType, outcome string) {
	if p == nil || p.webhookEvents == nil {
		return
	}
	p.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}
