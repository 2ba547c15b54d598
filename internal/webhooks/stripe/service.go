package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stitchlink/stitchlink-backend/internal/payments"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
	"github.com/stitchlink/stitchlink-backend/pkg/metrics"
	"github.com/stripe/stripe-go/v84"
)

const (
	outcomeProcessed = "processed"
	outcomeDuplicate = "duplicate"
	outcomeIgnored   = "ignored"
	outcomeError     = "error"
)

type settlementService interface {
	SettleByPaymentIntent(ctx context.Context, paymentIntentID, path string) (*payments.SettlementDTO, error)
	FailByPaymentIntent(ctx context.Context, paymentIntentID string) error
}

type idempotencyGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type ServiceParams struct {
	Payments settlementService
	Guard    idempotencyGuard
	Logger   *logger.Logger
	Metrics  *metrics.PaymentMetrics
}

type Service struct {
	payments settlementService
	guard    idempotencyGuard
	logger   *logger.Logger
	metrics  *metrics.PaymentMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments service required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		payments: params.Payments,
		guard:    params.Guard,
		logger:   params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// HandleEvent dispatches a verified Stripe event. Stripe retries delivery
// until it sees a 2xx, so events the service does not care about return nil.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	eventType := string(event.Type)

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
	default:
		s.metrics.ObserveWebhookEvent(eventType, outcomeIgnored)
		return nil
	}

	ctx = s.logger.WithField(ctx, "stripe_event_id", event.ID)

	seen, err := s.guard.CheckAndMark(ctx, event.ID)
	if err != nil {
		// Settlement is guarded by its own conditional update, so a redis
		// outage degrades to at-least-once processing instead of dropping
		// the event.
		s.logger.Error(ctx, "webhook idempotency check failed, processing anyway", err)
	} else if seen {
		s.metrics.ObserveWebhookEvent(eventType, outcomeDuplicate)
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		s.metrics.ObserveWebhookEvent(eventType, outcomeError)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	if intent.ID == "" {
		s.metrics.ObserveWebhookEvent(eventType, outcomeError)
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}

	if err := s.process(ctx, event.Type, intent.ID); err != nil {
		// Unmark so the Stripe retry is not swallowed as a duplicate.
		if delErr := s.guard.Delete(ctx, event.ID); delErr != nil {
			s.logger.Error(ctx, "release idempotency key", delErr)
		}
		s.metrics.ObserveWebhookEvent(eventType, outcomeError)
		return err
	}

	s.metrics.ObserveWebhookEvent(eventType, outcomeProcessed)
	return nil
}

func (s *Service) process(ctx context.Context, eventType stripe.EventType, paymentIntentID string) error {
	switch eventType {
	case stripe.EventTypePaymentIntentSucceeded:
		settlement, err := s.payments.SettleByPaymentIntent(ctx, paymentIntentID, payments.PathWebhook)
		if err != nil {
			return err
		}
		if settlement.AlreadySettled {
			s.logger.Info(ctx, "webhook arrived after synchronous settlement")
		}
		return nil
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.payments.FailByPaymentIntent(ctx, paymentIntentID)
	default:
		return nil
	}
}
