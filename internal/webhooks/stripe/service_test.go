package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stitchlink/stitchlink-backend/internal/payments"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
	"github.com/stripe/stripe-go/v84"
)

type stubPayments struct {
	settled        []string
	failed         []string
	settleErr      error
	alreadySettled bool
}

func (s *stubPayments) SettleByPaymentIntent(_ context.Context, paymentIntentID, path string) (*payments.SettlementDTO, error) {
	if s.settleErr != nil {
		return nil, s.settleErr
	}
	if path != payments.PathWebhook {
		return nil, errors.New("unexpected settlement path " + path)
	}
	s.settled = append(s.settled, paymentIntentID)
	return &payments.SettlementDTO{AlreadySettled: s.alreadySettled}, nil
}

func (s *stubPayments) FailByPaymentIntent(_ context.Context, paymentIntentID string) error {
	s.failed = append(s.failed, paymentIntentID)
	return nil
}

type stubGuard struct {
	seen     map[string]bool
	checkErr error
	deleted  []string
}

func (g *stubGuard) CheckAndMark(_ context.Context, eventID string) (bool, error) {
	if g.checkErr != nil {
		return false, g.checkErr
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	dup := g.seen[eventID]
	g.seen[eventID] = true
	return dup, nil
}

func (g *stubGuard) Delete(_ context.Context, eventID string) error {
	delete(g.seen, eventID)
	g.deleted = append(g.deleted, eventID)
	return nil
}

func newTestService(t *testing.T, pay *stubPayments, guard *stubGuard) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Payments: pay,
		Guard:    guard,
		Logger:   logger.New(logger.Options{ServiceName: "webhook-test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func intentEvent(t *testing.T, eventType stripe.EventType, id, intentID string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(&stripe.PaymentIntent{ID: intentID})
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	return &stripe.Event{
		ID:   id,
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestService_HandleEventSettlesOnSuccess(t *testing.T) {
	pay := &stubPayments{}
	svc := newTestService(t, pay, &stubGuard{})

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, "evt_1", "pi_1")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(pay.settled) != 1 || pay.settled[0] != "pi_1" {
		t.Fatalf("expected pi_1 settled, got %v", pay.settled)
	}
}

func TestService_HandleEventMarksFailure(t *testing.T) {
	pay := &stubPayments{}
	svc := newTestService(t, pay, &stubGuard{})

	event := intentEvent(t, stripe.EventTypePaymentIntentPaymentFailed, "evt_2", "pi_2")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(pay.failed) != 1 || pay.failed[0] != "pi_2" {
		t.Fatalf("expected pi_2 failed, got %v", pay.failed)
	}
	if len(pay.settled) != 0 {
		t.Fatalf("failure event must not settle")
	}
}

func TestService_HandleEventSkipsDuplicates(t *testing.T) {
	pay := &stubPayments{}
	svc := newTestService(t, pay, &stubGuard{})

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, "evt_dup", "pi_3")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if len(pay.settled) != 1 {
		t.Fatalf("expected one settlement, got %d", len(pay.settled))
	}
}

func TestService_HandleEventReleasesKeyOnError(t *testing.T) {
	pay := &stubPayments{settleErr: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	guard := &stubGuard{}
	svc := newTestService(t, pay, guard)

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, "evt_err", "pi_4")
	if err := svc.HandleEvent(context.Background(), event); err == nil {
		t.Fatalf("expected error")
	}
	if len(guard.deleted) != 1 || guard.deleted[0] != "evt_err" {
		t.Fatalf("expected idempotency key released, got %v", guard.deleted)
	}

	pay.settleErr = nil
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("retry delivery: %v", err)
	}
	if len(pay.settled) != 1 {
		t.Fatalf("expected retry to settle, got %d", len(pay.settled))
	}
}

func TestService_HandleEventProcessesWhenGuardUnavailable(t *testing.T) {
	pay := &stubPayments{}
	svc := newTestService(t, pay, &stubGuard{checkErr: errors.New("redis down")})

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, "evt_5", "pi_5")
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(pay.settled) != 1 {
		t.Fatalf("expected settlement despite guard outage")
	}
}

func TestService_HandleEventIgnoresUnrelatedTypes(t *testing.T) {
	pay := &stubPayments{}
	guard := &stubGuard{}
	svc := newTestService(t, pay, guard)

	event := &stripe.Event{
		ID:   "evt_6",
		Type: stripe.EventTypeCustomerCreated,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(pay.settled) != 0 || len(pay.failed) != 0 {
		t.Fatalf("unrelated event must not touch payments")
	}
	if len(guard.seen) != 0 {
		t.Fatalf("unrelated event must not consume idempotency keys")
	}
}

func TestService_HandleEventRejectsEmptyIntent(t *testing.T) {
	pay := &stubPayments{}
	svc := newTestService(t, pay, &stubGuard{})

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, "evt_7", "")
	err := svc.HandleEvent(context.Background(), event)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
