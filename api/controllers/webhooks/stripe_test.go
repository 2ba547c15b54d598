package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/stitchlink/stitchlink-backend/pkg/logger"
)

const testSigningSecret = "whsec_test"

type fakeStripeWebhookService struct {
	calls     int
	lastEvent *stripe.Event
	err       error
}

func (s *fakeStripeWebhookService) HandleEvent(_ context.Context, event *stripe.Event) error {
	s.calls++
	s.lastEvent = event
	return s.err
}

type fakeSigningClient struct {
	secret string
}

func (c *fakeSigningClient) SigningSecret() string { return c.secret }

func testWebhookLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "webhooks-test", Output: io.Discard})
}

func buildStripeSignatureHeader(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func buildSignedIntentEvent(t *testing.T, eventType stripe.EventType, intentID string) ([]byte, string) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"id": intentID, "object": "payment_intent"})
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	event := stripe.Event{
		ID:   "evt_" + uuid.NewString(),
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload, buildStripeSignatureHeader(payload, testSigningSecret, time.Now().Unix())
}

func TestStripeWebhookDispatchesVerifiedEvent(t *testing.T) {
	svc := &fakeStripeWebhookService{}
	payload, sig := buildSignedIntentEvent(t, "payment_intent.succeeded", "pi_123")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", sig)
	resp := httptest.NewRecorder()

	StripeWebhook(svc, &fakeSigningClient{secret: testSigningSecret}, testWebhookLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.calls != 1 {
		t.Fatalf("expected one dispatch, got %d", svc.calls)
	}
	if svc.lastEvent.Type != "payment_intent.succeeded" {
		t.Fatalf("unexpected event type %s", svc.lastEvent.Type)
	}
}

func TestStripeWebhookRejectsMissingSignature(t *testing.T) {
	svc := &fakeStripeWebhookService{}
	payload, _ := buildSignedIntentEvent(t, "payment_intent.succeeded", "pi_123")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(string(payload)))
	resp := httptest.NewRecorder()

	StripeWebhook(svc, &fakeSigningClient{secret: testSigningSecret}, testWebhookLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("service should not run without a signature")
	}
}

func TestStripeWebhookRejectsForgedSignature(t *testing.T) {
	svc := &fakeStripeWebhookService{}
	payload, _ := buildSignedIntentEvent(t, "payment_intent.succeeded", "pi_123")
	forged := buildStripeSignatureHeader(payload, "whsec_other", time.Now().Unix())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", forged)
	resp := httptest.NewRecorder()

	StripeWebhook(svc, &fakeSigningClient{secret: testSigningSecret}, testWebhookLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("service should not run on a forged signature")
	}
}

func TestStripeWebhookSurfacesHandlerError(t *testing.T) {
	svc := &fakeStripeWebhookService{err: fmt.Errorf("settlement store down")}
	payload, sig := buildSignedIntentEvent(t, "payment_intent.payment_failed", "pi_456")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", sig)
	resp := httptest.NewRecorder()

	StripeWebhook(svc, &fakeSigningClient{secret: testSigningSecret}, testWebhookLogger())(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if svc.calls != 1 {
		t.Fatalf("expected one dispatch, got %d", svc.calls)
	}
}
