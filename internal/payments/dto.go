package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

// PaymentIntentDTO returns what the client needs to finish a card payment.
type PaymentIntentDTO struct {
	OrderID         uuid.UUID `json:"order_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	ClientSecret    string    `json:"client_secret"`
	AmountCents     int       `json:"amount_cents"`
}

// SettlementDTO reports the outcome of a settlement attempt.
type SettlementDTO struct {
	OrderID        uuid.UUID           `json:"order_id"`
	Status         enums.OrderStatus   `json:"status"`
	PaymentStatus  enums.PaymentStatus `json:"payment_status"`
	AlreadySettled bool                `json:"already_settled"`
}

// TransferDTO is the transport shape of a payout transfer record.
type TransferDTO struct {
	ID               uuid.UUID               `json:"id"`
	OrderID          uuid.UUID               `json:"order_id"`
	RecipientUserID  uuid.UUID               `json:"recipient_user_id"`
	Recipient        enums.TransferRecipient `json:"recipient"`
	AmountCents      int                     `json:"amount_cents"`
	Status           enums.TransferStatus    `json:"status"`
	StripeTransferID *string                 `json:"stripe_transfer_id,omitempty"`
	FailureReason    *string                 `json:"failure_reason,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

// OnboardingDTO carries the hosted onboarding link for a connected account.
type OnboardingDTO struct {
	AccountID string `json:"account_id"`
	URL       string `json:"url"`
}

// AccountStatusDTO summarizes a connected account's payout readiness.
type AccountStatusDTO struct {
	AccountID      string `json:"account_id"`
	ChargesEnabled bool   `json:"charges_enabled"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
}

func TransferFromModel(t *models.Transfer) *TransferDTO {
	if t == nil {
		return nil
	}
	return &TransferDTO{
		ID:               t.ID,
		OrderID:          t.OrderID,
		RecipientUserID:  t.RecipientUserID,
		Recipient:        t.Recipient,
		AmountCents:      t.AmountCents,
		Status:           t.Status,
		StripeTransferID: t.StripeTransferID,
		FailureReason:    t.FailureReason,
		CreatedAt:        t.CreatedAt,
	}
}
