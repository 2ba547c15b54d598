package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

// Transfer records a payout attempt to a connected account, tagged with
// the order id for reconciliation. Failed rows are operational alerts,
// never a reason to unwind the payment capture.
type Transfer struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	RecipientUserID  uuid.UUID               `gorm:"column:recipient_user_id;type:uuid;not null"`
	Recipient        enums.TransferRecipient `gorm:"column:recipient;type:text;not null"`
	AmountCents      int                     `gorm:"column:amount_cents;not null"`
	Status           enums.TransferStatus    `gorm:"column:status;type:text;not null"`
	StripeTransferID *string                 `gorm:"column:stripe_transfer_id;type:text"`
	FailureReason    *string                 `gorm:"column:failure_reason;type:text"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
}
