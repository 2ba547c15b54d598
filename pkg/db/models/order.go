package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

// Order is the central entity of the marketplace. Money fields are frozen
// at creation time; later price changes on the design or offer never
// retroactively affect an existing order.
type Order struct {
	ID                     uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID             uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	DesignID               uuid.UUID            `gorm:"column:design_id;type:uuid;not null;index"`
	DesignerID             uuid.UUID            `gorm:"column:designer_id;type:uuid;not null;index"`
	SeamstressID           uuid.UUID            `gorm:"column:seamstress_id;type:uuid;not null;index"`
	Status                 enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'placed'"`
	PaymentStatus          enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	TotalCents             int                  `gorm:"column:total_cents;not null"`
	DesignerRoyaltyCents   int                  `gorm:"column:designer_royalty_cents;not null"`
	SeamstressEarningCents int                  `gorm:"column:seamstress_earning_cents;not null"`
	PlatformFeeCents       int                  `gorm:"column:platform_fee_cents;not null"`
	ProgressPercent        int                  `gorm:"column:progress_percent;not null;default:0"`
	ItemType               string               `gorm:"column:item_type;type:text;not null"`
	Measurements           *string              `gorm:"column:measurements;type:text"`
	Notes                  *string              `gorm:"column:notes;type:text"`
	StripePaymentIntentID  *string              `gorm:"column:stripe_payment_intent_id;type:text"`
	PaidAt                 *time.Time           `gorm:"column:paid_at"`
	CompletedAt            *time.Time           `gorm:"column:completed_at"`
	Timeline               []OrderTimelineEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
