package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

// OrderDTO is the transport shape of an order including its frozen money
// fields and timeline.
type OrderDTO struct {
	ID                     uuid.UUID           `json:"id"`
	CustomerID             uuid.UUID           `json:"customer_id"`
	DesignID               uuid.UUID           `json:"design_id"`
	DesignerID             uuid.UUID           `json:"designer_id"`
	SeamstressID           uuid.UUID           `json:"seamstress_id"`
	Status                 enums.OrderStatus   `json:"status"`
	PaymentStatus          enums.PaymentStatus `json:"payment_status"`
	TotalCents             int                 `json:"total_cents"`
	DesignerRoyaltyCents   int                 `json:"designer_royalty_cents"`
	SeamstressEarningCents int                 `json:"seamstress_earning_cents"`
	PlatformFeeCents       int                 `json:"platform_fee_cents"`
	ProgressPercent        int                 `json:"progress_percent"`
	ItemType               string              `json:"item_type"`
	Measurements           *string             `json:"measurements,omitempty"`
	Notes                  *string             `json:"notes,omitempty"`
	PaidAt                 *time.Time          `json:"paid_at,omitempty"`
	CompletedAt            *time.Time          `json:"completed_at,omitempty"`
	Timeline               []TimelineEntryDTO  `json:"timeline,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

// TimelineEntryDTO is one audit trail row on an order.
type TimelineEntryDTO struct {
	Status    enums.OrderStatus `json:"status"`
	Note      string            `json:"note"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderListResult pairs a page of orders with the next cursor.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:                     o.ID,
		CustomerID:             o.CustomerID,
		DesignID:               o.DesignID,
		DesignerID:             o.DesignerID,
		SeamstressID:           o.SeamstressID,
		Status:                 o.Status,
		PaymentStatus:          o.PaymentStatus,
		TotalCents:             o.TotalCents,
		DesignerRoyaltyCents:   o.DesignerRoyaltyCents,
		SeamstressEarningCents: o.SeamstressEarningCents,
		PlatformFeeCents:       o.PlatformFeeCents,
		ProgressPercent:        o.ProgressPercent,
		ItemType:               o.ItemType,
		Measurements:           o.Measurements,
		Notes:                  o.Notes,
		PaidAt:                 o.PaidAt,
		CompletedAt:            o.CompletedAt,
		CreatedAt:              o.CreatedAt,
		UpdatedAt:              o.UpdatedAt,
	}
	for _, entry := range o.Timeline {
		dto.Timeline = append(dto.Timeline, TimelineEntryDTO{
			Status:    entry.Status,
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		})
	}
	return dto
}
