package seamstresses

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
)

// ProfileDTO is the transport shape of a seamstress profile.
type ProfileDTO struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	BasePriceCents      int       `json:"base_price_cents"`
	TurnaroundDaysMin   int       `json:"turnaround_days_min"`
	TurnaroundDaysMax   int       `json:"turnaround_days_max"`
	Bio                 *string   `json:"bio,omitempty"`
	Rating              float64   `json:"rating"`
	CompletedOrderCount int       `json:"completed_order_count"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// OfferDTO is the transport shape of a pricing offer.
type OfferDTO struct {
	ID           uuid.UUID `json:"id"`
	DesignID     uuid.UUID `json:"design_id"`
	SeamstressID uuid.UUID `json:"seamstress_id"`
	PriceCents   int       `json:"price_cents"`
	Difficulty   int       `json:"difficulty"`
	TimelineDays *int      `json:"timeline_days,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ProfileFromModel(p *models.SeamstressProfile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:                  p.ID,
		UserID:              p.UserID,
		BasePriceCents:      p.BasePriceCents,
		TurnaroundDaysMin:   p.TurnaroundDaysMin,
		TurnaroundDaysMax:   p.TurnaroundDaysMax,
		Bio:                 p.Bio,
		Rating:              p.Rating,
		CompletedOrderCount: p.CompletedOrderCount,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func OfferFromModel(o *models.PricingOffer) *OfferDTO {
	if o == nil {
		return nil
	}
	return &OfferDTO{
		ID:           o.ID,
		DesignID:     o.DesignID,
		SeamstressID: o.SeamstressID,
		PriceCents:   o.PriceCents,
		Difficulty:   o.Difficulty,
		TimelineDays: o.TimelineDays,
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
