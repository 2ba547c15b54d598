package models

import (
	"time"

	"github.com/google/uuid"
)

// PricingOffer is a seamstress's explicit agreement to produce a specific
// design at a stated price. Orders cannot exist without one.
type PricingOffer struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DesignID     uuid.UUID `gorm:"column:design_id;type:uuid;not null;uniqueIndex:idx_offer_design_seamstress"`
	SeamstressID uuid.UUID `gorm:"column:seamstress_id;type:uuid;not null;uniqueIndex:idx_offer_design_seamstress"`
	PriceCents   int       `gorm:"column:price_cents;not null"`
	Difficulty   int       `gorm:"column:difficulty;not null;default:1"`
	TimelineDays *int      `gorm:"column:timeline_days"`
	Notes        *string   `gorm:"column:notes;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
