package models

import (
	"time"

	"github.com/google/uuid"
)

// Design is a sellable pattern owned by a designer. The platform price is
// fixed at listing time; the royalty basis points apply per order.
type Design struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DesignerID      uuid.UUID `gorm:"column:designer_id;type:uuid;not null;index"`
	Title           string    `gorm:"column:title;type:text;not null"`
	Description     *string   `gorm:"column:description;type:text"`
	PriceCents      int       `gorm:"column:price_cents;not null"`
	RoyaltyRateBps  int       `gorm:"column:royalty_rate_bps;not null;default:1000"`
	ImageURL        *string   `gorm:"column:image_url;type:text"`
	IsActive        bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
