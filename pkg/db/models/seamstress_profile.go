package models

import (
	"time"

	"github.com/google/uuid"
)

// SeamstressProfile is the one-to-one extension of a seamstress user.
type SeamstressProfile struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BasePriceCents      int       `gorm:"column:base_price_cents;not null"`
	TurnaroundDaysMin   int       `gorm:"column:turnaround_days_min;not null;default:7"`
	TurnaroundDaysMax   int       `gorm:"column:turnaround_days_max;not null;default:21"`
	Bio                 *string   `gorm:"column:bio;type:text"`
	Rating              float64   `gorm:"column:rating;not null;default:0"`
	CompletedOrderCount int       `gorm:"column:completed_order_count;not null;default:0"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
