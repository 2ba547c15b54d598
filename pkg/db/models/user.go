package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

// User represents the canonical identity entity. Role is nil until the
// one-time selection step; IsAdmin is a privilege bit independent of role.
type User struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string          `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string          `gorm:"column:password_hash;not null"`
	FirstName       string          `gorm:"column:first_name;not null"`
	LastName        string          `gorm:"column:last_name;not null"`
	Role            *enums.UserRole `gorm:"column:role;type:text"`
	IsAdmin         bool            `gorm:"column:is_admin;not null;default:false"`
	StripeAccountID *string         `gorm:"column:stripe_account_id;type:text"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt     *time.Time      `gorm:"column:last_login_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
