package designs

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
)

// DesignDTO is the transport shape of a design listing.
type DesignDTO struct {
	ID             uuid.UUID `json:"id"`
	DesignerID     uuid.UUID `json:"designer_id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	PriceCents     int       `json:"price_cents"`
	RoyaltyRateBps int       `json:"royalty_rate_bps"`
	ImageURL       *string   `json:"image_url,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DesignListResult pairs a page of designs with the next cursor.
type DesignListResult struct {
	Designs    []DesignDTO `json:"designs"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

func FromModel(d *models.Design) *DesignDTO {
	if d == nil {
		return nil
	}
	return &DesignDTO{
		ID:             d.ID,
		DesignerID:     d.DesignerID,
		Title:          d.Title,
		Description:    d.Description,
		PriceCents:     d.PriceCents,
		RoyaltyRateBps: d.RoyaltyRateBps,
		ImageURL:       d.ImageURL,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
