package seamstresses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
)

// Repository provides seamstress profile and pricing offer persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// UpsertProfile creates or replaces the profile for a user. One profile
// per seamstress, keyed by user_id.
func (r *Repository) UpsertProfile(ctx context.Context, profile *models.SeamstressProfile) (*models.SeamstressProfile, error) {
	var existing models.SeamstressProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", profile.UserID).First(&existing).Error
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		profile.Rating = existing.Rating
		profile.CompletedOrderCount = existing.CompletedOrderCount
		if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
			return nil, err
		}
		return profile, nil
	case err == gorm.ErrRecordNotFound:
		if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
			return nil, err
		}
		return profile, nil
	default:
		return nil, err
	}
}

// FindProfileByUserID loads a profile by the owning user.
func (r *Repository) FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.SeamstressProfile, error) {
	var profile models.SeamstressProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListProfiles returns all profiles ordered by rating.
func (r *Repository) ListProfiles(ctx context.Context) ([]models.SeamstressProfile, error) {
	var profiles []models.SeamstressProfile
	err := r.db.WithContext(ctx).
		Order("rating DESC, completed_order_count DESC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// IncrementCompleted bumps the completed order counter for a seamstress.
func (r *Repository) IncrementCompleted(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.SeamstressProfile{}).
		Where("user_id = ?", userID).
		UpdateColumn("completed_order_count", gorm.Expr("completed_order_count + 1")).Error
}

// CreateOffer inserts a pricing offer. The unique index on
// (design_id, seamstress_id) rejects duplicates.
func (r *Repository) CreateOffer(ctx context.Context, offer *models.PricingOffer) (*models.PricingOffer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// UpdateOffer persists the mutable fields of an offer.
func (r *Repository) UpdateOffer(ctx context.Context, offer *models.PricingOffer) (*models.PricingOffer, error) {
	if err := r.db.WithContext(ctx).Save(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// FindOffer loads the offer a seamstress made for a design.
func (r *Repository) FindOffer(ctx context.Context, designID, seamstressID uuid.UUID) (*models.PricingOffer, error) {
	var offer models.PricingOffer
	err := r.db.WithContext(ctx).
		Where("design_id = ? AND seamstress_id = ?", designID, seamstressID).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// FindOfferByID loads an offer by primary key.
func (r *Repository) FindOfferByID(ctx context.Context, id uuid.UUID) (*models.PricingOffer, error) {
	var offer models.PricingOffer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListOffersByDesign returns every offer made for a design, cheapest first.
func (r *Repository) ListOffersByDesign(ctx context.Context, designID uuid.UUID) ([]models.PricingOffer, error) {
	var offers []models.PricingOffer
	err := r.db.WithContext(ctx).
		Where("design_id = ?", designID).
		Order("price_cents ASC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// ListOffersBySeamstress returns a seamstress's own offers.
func (r *Repository) ListOffersBySeamstress(ctx context.Context, seamstressID uuid.UUID) ([]models.PricingOffer, error) {
	var offers []models.PricingOffer
	err := r.db.WithContext(ctx).
		Where("seamstress_id = ?", seamstressID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}
