package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

// Repository persists payout transfer records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a transfers repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a transfer record.
func (r *Repository) Create(ctx context.Context, t *models.Transfer) (*models.Transfer, error) {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// ListByOrder returns all transfer attempts for an order.
func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&transfers).Error
	if err != nil {
		return nil, err
	}
	return transfers, nil
}

// ListFailed returns failed transfers for reconciliation.
func (r *Repository) ListFailed(ctx context.Context) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.TransferStatusFailed).
		Order("created_at ASC").
		Find(&transfers).Error
	if err != nil {
		return nil, err
	}
	return transfers, nil
}
