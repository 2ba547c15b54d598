package designs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/pagination"
)

// Repository provides design persistence operations.
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

// Create inserts a design row.
func (r *Repository) Create(ctx context.Context, design *models.Design) (*models.Design, error) {
	if err := r.db.WithContext(ctx).Create(design).Error; err != nil {
		return nil, err
	}
	return design, nil
}

// FindByID loads a design by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	var design models.Design
	if err := r.db.WithContext(ctx).First(&design, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &design, nil
}

// Update persists the mutable fields of a design.
func (r *Repository) Update(ctx context.Context, design *models.Design) (*models.Design, error) {
	if err := r.db.WithContext(ctx).Save(design).Error; err != nil {
		return nil, err
	}
	return design, nil
}

// ListActive returns active designs in newest-first cursor order.
func (r *Repository) ListActive(ctx context.Context, params pagination.Params) ([]models.Design, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var designs []models.Design
	if err := query.Find(&designs).Error; err != nil {
		return nil, err
	}
	return designs, nil
}

// ListByDesigner returns all designs for one designer, active or not.
func (r *Repository) ListByDesigner(ctx context.Context, designerID uuid.UUID) ([]models.Design, error) {
	var designs []models.Design
	err := r.db.WithContext(ctx).
		Where("designer_id = ?", designerID).
		Order("created_at DESC").
		Find(&designs).Error
	if err != nil {
		return nil, err
	}
	return designs, nil
}

// CountActive tallies the active catalog size.
func (r *Repository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Design{}).
		Where("is_active = ?", true).
		Count(&total).Error
	return total, err
}
