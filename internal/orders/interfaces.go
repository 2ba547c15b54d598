package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	"github.com/stitchlink/stitchlink-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their timeline.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, error)
	ListBySeamstress(ctx context.Context, seamstressID uuid.UUID, params pagination.Params) ([]models.Order, error)
	ListByDesigner(ctx context.Context, designerID uuid.UUID, params pagination.Params) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error)
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
	SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (bool, error)
	UpdateProgress(ctx context.Context, orderID uuid.UUID, percent int) error
	SetCompletedAt(ctx context.Context, orderID uuid.UUID, at time.Time) error
	AppendTimeline(ctx context.Context, entry *models.OrderTimelineEntry) error
	ListTimeline(ctx context.Context, orderID uuid.UUID) ([]models.OrderTimelineEntry, error)
	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	RevenueTotals(ctx context.Context) (*RevenueTotals, error)
}

// RevenueTotals aggregates settled order money for admin reporting.
type RevenueTotals struct {
	PaidOrderCount         int64
	GrossCents             int64
	PlatformFeeCents       int64
	DesignerRoyaltyCents   int64
	SeamstressEarningCents int64
}
