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

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListAll pages over every order, used by the admin listing.
func (r *repository) ListAll(ctx context.Context, params pagination.Params) ([]models.Order, error) {
	return r.list(ctx, params, nil)
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return r.list(ctx, params, map[string]any{"customer_id": customerID})
}

func (r *repository) ListBySeamstress(ctx context.Context, seamstressID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return r.list(ctx, params, map[string]any{"seamstress_id": seamstressID})
}

func (r *repository) ListByDesigner(ctx context.Context, designerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return r.list(ctx, params, map[string]any{"designer_id": designerID})
}

func (r *repository) list(ctx context.Context, params pagination.Params, scope map[string]any) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if scope != nil {
		query = query.Where(scope)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order between states with a compare-and-set. A
// zero row count means the order was no longer in the expected state.
func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkPaid settles an order. The WHERE clause is the serialization point
// between the synchronous confirm path and the webhook: only one caller
// can move the row out of approved/pending, so transfers run exactly once.
func (r *repository) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?",
			orderID, enums.OrderStatusApproved, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":         enums.OrderStatusPaid,
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        paidAt,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkPaymentFailed records a failed capture without touching the order
// status; the customer can retry payment while the order stays approved.
func (r *repository) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, enums.PaymentStatusPending).
		UpdateColumn("payment_status", enums.PaymentStatusFailed).Error
}

// SetPaymentIntentID attaches the Stripe payment intent once. Repeat calls
// with a different intent are rejected by the conditional write.
func (r *repository) SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND (stripe_payment_intent_id IS NULL OR stripe_payment_intent_id = ?)",
			orderID, paymentIntentID).
		UpdateColumn("stripe_payment_intent_id", paymentIntentID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateProgress(ctx context.Context, orderID uuid.UUID, percent int) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("progress_percent", percent).Error
}

func (r *repository) SetCompletedAt(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("completed_at", at).Error
}

func (r *repository) AppendTimeline(ctx context.Context, entry *models.OrderTimelineEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListTimeline(ctx context.Context, orderID uuid.UUID) ([]models.OrderTimelineEntry, error) {
	var entries []models.OrderTimelineEntry
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	type row struct {
		Status enums.OrderStatus
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.OrderStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func (r *repository) RevenueTotals(ctx context.Context) (*RevenueTotals, error) {
	var totals RevenueTotals
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(`COUNT(*) AS paid_order_count,
			COALESCE(SUM(total_cents), 0) AS gross_cents,
			COALESCE(SUM(platform_fee_cents), 0) AS platform_fee_cents,
			COALESCE(SUM(designer_royalty_cents), 0) AS designer_royalty_cents,
			COALESCE(SUM(seamstress_earning_cents), 0) AS seamstress_earning_cents`).
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
