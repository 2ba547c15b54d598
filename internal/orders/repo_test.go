package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	"github.com/stitchlink/stitchlink-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  design_id TEXT NOT NULL,
  designer_id TEXT NOT NULL,
  seamstress_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'placed',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  total_cents INTEGER NOT NULL,
  designer_royalty_cents INTEGER NOT NULL,
  seamstress_earning_cents INTEGER NOT NULL,
  platform_fee_cents INTEGER NOT NULL,
  progress_percent INTEGER NOT NULL DEFAULT 0,
  item_type TEXT NOT NULL,
  measurements TEXT,
  notes TEXT,
  stripe_payment_intent_id TEXT,
  paid_at DATETIME,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	timeline := `
CREATE TABLE IF NOT EXISTS order_timeline_entries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  note TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(timeline).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, payment enums.PaymentStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:                     uuid.New(),
		CustomerID:             uuid.New(),
		DesignID:               uuid.New(),
		DesignerID:             uuid.New(),
		SeamstressID:           uuid.New(),
		Status:                 status,
		PaymentStatus:          payment,
		TotalCents:             15500,
		DesignerRoyaltyCents:   500,
		SeamstressEarningCents: 10000,
		PlatformFeeCents:       500,
		ItemType:               "dress",
		CreatedAt:              created,
		UpdatedAt:              created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestMarkPaidSettlesExactlyOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusApproved, enums.PaymentStatusPending, time.Now().UTC())

	first, err := repo.MarkPaid(ctx, order.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkPaid(ctx, order.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, second, "second settle must lose the conditional update")

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, got.Status)
	assert.Equal(t, enums.PaymentStatusPaid, got.PaymentStatus)
	require.NotNil(t, got.PaidAt)
}

func TestMarkPaidRequiresApprovedOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusPlaced, enums.PaymentStatusPending, time.Now().UTC())

	settled, err := repo.MarkPaid(ctx, order.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, settled)
}

func TestUpdateStatusIsCompareAndSet(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusPlaced, enums.PaymentStatusPending, time.Now().UTC())

	moved, err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPlaced, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, moved)

	stale, err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPlaced, enums.OrderStatusApproved)
	require.NoError(t, err)
	assert.False(t, stale, "transition from a stale state must not apply")
}

func TestSetPaymentIntentIDAttachesOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusApproved, enums.PaymentStatusPending, time.Now().UTC())

	ok, err := repo.SetPaymentIntentID(ctx, order.ID, "pi_first")
	require.NoError(t, err)
	assert.True(t, ok)

	same, err := repo.SetPaymentIntentID(ctx, order.ID, "pi_first")
	require.NoError(t, err)
	assert.True(t, same, "re-attaching the same intent is a no-op success")

	other, err := repo.SetPaymentIntentID(ctx, order.ID, "pi_other")
	require.NoError(t, err)
	assert.False(t, other, "a different intent must be rejected")

	got, err := repo.FindByPaymentIntentID(ctx, "pi_first")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestListByCustomerPagesNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		order := seedOrder(t, db, enums.OrderStatusPlaced, enums.PaymentStatusPending, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, db.Model(order).UpdateColumn("customer_id", customerID).Error)
		ids = append(ids, order.ID)
	}

	page, err := repo.ListByCustomer(ctx, customerID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(page), 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
}

func TestListAllSpansParticipants(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := seedOrder(t, db, enums.OrderStatusPlaced, enums.PaymentStatusPending, base)
	second := seedOrder(t, db, enums.OrderStatusApproved, enums.PaymentStatusPending, base.Add(time.Hour))

	page, err := repo.ListAll(ctx, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, second.ID, page[0].ID, "newest order comes first")
	assert.Equal(t, first.ID, page[1].ID)
}

func TestTimelineRoundTrip(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusPlaced, enums.PaymentStatusPending, time.Now().UTC())

	require.NoError(t, repo.AppendTimeline(ctx, &models.OrderTimelineEntry{
		ID:      uuid.New(),
		OrderID: order.ID,
		Status:  enums.OrderStatusPlaced,
		Note:    "order placed",
	}))

	entries, err := repo.ListTimeline(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.OrderStatusPlaced, entries[0].Status)
	assert.Equal(t, "order placed", entries[0].Note)
}
