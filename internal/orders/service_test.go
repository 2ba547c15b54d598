package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/pagination"
)

func TestCreateOrderFreezesMoneySplit(t *testing.T) {
	f := newFixture(t)
	customerID := uuid.New()

	dto, err := f.svc.CreateOrder(context.Background(), customerID, CreateOrderInput{
		DesignID:     f.design.ID,
		SeamstressID: f.offer.SeamstressID,
		ItemType:     "dress",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if dto.Status != enums.OrderStatusPlaced {
		t.Fatalf("expected placed, got %s", dto.Status)
	}
	if dto.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", dto.PaymentStatus)
	}
	// design 5000 + offer 10000 + fee 500
	if dto.TotalCents != 15500 {
		t.Fatalf("expected total 15500, got %d", dto.TotalCents)
	}
	if dto.DesignerRoyaltyCents != 500 {
		t.Fatalf("expected royalty 500, got %d", dto.DesignerRoyaltyCents)
	}
	if dto.SeamstressEarningCents != 10000 {
		t.Fatalf("expected earning 10000, got %d", dto.SeamstressEarningCents)
	}
	if dto.DesignerID != f.design.DesignerID {
		t.Fatalf("expected frozen designer id")
	}
	if got := f.notifier.sent[0]; got.userID != f.offer.SeamstressID || got.kind != enums.NotificationOrderPlaced {
		t.Fatalf("expected seamstress notification, got %+v", got)
	}

	entries := f.repo.timeline[dto.ID]
	if len(entries) != 1 || entries[0].Status != enums.OrderStatusPlaced {
		t.Fatalf("expected one placed timeline entry, got %+v", entries)
	}
}

func TestCreateOrderRequiresOffer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{
		DesignID:     f.design.ID,
		SeamstressID: uuid.New(),
		ItemType:     "dress",
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateOrderInactiveDesign(t *testing.T) {
	f := newFixture(t)
	f.design.IsActive = false

	_, err := f.svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{
		DesignID:     f.design.ID,
		SeamstressID: f.offer.SeamstressID,
		ItemType:     "dress",
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestDecideApproveNotifiesCustomer(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	dto, err := f.svc.Decide(context.Background(), order.SeamstressID, order.ID, DecisionApprove)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if dto.Status != enums.OrderStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}

	last := f.notifier.sent[len(f.notifier.sent)-1]
	if last.userID != order.CustomerID || last.kind != enums.NotificationOrderApproved {
		t.Fatalf("expected customer approval notification, got %+v", last)
	}
}

func TestDecideWrongSeamstress(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	_, err := f.svc.Decide(context.Background(), uuid.New(), order.ID, DecisionApprove)
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestDecideIdempotentOnSameTarget(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	if _, err := f.svc.Decide(context.Background(), order.SeamstressID, order.ID, DecisionApprove); err != nil {
		t.Fatalf("first decide: %v", err)
	}
	dto, err := f.svc.Decide(context.Background(), order.SeamstressID, order.ID, DecisionApprove)
	if err != nil {
		t.Fatalf("repeat decide: %v", err)
	}
	if dto.Status != enums.OrderStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
}

func TestDecideRejectedIsTerminal(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	if _, err := f.svc.Decide(context.Background(), order.SeamstressID, order.ID, DecisionReject); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := f.svc.Decide(context.Background(), order.SeamstressID, order.ID, DecisionApprove)
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCustomerCancelBeforePayment(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)
	actor := Actor{UserID: order.CustomerID}

	dto, err := f.svc.Cancel(context.Background(), actor, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if dto.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", dto.Status)
	}
}

func TestCustomerCannotCancelPaidOrder(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)
	order.Status = enums.OrderStatusPaid
	order.PaymentStatus = enums.PaymentStatusPaid

	_, err := f.svc.Cancel(context.Background(), Actor{UserID: order.CustomerID}, order.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)

	// support path still works
	dto, err := f.svc.Cancel(context.Background(), Actor{UserID: uuid.New(), IsAdmin: true}, order.ID)
	if err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if dto.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", dto.Status)
	}
}

func TestReportProgressStartsProduction(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)
	order.Status = enums.OrderStatusPaid
	order.PaymentStatus = enums.PaymentStatusPaid

	dto, err := f.svc.ReportProgress(context.Background(), order.SeamstressID, order.ID, ProgressInput{Percent: 25})
	if err != nil {
		t.Fatalf("report progress: %v", err)
	}
	if dto.Status != enums.OrderStatusInProgress {
		t.Fatalf("expected in_progress, got %s", dto.Status)
	}
	if dto.ProgressPercent != 25 {
		t.Fatalf("expected 25%%, got %d", dto.ProgressPercent)
	}
}

func TestReportProgressRejectedBeforePayment(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	_, err := f.svc.ReportProgress(context.Background(), order.SeamstressID, order.ID, ProgressInput{Percent: 10})
	requireCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCompleteOrderCreditsSeamstress(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)
	order.Status = enums.OrderStatusInProgress
	order.PaymentStatus = enums.PaymentStatusPaid

	dto, err := f.svc.CompleteOrder(context.Background(), order.SeamstressID, order.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if dto.Status != enums.OrderStatusCompleted || dto.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %+v", dto)
	}
	if dto.ProgressPercent != 100 {
		t.Fatalf("expected 100%%, got %d", dto.ProgressPercent)
	}
	if f.profiles.completed[order.SeamstressID] != 1 {
		t.Fatalf("expected completion credit")
	}
}

func TestListOrdersScopedByRole(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	customerRole := enums.UserRoleCustomer
	result, err := f.svc.ListOrders(context.Background(), Actor{UserID: order.CustomerID, Role: &customerRole}, pagination.Params{})
	if err != nil {
		t.Fatalf("list as customer: %v", err)
	}
	if len(result.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(result.Orders))
	}

	otherCustomer := uuid.New()
	result, err = f.svc.ListOrders(context.Background(), Actor{UserID: otherCustomer, Role: &customerRole}, pagination.Params{})
	if err != nil {
		t.Fatalf("list as other customer: %v", err)
	}
	if len(result.Orders) != 0 {
		t.Fatalf("expected empty list, got %d", len(result.Orders))
	}

	_, err = f.svc.ListOrders(context.Background(), Actor{UserID: uuid.New()}, pagination.Params{})
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestAdminListsAllOrders(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t)
	f.placeOrder(t)

	result, err := f.svc.ListOrders(context.Background(), Actor{UserID: uuid.New(), IsAdmin: true}, pagination.Params{})
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected all 2 orders, got %d", len(result.Orders))
	}

	adminRole := enums.UserRoleAdmin
	result, err = f.svc.ListOrders(context.Background(), Actor{UserID: uuid.New(), Role: &adminRole}, pagination.Params{})
	if err != nil {
		t.Fatalf("list as admin role: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected all 2 orders, got %d", len(result.Orders))
	}
}

func TestGetOrderVisibility(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	for _, id := range []uuid.UUID{order.CustomerID, order.SeamstressID, order.DesignerID} {
		if _, err := f.svc.GetOrder(context.Background(), Actor{UserID: id}, order.ID); err != nil {
			t.Fatalf("participant %s should see order: %v", id, err)
		}
	}

	_, err := f.svc.GetOrder(context.Background(), Actor{UserID: uuid.New()}, order.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	if _, err := f.svc.GetOrder(context.Background(), Actor{UserID: uuid.New(), IsAdmin: true}, order.ID); err != nil {
		t.Fatalf("admin should see order: %v", err)
	}
}

type fixture struct {
	svc      Service
	repo     *stubOrderRepo
	design   *models.Design
	offer    *models.PricingOffer
	notifier *stubNotifier
	profiles *stubProfiles
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	design := &models.Design{
		ID:             uuid.New(),
		DesignerID:     uuid.New(),
		Title:          "Summer Dress",
		PriceCents:     5000,
		RoyaltyRateBps: 1000,
		IsActive:       true,
	}
	offer := &models.PricingOffer{
		ID:           uuid.New(),
		DesignID:     design.ID,
		SeamstressID: uuid.New(),
		PriceCents:   10000,
		Difficulty:   3,
	}

	repo := &stubOrderRepo{
		orders:   map[uuid.UUID]*models.Order{},
		timeline: map[uuid.UUID][]models.OrderTimelineEntry{},
	}
	notifier := &stubNotifier{}
	profiles := &stubProfiles{completed: map[uuid.UUID]int{}}

	svc, err := NewService(repo, stubTx{}, &stubDesignLoader{design: design}, &stubOfferLoader{offer: offer}, profiles, notifier)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	return &fixture{svc: svc, repo: repo, design: design, offer: offer, notifier: notifier, profiles: profiles}
}

func (f *fixture) placeOrder(t *testing.T) *models.Order {
	t.Helper()
	dto, err := f.svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{
		DesignID:     f.design.ID,
		SeamstressID: f.offer.SeamstressID,
		ItemType:     "dress",
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	return f.repo.orders[dto.ID]
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubDesignLoader struct {
	design *models.Design
}

func (s *stubDesignLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Design, error) {
	if s.design == nil || s.design.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.design, nil
}

type stubOfferLoader struct {
	offer *models.PricingOffer
}

func (s *stubOfferLoader) FindOffer(ctx context.Context, designID, seamstressID uuid.UUID) (*models.PricingOffer, error) {
	if s.offer == nil || s.offer.DesignID != designID || s.offer.SeamstressID != seamstressID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.offer, nil
}

type stubProfiles struct {
	completed map[uuid.UUID]int
}

func (s *stubProfiles) IncrementCompleted(ctx context.Context, userID uuid.UUID) error {
	s.completed[userID]++
	return nil
}

type sentNotification struct {
	userID uuid.UUID
	kind   enums.NotificationType
}

type stubNotifier struct {
	sent []sentNotification
}

func (s *stubNotifier) Emit(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, title, message string, link *string) {
	s.sent = append(s.sent, sentNotification{userID: userID, kind: kind})
}

type stubOrderRepo struct {
	orders   map[uuid.UUID]*models.Order
	timeline map[uuid.UUID][]models.OrderTimelineEntry
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now().UTC()
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrderRepo) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.StripePaymentIntentID != nil && *order.StripePaymentIntentID == paymentIntentID {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) ListAll(ctx context.Context, params pagination.Params) ([]models.Order, error) {
	return s.filter(func(o *models.Order) bool { return true }), nil
}

func (s *stubOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return s.filter(func(o *models.Order) bool { return o.CustomerID == customerID }), nil
}

func (s *stubOrderRepo) ListBySeamstress(ctx context.Context, seamstressID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return s.filter(func(o *models.Order) bool { return o.SeamstressID == seamstressID }), nil
}

func (s *stubOrderRepo) ListByDesigner(ctx context.Context, designerID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return s.filter(func(o *models.Order) bool { return o.DesignerID == designerID }), nil
}

func (s *stubOrderRepo) filter(keep func(*models.Order) bool) []models.Order {
	out := make([]models.Order, 0)
	for _, order := range s.orders {
		if keep(order) {
			out = append(out, *order)
		}
	}
	return out
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	return true, nil
}

func (s *stubOrderRepo) MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok || order.Status != enums.OrderStatusApproved || order.PaymentStatus != enums.PaymentStatusPending {
		return false, nil
	}
	order.Status = enums.OrderStatusPaid
	order.PaymentStatus = enums.PaymentStatusPaid
	order.PaidAt = &paidAt
	return true, nil
}

func (s *stubOrderRepo) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	if order, ok := s.orders[orderID]; ok && order.PaymentStatus == enums.PaymentStatusPending {
		order.PaymentStatus = enums.PaymentStatusFailed
	}
	return nil
}

func (s *stubOrderRepo) SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	if order.StripePaymentIntentID != nil && *order.StripePaymentIntentID != paymentIntentID {
		return false, nil
	}
	order.StripePaymentIntentID = &paymentIntentID
	return true, nil
}

func (s *stubOrderRepo) UpdateProgress(ctx context.Context, orderID uuid.UUID, percent int) error {
	if order, ok := s.orders[orderID]; ok {
		order.ProgressPercent = percent
	}
	return nil
}

func (s *stubOrderRepo) SetCompletedAt(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	if order, ok := s.orders[orderID]; ok {
		order.CompletedAt = &at
	}
	return nil
}

func (s *stubOrderRepo) AppendTimeline(ctx context.Context, entry *models.OrderTimelineEntry) error {
	s.timeline[entry.OrderID] = append(s.timeline[entry.OrderID], *entry)
	return nil
}

func (s *stubOrderRepo) ListTimeline(ctx context.Context, orderID uuid.UUID) ([]models.OrderTimelineEntry, error) {
	return s.timeline[orderID], nil
}

func (s *stubOrderRepo) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	counts := map[enums.OrderStatus]int64{}
	for _, order := range s.orders {
		counts[order.Status]++
	}
	return counts, nil
}

func (s *stubOrderRepo) RevenueTotals(ctx context.Context) (*RevenueTotals, error) {
	totals := &RevenueTotals{}
	for _, order := range s.orders {
		if order.PaymentStatus != enums.PaymentStatusPaid {
			continue
		}
		totals.PaidOrderCount++
		totals.GrossCents += int64(order.TotalCents)
		totals.PlatformFeeCents += int64(order.PlatformFeeCents)
		totals.DesignerRoyaltyCents += int64(order.DesignerRoyaltyCents)
		totals.SeamstressEarningCents += int64(order.SeamstressEarningCents)
	}
	return totals, nil
}
