package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/pagination"
)

// Decision is a seamstress's verdict on a pending order.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Service exposes the order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, customerID uuid.UUID, input CreateOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderListResult, error)
	Decide(ctx context.Context, seamstressID, orderID uuid.UUID, decision Decision) (*OrderDTO, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	ReportProgress(ctx context.Context, seamstressID, orderID uuid.UUID, input ProgressInput) (*OrderDTO, error)
	CompleteOrder(ctx context.Context, seamstressID, orderID uuid.UUID) (*OrderDTO, error)
}

// Actor identifies the caller for ownership and visibility checks.
type Actor struct {
	UserID  uuid.UUID
	Role    *enums.UserRole
	IsAdmin bool
}

// Admin reports whether the actor carries admin rights, through the
// IsAdmin bit or the admin role.
func (a Actor) Admin() bool {
	return a.IsAdmin || (a.Role != nil && *a.Role == enums.UserRoleAdmin)
}

// CreateOrderInput is the payload for placing an order.
type CreateOrderInput struct {
	DesignID     uuid.UUID
	SeamstressID uuid.UUID
	ItemType     string
	Measurements *string
	Notes        *string
}

// ProgressInput carries a production progress update.
type ProgressInput struct {
	Percent int
	Note    *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type designLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Design, error)
}

type offerLoader interface {
	FindOffer(ctx context.Context, designID, seamstressID uuid.UUID) (*models.PricingOffer, error)
}

type completionRecorder interface {
	IncrementCompleted(ctx context.Context, userID uuid.UUID) error
}

// Notifier delivers in-app notifications. Failures are logged by the
// implementation and never fail the order operation.
type Notifier interface {
	Emit(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, title, message string, link *string)
}

type service struct {
	repo     Repository
	tx       txRunner
	designs  designLoader
	offers   offerLoader
	profiles completionRecorder
	notifier Notifier
}

// NewService constructs the order lifecycle service.
func NewService(repo Repository, tx txRunner, designs designLoader, offers offerLoader, profiles completionRecorder, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if designs == nil {
		return nil, fmt.Errorf("design loader required")
	}
	if offers == nil {
		return nil, fmt.Errorf("offer loader required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("completion recorder required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		designs:  designs,
		offers:   offers,
		profiles: profiles,
		notifier: notifier,
	}, nil
}

// CreateOrder places an order against a design and its pricing offer. The
// money split is computed once here and never recomputed afterwards.
func (s *service) CreateOrder(ctx context.Context, customerID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	if input.DesignID == uuid.Nil || input.SeamstressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "design_id and seamstress_id are required")
	}
	if input.ItemType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item_type is required")
	}

	design, err := s.designs.FindByID(ctx, input.DesignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "design not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load design")
	}
	if !design.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "design is not available")
	}

	offer, err := s.offers.FindOffer(ctx, input.DesignID, input.SeamstressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "seamstress has no pricing offer for this design")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing offer")
	}

	quote := BuildQuote(design.PriceCents, offer.PriceCents, design.RoyaltyRateBps)

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order := &models.Order{
			CustomerID:             customerID,
			DesignID:               design.ID,
			DesignerID:             design.DesignerID,
			SeamstressID:           input.SeamstressID,
			Status:                 enums.OrderStatusPlaced,
			PaymentStatus:          enums.PaymentStatusPending,
			TotalCents:             quote.TotalCents,
			DesignerRoyaltyCents:   quote.DesignerRoyaltyCents,
			SeamstressEarningCents: quote.SeamstressEarningCents,
			PlatformFeeCents:       quote.PlatformFeeCents,
			ItemType:               input.ItemType,
			Measurements:           input.Measurements,
			Notes:                  input.Notes,
		}
		order, err := repo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		created = order

		entry := &models.OrderTimelineEntry{
			OrderID: order.ID,
			Status:  enums.OrderStatusPlaced,
			Note:    "order placed",
		}
		if err := repo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append timeline")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, created.SeamstressID, enums.NotificationOrderPlaced,
		"New order", "A customer placed an order that needs your decision.", orderLink(created.ID))

	return FromModel(created), nil
}

func (s *service) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadVisible(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

// ListOrders returns the orders the actor participates in. Admins see
// every order.
func (s *service) ListOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderListResult, error) {
	var rows []models.Order
	var err error
	switch {
	case actor.Admin():
		rows, err = s.repo.ListAll(ctx, params)
	case actor.Role == nil:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role selection required")
	case *actor.Role == enums.UserRoleCustomer:
		rows, err = s.repo.ListByCustomer(ctx, actor.UserID, params)
	case *actor.Role == enums.UserRoleSeamstress:
		rows, err = s.repo.ListBySeamstress(ctx, actor.UserID, params)
	case *actor.Role == enums.UserRoleDesigner:
		rows, err = s.repo.ListByDesigner(ctx, actor.UserID, params)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list orders")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &OrderListResult{Orders: make([]OrderDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
			result.NextCursor = &cursor
			break
		}
		result.Orders = append(result.Orders, *FromModel(&rows[i]))
	}
	return result, nil
}

// Decide applies a seamstress verdict. The compare-and-set in the repo
// closes the window between loading the order and writing the new state.
func (s *service) Decide(ctx context.Context, seamstressID, orderID uuid.UUID, decision Decision) (*OrderDTO, error) {
	target, err := decisionTarget(decision)
	if err != nil {
		return nil, err
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.SeamstressID != seamstressID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another seamstress")
		}
		if order.Status == target {
			updated = order
			return nil
		}
		if !CanTransition(order.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "decision not allowed in current state").
				WithDetails(map[string]any{"status": order.Status, "target": target})
		}

		moved, err := repo.UpdateStatus(ctx, order.ID, order.Status, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently")
		}

		entry := &models.OrderTimelineEntry{
			OrderID: order.ID,
			Status:  target,
			Note:    fmt.Sprintf("seamstress %s", decision),
		}
		if err := repo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append timeline")
		}

		order.Status = target
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch target {
	case enums.OrderStatusApproved:
		s.notifier.Emit(ctx, updated.CustomerID, enums.NotificationOrderApproved,
			"Order approved", "Your order was approved. Complete payment to start production.", orderLink(updated.ID))
	case enums.OrderStatusRejected:
		s.notifier.Emit(ctx, updated.CustomerID, enums.NotificationOrderRejected,
			"Order rejected", "The seamstress declined your order.", orderLink(updated.ID))
	}

	return FromModel(updated), nil
}

// Cancel voids an order. Customers can cancel their own order before it
// is paid; admins can cancel any order in a cancellable state.
func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !actor.Admin() {
			if order.CustomerID != actor.UserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
			}
			if order.PaymentStatus == enums.PaymentStatusPaid {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "paid orders can only be cancelled by support")
			}
		}

		if !CanTransition(order.Status, enums.OrderStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled in current state")
		}

		moved, err := repo.UpdateStatus(ctx, order.ID, order.Status, enums.OrderStatusCancelled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently")
		}

		entry := &models.OrderTimelineEntry{
			OrderID: order.ID,
			Status:  enums.OrderStatusCancelled,
			Note:    "order cancelled",
		}
		if err := repo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append timeline")
		}

		order.Status = enums.OrderStatusCancelled
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, updated.SeamstressID, enums.NotificationOrderProgress,
		"Order cancelled", "An order assigned to you was cancelled.", orderLink(updated.ID))

	return FromModel(updated), nil
}

// ReportProgress records production progress. The first report moves a
// paid order into production.
func (s *service) ReportProgress(ctx context.Context, seamstressID, orderID uuid.UUID, input ProgressInput) (*OrderDTO, error) {
	if input.Percent < 0 || input.Percent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 0 and 100")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.SeamstressID != seamstressID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another seamstress")
		}

		if order.Status == enums.OrderStatusPaid {
			moved, err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid, enums.OrderStatusInProgress)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			if !moved {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently")
			}
			order.Status = enums.OrderStatusInProgress

			entry := &models.OrderTimelineEntry{
				OrderID: order.ID,
				Status:  enums.OrderStatusInProgress,
				Note:    "production started",
			}
			if err := repo.AppendTimeline(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append timeline")
			}
		} else if order.Status != enums.OrderStatusInProgress {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "progress can only be reported on paid orders")
		}

		if err := repo.UpdateProgress(ctx, order.ID, input.Percent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update progress")
		}
		order.ProgressPercent = input.Percent

		if input.Note != nil && *input.Note != "" {
			entry := &models.OrderTimelineEntry{
				OrderID: order.ID,
				Status:  enums.OrderStatusInProgress,
				Note:    *input.Note,
			}
			if err := repo.AppendTimeline(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append timeline")
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, updated.CustomerID, enums.NotificationOrderProgress,
		"Order update", fmt.Sprintf("Production is %d%% complete.", updated.ProgressPercent), orderLink(updated.ID))

	return FromModel(updated), nil
}

// CompleteOrder finishes production and credits the seamstress profile.
func (s *service) CompleteOrder(ctx context.Context, seamstressID, orderID uuid.UUID) (*OrderDTO, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.SeamstressID != seamstressID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another seamstress")
		}
		if !CanTransition(order.Status, enums.OrderStatusCompleted) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in production")
		}

		moved, err := repo.UpdateStatus(ctx, order.ID, order.Status, enums.OrderStatusCompleted)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently")
		}

		now := time.Now().UTC()
		if err := repo.SetCompletedAt(ctx, order.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set completed_at")
		}
		if err := repo.UpdateProgress(ctx, order.ID, 100); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update progress")
		}

		entry := &models.OrderTimelineEntry{
			OrderID: order.ID,
			Status:  enums.OrderStatusCompleted,
			Note:    "order completed",
		}
		if err := repo.AppendTimeline(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append timeline")
		}

		order.Status = enums.OrderStatusCompleted
		order.CompletedAt = &now
		order.ProgressPercent = 100
		updated = order

		return s.profiles.IncrementCompleted(ctx, seamstressID)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, updated.CustomerID, enums.NotificationOrderProgress,
		"Order completed", "Your order is finished.", orderLink(updated.ID))

	return FromModel(updated), nil
}

func (s *service) loadVisible(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if actor.Admin() {
		return order, nil
	}
	switch actor.UserID {
	case order.CustomerID, order.SeamstressID, order.DesignerID:
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not visible to this user")
}

func decisionTarget(decision Decision) (enums.OrderStatus, error) {
	switch decision {
	case DecisionConfirm:
		return enums.OrderStatusConfirmed, nil
	case DecisionApprove:
		return enums.OrderStatusApproved, nil
	case DecisionReject:
		return enums.OrderStatusRejected, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid decision")
	}
}

func orderLink(orderID uuid.UUID) *string {
	link := "/orders/" + orderID.String()
	return &link
}
