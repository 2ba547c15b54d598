package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stitchlink/stitchlink-backend/internal/authz"
	"github.com/stitchlink/stitchlink-backend/internal/orders"
	"github.com/stitchlink/stitchlink-backend/internal/payments"
	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
	"gorm.io/gorm"
)

// Service exposes the operator-only surface: the dashboard snapshot and
// the role override escape hatch.
type Service interface {
	Stats(ctx context.Context, actor authz.Actor) (*StatsDTO, error)
	OverrideRole(ctx context.Context, actor authz.Actor, userID uuid.UUID, role enums.UserRole) error
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	OverrideRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error
	CountByRole(ctx context.Context) (map[enums.UserRole]int64, error)
}

type orderStats interface {
	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	RevenueTotals(ctx context.Context) (*orders.RevenueTotals, error)
}

type designStats interface {
	CountActive(ctx context.Context) (int64, error)
}

type transferStore interface {
	ListFailed(ctx context.Context) ([]models.Transfer, error)
}

type service struct {
	users     userStore
	orders    orderStats
	designs   designStats
	transfers transferStore
	logg      *logger.Logger
}

func NewService(users userStore, orderRepo orderStats, designRepo designStats, transfers transferStore, logg *logger.Logger) (Service, error) {
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user store required")
	}
	if orderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order stats required")
	}
	if designRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "design stats required")
	}
	if transfers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transfer store required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		users:     users,
		orders:    orderRepo,
		designs:   designRepo,
		transfers: transfers,
		logg:      logg,
	}, nil
}

func (s *service) Stats(ctx context.Context, actor authz.Actor) (*StatsDTO, error) {
	if !authz.Allows(actor, authz.CapViewAdminStats) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}

	roleCounts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users by role")
	}
	statusCounts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders by status")
	}
	activeDesigns, err := s.designs.CountActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active designs")
	}
	revenue, err := s.orders.RevenueTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate revenue")
	}
	failed, err := s.transfers.ListFailed(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list failed transfers")
	}

	stats := &StatsDTO{
		UsersByRole:    make(map[string]int64, len(roleCounts)),
		OrdersByStatus: make(map[string]int64, len(statusCounts)),
		ActiveDesigns:  activeDesigns,
		Revenue: RevenueDTO{
			PaidOrderCount:         revenue.PaidOrderCount,
			GrossCents:             revenue.GrossCents,
			PlatformFeeCents:       revenue.PlatformFeeCents,
			DesignerRoyaltyCents:   revenue.DesignerRoyaltyCents,
			SeamstressEarningCents: revenue.SeamstressEarningCents,
		},
		FailedPayouts: make([]payments.TransferDTO, 0, len(failed)),
	}
	for role, total := range roleCounts {
		stats.UsersByRole[role.String()] = total
	}
	for status, total := range statusCounts {
		stats.OrdersByStatus[string(status)] = total
	}
	for i := range failed {
		stats.FailedPayouts = append(stats.FailedPayouts, *payments.TransferFromModel(&failed[i]))
	}
	return stats, nil
}

// OverrideRole reassigns a user's marketplace role. This bypasses the
// write-once claim, so it is gated behind the admin capability and logged.
func (s *service) OverrideRole(ctx context.Context, actor authz.Actor, userID uuid.UUID, role enums.UserRole) error {
	if !authz.Allows(actor, authz.CapOverrideUserRole) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	if !role.IsValid() || role == enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if err := s.users.OverrideRole(ctx, user.ID, role); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "override role")
	}

	ctx = s.logg.WithUserID(ctx, userID.String())
	s.logg.Info(ctx, "user role overridden to "+role.String())
	return nil
}
