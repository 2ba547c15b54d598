package notifications

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
	"github.com/stitchlink/stitchlink-backend/pkg/pagination"
)

func TestEmitStoresNotification(t *testing.T) {
	repo := &stubRepo{}
	svc := mustService(t, repo)
	userID := uuid.New()

	svc.Emit(context.Background(), userID, enums.NotificationOrderPlaced, "New order", "You have a new order.", nil)

	if len(repo.items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.items))
	}
	if repo.items[0].UserID != userID || repo.items[0].Type != enums.NotificationOrderPlaced {
		t.Fatalf("unexpected notification: %+v", repo.items[0])
	}
}

func TestEmitSwallowsRepoErrors(t *testing.T) {
	repo := &stubRepo{createErr: errors.New("db down")}
	svc := mustService(t, repo)

	// must not panic or propagate
	svc.Emit(context.Background(), uuid.New(), enums.NotificationOrderPaid, "Paid", "msg", nil)
}

func TestEmitIgnoresInvalidInput(t *testing.T) {
	repo := &stubRepo{}
	svc := mustService(t, repo)

	svc.Emit(context.Background(), uuid.Nil, enums.NotificationOrderPaid, "Paid", "msg", nil)
	svc.Emit(context.Background(), uuid.New(), enums.NotificationType("bogus"), "x", "y", nil)

	if len(repo.items) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(repo.items))
	}
}

func TestListScopedToUser(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{}
	for i := 0; i < 3; i++ {
		repo.items = append(repo.items, &models.Notification{
			ID: uuid.New(), UserID: userID, Type: enums.NotificationOrderPlaced, Title: "t", Message: "m",
			CreatedAt: time.Now().UTC(),
		})
	}
	repo.items = append(repo.items, &models.Notification{
		ID: uuid.New(), UserID: uuid.New(), Type: enums.NotificationOrderPlaced, Title: "t", Message: "m",
	})
	svc := mustService(t, repo)

	result, err := svc.List(context.Background(), ListParams{UserID: userID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Items))
	}
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc := mustService(t, &stubRepo{})

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{}
	repo.items = append(repo.items,
		&models.Notification{ID: uuid.New(), UserID: userID},
		&models.Notification{ID: uuid.New(), UserID: userID},
	)
	svc := mustService(t, repo)

	count, err := svc.MarkAllRead(context.Background(), userID)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 marked, got %d", count)
	}
}

func mustService(t *testing.T, repo Repository) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "notifications-test", Output: io.Discard})
	svc, err := NewService(repo, logg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

type stubRepo struct {
	items     []*models.Notification
	createErr error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRepo) Create(ctx context.Context, notification *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	s.items = append(s.items, notification)
	return nil
}

func (s *stubRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	out := make([]models.Notification, 0)
	for _, n := range s.items {
		if n.UserID != params.UserID {
			continue
		}
		if params.UnreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
	}
	return out, nil, nil
}

func (s *stubRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	for _, n := range s.items {
		if n.ID == notificationID && n.UserID == userID {
			updated := n.ReadAt == nil
			n.ReadAt = &now
			return notificationMarkResult{Updated: updated, Found: true}, nil
		}
	}
	return notificationMarkResult{}, nil
}

func (s *stubRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	for _, n := range s.items {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}
