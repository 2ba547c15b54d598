package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/stitchlink/stitchlink-backend/internal/authz"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxRole    contextKey = "actor_role"
	ctxIsAdmin contextKey = "is_admin"
)

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	raw, ok := ctx.Value(ctxUserID).(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// RoleFromContext returns nil for authenticated users that have not
// selected a role yet.
func RoleFromContext(ctx context.Context) *enums.UserRole {
	if ctx == nil {
		return nil
	}
	raw, ok := ctx.Value(ctxRole).(string)
	if !ok {
		return nil
	}
	role, err := enums.ParseUserRole(raw)
	if err != nil {
		return nil
	}
	return &role
}

func IsAdminFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, ok := ctx.Value(ctxIsAdmin).(bool)
	return ok && v
}

// ActorFromContext assembles the capability-check principal.
func ActorFromContext(ctx context.Context) authz.Actor {
	return authz.Actor{
		Role:    RoleFromContext(ctx),
		IsAdmin: IsAdminFromContext(ctx),
	}
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithAdmin flags the context principal as a platform operator.
func WithAdmin(ctx context.Context, isAdmin bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIsAdmin, isAdmin)
}
