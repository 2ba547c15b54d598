package controllers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/api/middleware"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

func addRouteParam(req *http.Request, name, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	if rc := chi.RouteContext(req.Context()); rc != nil {
		routeCtx = rc
	}
	routeCtx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func asUser(req *http.Request, userID uuid.UUID, role *enums.UserRole, isAdmin bool) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	if role != nil {
		ctx = middleware.WithRole(ctx, role.String())
	}
	ctx = middleware.WithAdmin(ctx, isAdmin)
	return req.WithContext(ctx)
}

func rolePtr(role enums.UserRole) *enums.UserRole {
	return &role
}

func jsonBody(payload string) io.Reader {
	return strings.NewReader(payload)
}

func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}
