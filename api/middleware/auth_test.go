package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stitchlink/stitchlink-backend/internal/authz"
	pkgAuth "github.com/stitchlink/stitchlink-backend/pkg/auth"
	"github.com/stitchlink/stitchlink-backend/pkg/config"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:      "access-secret",
		RefreshSecret:     "refresh-secret",
		Issuer:            "stitchlink-test",
		ExpirationMinutes: 15,
		RefreshTTLMinutes: 60,
	}
}

type capturedIdentity struct {
	userID  uuid.UUID
	role    *enums.UserRole
	isAdmin bool
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role *enums.UserRole, isAdmin bool) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:  userID,
		Email:   "tester@example.com",
		Role:    role,
		IsAdmin: isAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthSeedsContextFromClaims(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()
	role := enums.UserRoleSeamstress
	token := mintTestToken(t, cfg, userID, &role, false)

	var captured capturedIdentity
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.userID = UserIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.isAdmin = IsAdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if captured.userID != userID {
		t.Fatalf("expected user id %s, got %s", userID, captured.userID)
	}
	if captured.role == nil || *captured.role != enums.UserRoleSeamstress {
		t.Fatalf("expected seamstress role, got %v", captured.role)
	}
	if captured.isAdmin {
		t.Fatalf("expected non-admin")
	}
}

func TestAuthAllowsTokenWithoutRole(t *testing.T) {
	cfg := testJWTConfig()
	token := mintTestToken(t, cfg, uuid.New(), nil, false)

	var captured capturedIdentity
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/role", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if captured.role != nil {
		t.Fatalf("expected nil role, got %v", *captured.role)
	}
}

func TestAuthCarriesAdminFlag(t *testing.T) {
	cfg := testJWTConfig()
	token := mintTestToken(t, cfg, uuid.New(), nil, true)

	var captured capturedIdentity
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.isAdmin = IsAdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if !captured.isAdmin {
		t.Fatalf("expected admin flag carried through")
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestRequireCapabilityBlocksWrongRole(t *testing.T) {
	cfg := testJWTConfig()
	role := enums.UserRoleCustomer
	token := mintTestToken(t, cfg, uuid.New(), &role, false)

	handler := Auth(cfg, nil)(RequireCapability(authz.CapDecideOrder, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/x/decision", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestRequireCapabilityAllowsGrantedRole(t *testing.T) {
	cfg := testJWTConfig()
	role := enums.UserRoleSeamstress
	token := mintTestToken(t, cfg, uuid.New(), &role, false)

	called := false
	handler := Auth(cfg, nil)(RequireCapability(authz.CapDecideOrder, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/x/decision", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if !called || res.Code != http.StatusOK {
		t.Fatalf("expected handler to run, got %d", res.Code)
	}
}
