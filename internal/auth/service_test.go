package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/stitchlink/stitchlink-backend/pkg/auth"
	"github.com/stitchlink/stitchlink-backend/pkg/config"
	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:      "access-secret",
		RefreshSecret:     "refresh-secret",
		Issuer:            "stitchlink",
		ExpirationMinutes: 30,
		RefreshTTLMinutes: 60,
	}
}

func TestServiceLoginIssuesTokenPair(t *testing.T) {
	password := "customer-secret"
	role := enums.UserRoleCustomer
	user := &models.User{
		ID:           uuid.New(),
		Email:        "customer@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Casey",
		LastName:     "Customer",
		Role:         &role,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc := buildTestService(t, user, cfg)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role == nil || *claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role claim, got %v", claims.Role)
	}
	if claims.IsAdmin {
		t.Fatalf("expected is_admin false")
	}
	if _, err := pkgAuth.ParseRefreshToken(cfg, resp.RefreshToken); err != nil {
		t.Fatalf("parse refresh token: %v", err)
	}
	if resp.User == nil || resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestServiceLoginWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "customer@example.com",
		PasswordHash: mustHashPassword(t, "right-password"),
		IsActive:     true,
	}
	svc := buildTestService(t, user, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestServiceLoginInactiveUser(t *testing.T) {
	password := "secret-pass"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "gone@example.com",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     false,
	}
	svc := buildTestService(t, user, testJWTConfig())

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestServiceRefreshMintsNewPairWithCurrentRole(t *testing.T) {
	cfg := testJWTConfig()
	role := enums.UserRoleSeamstress
	user := &models.User{
		ID:       uuid.New(),
		Email:    "sew@example.com",
		Role:     &role,
		IsActive: true,
	}
	svc := buildTestService(t, user, cfg)

	refresh, err := pkgAuth.MintRefreshToken(cfg, time.Now().UTC(), user.ID)
	if err != nil {
		t.Fatalf("mint refresh: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{RefreshToken: refresh})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role == nil || *claims.Role != enums.UserRoleSeamstress {
		t.Fatalf("expected refreshed token to carry current role, got %v", claims.Role)
	}
}

func TestServiceRefreshRejectsAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	user := &models.User{ID: uuid.New(), Email: "a@example.com", IsActive: true}
	svc := buildTestService(t, user, cfg)

	access, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint access: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{RefreshToken: access})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestServiceSelectRoleOnce(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "new@example.com", IsActive: true}
	svc := buildTestService(t, user, testJWTConfig())

	dto, err := svc.SelectRole(context.Background(), user.ID, SelectRoleRequest{Role: enums.UserRoleDesigner})
	if err != nil {
		t.Fatalf("select role: %v", err)
	}
	if dto.Role == nil || *dto.Role != enums.UserRoleDesigner {
		t.Fatalf("expected designer role, got %v", dto.Role)
	}

	_, err = svc.SelectRole(context.Background(), user.ID, SelectRoleRequest{Role: enums.UserRoleCustomer})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestServiceSelectRoleRejectsAdmin(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "new@example.com", IsActive: true}
	svc := buildTestService(t, user, testJWTConfig())

	_, err := svc.SelectRole(context.Background(), user.ID, SelectRoleRequest{Role: enums.UserRoleAdmin})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func buildTestService(t *testing.T, user *models.User, jwtCfg config.JWTConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:  &stubUserRepo{user: user},
		JWTConfig: jwtCfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
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

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

func (s *stubUserRepo) ClaimRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (bool, error) {
	if s.user == nil || s.user.ID != id {
		return false, nil
	}
	if s.user.Role != nil {
		return false, nil
	}
	s.user.Role = &role
	return true, nil
}
