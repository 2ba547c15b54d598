package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting an access JWT.
// Role is nil for accounts that have not completed role selection yet.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Email   string
	Role    *enums.UserRole
	IsAdmin bool
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  uuid.UUID       `json:"user_id"`
	Email   string          `json:"email"`
	Role    *enums.UserRole `json:"role,omitempty"`
	IsAdmin bool            `json:"is_admin"`
	jwt.RegisteredClaims
}

// RefreshTokenClaims carries only the subject identity; it is signed with
// the refresh secret so an access token can never be replayed as one.
type RefreshTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}
