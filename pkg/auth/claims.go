package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AdminID     uuid.UUID
	Email       string
	DisplayName string
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to dashboard operators.
type AccessTokenClaims struct {
	AdminID     uuid.UUID `json:"admin_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}
