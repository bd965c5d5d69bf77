package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// AccessTokenPayload is what a caller supplies when minting a token. JTI is
// optional; leave it empty unless rotating an existing session.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the decoded token: the lcdt identity fields plus the
// standard registered claims (iss, exp, jti, ...).
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
