package auth

import (
	"github.com/google/uuid"

	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

// Actor is the authenticated caller as seen by domain services. It is
// built from access token claims by the auth middleware.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
	// SessionID is the access session identifier (the token's jti),
	// needed to revoke the session on logout.
	SessionID string
}

// IsStaff reports whether the actor may operate the kitchen dashboard.
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// CanActFor reports whether the actor may touch resources owned by the
// given user.
func (a Actor) CanActFor(userID uuid.UUID) bool {
	return a.UserID == userID || a.IsAdmin()
}
