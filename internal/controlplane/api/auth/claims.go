// Package auth provides JWT authentication for the tagkeep API.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role is the access level granted by a token.
type Role string

const (
	// RoleAdmin may read and modify the catalog and trigger housekeeping.
	RoleAdmin Role = "admin"
	// RoleReader may only read the catalog and the run history.
	RoleReader Role = "reader"
)

// IsValid checks if the role is a valid value.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleReader
}

// Claims represents JWT claims for tagkeep service tokens.
//
// Tokens identify a caller (the registered Subject claim, e.g. "lidarr" or
// "ops-cron") rather than a user account; tagkeep has no user store.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the caller's access level.
	Role Role `json:"role"`
}

// IsAdmin returns true if the token grants admin access.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanRead returns true if the token grants read access.
func (c *Claims) CanRead() bool {
	return c.Role.IsValid()
}
