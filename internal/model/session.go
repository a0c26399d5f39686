package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is what a successful login returns to the client.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Principal is the verified identity attached to an authenticated request.
type Principal struct {
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Claims is the signed payload of a session token. The role is the only
// application claim; ID carries the jti used for revocation.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}
