package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the single claims shape carried by every bearer token the
// service issues. The verifier accepts no other shape; the subject id always
// lives in UserID regardless of token scope.
//
// Admin tokens carry both Role == "admin" and Admin == true. Admin-gated
// routes require the full pair, so a token forged with only one of the two
// markers never clears the privilege check.
type TokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Admin  bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the full admin marker pair.
func (c *TokenClaims) IsAdmin() bool {
	return c.Role == RoleAdmin && c.Admin
}
