package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mbenavides/billfold/internal/models"
)

// TokenManager handles JWT token generation and validation
type TokenManager struct {
	secret           []byte
	issuer           string
	audience         string
	userTokenExpiry  time.Duration
	adminTokenExpiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret, issuer, audience string, userExpiry, adminExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:           []byte(secret),
		issuer:           issuer,
		audience:         audience,
		userTokenExpiry:  userExpiry,
		adminTokenExpiry: adminExpiry,
	}
}

// IssueUserToken creates a long-lived token scoped to a regular subject
func (tm *TokenManager) IssueUserToken(userID string) (string, error) {
	return tm.issue(userID, models.RoleUser, false, tm.userTokenExpiry)
}

// IssueAdminToken creates a short-lived token carrying the admin marker pair
func (tm *TokenManager) IssueAdminToken(userID string) (string, error) {
	return tm.issue(userID, models.RoleAdmin, true, tm.adminTokenExpiry)
}

func (tm *TokenManager) issue(userID, role string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &models.TokenClaims{
		UserID: userID,
		Role:   role,
		Admin:  admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    tm.issuer,
			Audience:  jwt.ClaimStrings{tm.audience},
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a token and returns its claims. Signature integrity
// is checked first, then expiry, then issuer and audience. Tokens signed with
// any method other than HMAC are rejected before key lookup, and tokens
// without an expiry claim never validate.
func (tm *TokenManager) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tm.issuer),
		jwt.WithAudience(tm.audience),
	)

	if err != nil {
		return nil, mapTokenError(err)
	}

	if !token.Valid {
		return nil, models.ErrUnauthorized
	}

	if claims.UserID == "" {
		return nil, models.ErrTokenMalformed
	}

	return claims, nil
}

// mapTokenError folds jwt parse failures into the verification error kinds
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return models.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return models.ErrTokenMalformed
	default:
		// Missing expiry, wrong issuer/audience, not-yet-valid
		return models.ErrTokenMalformed
	}
}
