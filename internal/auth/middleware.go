package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mbenavides/billfold/internal/models"
	pkghttp "github.com/mbenavides/billfold/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the resolved user in context
	UserContextKey contextKey = "user"
	// ClaimsContextKey is the key for storing token claims in context
	ClaimsContextKey contextKey = "claims"
)

// SubjectResolver fetches the token subject from the credential store
type SubjectResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// RequireUser validates a bearer token from the Authorization header (or the
// session cookie as a fallback), resolves the subject, and injects both the
// claims and the resolved user into the request context. A token whose
// subject no longer exists is rejected the same way as an invalid token.
func RequireUser(tm *TokenManager, users SubjectResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r, SessionTokenCookie)
			if tokenString == "" {
				pkghttp.WriteUnauthorized(w, "Not authorized, no token provided")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Not authorized, invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "Not authorized, user not found")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = context.WithValue(ctx, UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin validates a bearer token from the admin cookie (or the
// Authorization header) and requires the full admin marker pair: role must
// be "admin" AND the admin flag must be set. A valid token missing either
// marker is forbidden, not unauthorized.
func RequireAdmin(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r, AdminTokenCookie)
			if tokenString == "" {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			if !claims.IsAdmin() {
				pkghttp.WriteForbidden(w, "Admin privileges required")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls a bearer token from the Authorization header, falling
// back to the named cookie.
func extractToken(r *http.Request, cookieName string) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// GetUserFromContext extracts the resolved user from request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetClaimsFromContext extracts token claims from request context
func GetClaimsFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
