package auth

import (
	"net/http"
	"time"
)

const (
	// SessionTokenCookie is the fallback cookie for user bearer tokens
	SessionTokenCookie = "session_token"
	// AdminTokenCookie carries the short-lived admin token
	AdminTokenCookie = "admin_token"
)

// CookieConfig holds cookie configuration settings
type CookieConfig struct {
	Domain   string // Empty string = current host only
	Secure   bool   // HTTPS only
	SameSite string // "strict", "lax", or "none"
}

// SetAdminTokenCookie sets the admin token in an httpOnly cookie
func SetAdminTokenCookie(w http.ResponseWriter, token string, maxAge time.Duration, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     AdminTokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   config.Domain,
		Expires:  time.Now().Add(maxAge),
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true, // prevents JavaScript access
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	}
	http.SetCookie(w, cookie)
}

// ClearAdminTokenCookie clears the admin token cookie
func ClearAdminTokenCookie(w http.ResponseWriter, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     AdminTokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1, // Negative MaxAge deletes the cookie
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	}
	http.SetCookie(w, cookie)
}

// GetAdminTokenCookie retrieves the admin token from cookies
func GetAdminTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(AdminTokenCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// GetSessionTokenCookie retrieves the user session token from cookies
func GetSessionTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionTokenCookie)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// parseSameSite converts string to http.SameSite constant
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
