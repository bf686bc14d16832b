package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mbenavides/billfold/internal/auth"
	"github.com/mbenavides/billfold/internal/models"
	"github.com/mbenavides/billfold/internal/services"
	pkghttp "github.com/mbenavides/billfold/pkg/http"
)

const (
	defaultMembersLimit = 50
	maxMembersLimit     = 200
)

// AdminServiceInterface defines the interface for admin business logic
type AdminServiceInterface interface {
	Login(ctx context.Context, passcode, callerKey string) (string, error)
	ListMembers(ctx context.Context, limit, offset int) ([]*services.UserResponse, error)
}

// AdminHandler handles administrator HTTP requests
type AdminHandler struct {
	service       AdminServiceInterface
	ipConfig      *pkghttp.IPConfig
	cookieConfig  auth.CookieConfig
	adminTokenTTL time.Duration
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service AdminServiceInterface, ipConfig *pkghttp.IPConfig, cookieConfig auth.CookieConfig, adminTokenTTL time.Duration) *AdminHandler {
	return &AdminHandler{
		service:       service,
		ipConfig:      ipConfig,
		cookieConfig:  cookieConfig,
		adminTokenTTL: adminTokenTTL,
	}
}

// AdminLoginRequest represents the request body for admin login
type AdminLoginRequest struct {
	Passcode string `json:"passcode" validate:"required"`
}

// AdminLoginResponse represents the response body for admin login
type AdminLoginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the admin passcode for an admin token. The token is
// returned in the body and also set as an httpOnly cookie so browser
// clients never have to store it themselves.
// @Summary Admin login
// @Accept json
// @Param request body AdminLoginRequest true "Admin login request"
// @Produce json
// @Success 200 {object} AdminLoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/login [post]
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	// Lockout is tracked per client address.
	callerKey := pkghttp.ExtractClientIP(r, h.ipConfig)

	token, err := h.service.Login(r.Context(), req.Passcode, callerKey)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTooManyAttempts):
			pkghttp.WriteTooManyRequests(w, "Too many failed attempts. Please try again later.")
		case errors.Is(err, models.ErrInvalidPasscode):
			pkghttp.WriteUnauthorized(w, "Invalid passcode")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetAdminTokenCookie(w, token, h.adminTokenTTL, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, AdminLoginResponse{Token: token})
}

// Logout clears the admin token cookie
// @Summary Admin logout
// @Success 204
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAdminTokenCookie(w, h.cookieConfig)
	w.WriteHeader(http.StatusNoContent)
}

// ListMembers returns the non-admin user accounts
// @Summary List member accounts
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Produce json
// @Success 200 {array} services.UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/members [get]
func (h *AdminHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", defaultMembersLimit)
	if limit < 1 || limit > maxMembersLimit {
		limit = defaultMembersLimit
	}
	offset := parseQueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	members, err := h.service.ListMembers(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	if members == nil {
		members = []*services.UserResponse{}
	}
	pkghttp.WriteJSON(w, http.StatusOK, members)
}

func parseQueryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
