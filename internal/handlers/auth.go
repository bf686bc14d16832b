package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mbenavides/billfold/internal/models"
	"github.com/mbenavides/billfold/internal/services"
	pkgauth "github.com/mbenavides/billfold/pkg/auth"
	pkghttp "github.com/mbenavides/billfold/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, firstName, lastName, email, phone, password string) (*services.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
}

// PasswordResetServiceInterface defines the interface for the reset token lifecycle
type PasswordResetServiceInterface interface {
	RequestReset(ctx context.Context, email string) error
	Validate(ctx context.Context, plainToken string) (*models.User, error)
	ConsumeAndReset(ctx context.Context, plainToken, newPassword string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service      AuthServiceInterface
	resetService PasswordResetServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, resetService PasswordResetServiceInterface) *AuthHandler {
	return &AuthHandler{
		service:      service,
		resetService: resetService,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	FirstName   string `json:"firstname" validate:"required,min=1,max=100"`
	LastName    string `json:"lastname" validate:"required,min=1,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phonenumber" validate:"required,phone"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest represents the request body for a reset token request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ValidateResetTokenRequest represents the request body for reset token validation
type ValidateResetTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// ResetPasswordRequest represents the request body for a password reset
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Register handles user registration
// @Summary User registration
// @Accept json
// @Param request body RegisterRequest true "Register request"
// @Produce json
// @Success 201 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	// Normalize before validation so padded input is judged on its trimmed form
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	authResp, err := h.service.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.PhoneNumber, req.Password)
	if err != nil {
		var pve *pkgauth.PasswordValidationError
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with this email or phone number already exists")
		case errors.As(err, &pve), errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, authResp)
}

// Login handles user login
// @Summary User login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	authResp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			pkghttp.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, authResp)
}

// ForgotPassword handles a password reset request. The response is the same
// whether or not the email maps to an account.
// @Summary Request a password reset email
// @Accept json
// @Param request body ForgotPasswordRequest true "Forgot password request"
// @Produce json
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.resetService.RequestReset(r.Context(), req.Email); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists with this email, a password reset link will be sent.",
	})
}

// ValidateResetToken checks whether a reset token is live without consuming it
// @Summary Validate a password reset token
// @Accept json
// @Param request body ValidateResetTokenRequest true "Validate reset token request"
// @Produce json
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/validate-reset-token [post]
func (h *AuthHandler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	var req ValidateResetTokenRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if _, err := h.resetService.Validate(r.Context(), req.Token); err != nil {
		if errors.Is(err, models.ErrInvalidOrExpiredToken) {
			pkghttp.WriteUnauthorized(w, "Invalid or expired reset token")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// ResetPassword consumes the reset token from the URL and sets a new password
// @Summary Reset password with a token
// @Accept json
// @Param token path string true "Reset token"
// @Param request body ResetPasswordRequest true "Reset password request"
// @Produce json
// @Success 200
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/reset-password/{token} [put]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		pkghttp.WriteBadRequest(w, "Missing reset token")
		return
	}

	var req ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.resetService.ConsumeAndReset(r.Context(), token, req.Password); err != nil {
		var pve *pkgauth.PasswordValidationError
		switch {
		case errors.Is(err, models.ErrInvalidOrExpiredToken):
			pkghttp.WriteUnauthorized(w, "Invalid or expired reset token")
		case errors.As(err, &pve), errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Password has been reset. Please log in with your new password.",
	})
}
