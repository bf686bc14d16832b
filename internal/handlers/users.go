package handlers

import (
	"net/http"

	"github.com/mbenavides/billfold/internal/auth"
	"github.com/mbenavides/billfold/internal/services"
	pkghttp "github.com/mbenavides/billfold/pkg/http"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct{}

// NewUserHandler creates a new UserHandler
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me returns the profile of the authenticated user
// @Summary Get current user profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, services.UserToResponse(user))
}
