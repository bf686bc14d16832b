package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mbenavides/billfold/internal/models"
	"github.com/mbenavides/billfold/internal/services"
)

func TestMe_Success(t *testing.T) {
	handler := NewUserHandler()

	user := &models.User{
		ID:          "user123",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@x.com",
		PhoneNumber: "555-123-4567",
		Role:        models.RoleUser,
		CreatedAt:   time.Now(),
	}
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req = WithUserContext(req, user)
	w := httptest.NewRecorder()
	handler.Me(w, req)

	var resp services.UserResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "user123", resp.ID)
	assert.Equal(t, "ada@x.com", resp.Email)
	assert.Equal(t, models.RoleUser, resp.Role)
}

func TestMe_ProfileNeverExposesPasswordHash(t *testing.T) {
	handler := NewUserHandler()

	user := &models.User{
		ID:           "user123",
		Email:        "ada@x.com",
		PasswordHash: "$2a$12$notarealhashnotarealhashnotarealhash",
		Role:         models.RoleUser,
	}
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req = WithUserContext(req, user)
	w := httptest.NewRecorder()
	handler.Me(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), user.PasswordHash)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestMe_NoUserInContext(t *testing.T) {
	handler := NewUserHandler()

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()
	handler.Me(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}
