package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/mbenavides/billfold/internal/auth"
	"github.com/mbenavides/billfold/internal/models"
	"github.com/mbenavides/billfold/internal/services"
	pkghttp "github.com/mbenavides/billfold/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithURLParam attaches a chi route parameter to the request context
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// WithUserContext adds a resolved user and matching claims to the request
// context, the way RequireUser does for authenticated endpoints
func WithUserContext(req *http.Request, user *models.User) *http.Request {
	claims := &models.TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		Admin:  user.Role == models.RoleAdmin,
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, user)
	ctx = context.WithValue(ctx, auth.ClaimsContextKey, claims)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc func(ctx context.Context, firstName, lastName, email, phone, password string) (*services.AuthResponse, error)
	LoginFunc    func(ctx context.Context, email, password string) (*services.AuthResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, firstName, lastName, email, phone, password string) (*services.AuthResponse, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, firstName, lastName, email, phone, password)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, email, password)
}

// MockPasswordResetService implements PasswordResetServiceInterface for testing
type MockPasswordResetService struct {
	RequestResetFunc    func(ctx context.Context, email string) error
	ValidateFunc        func(ctx context.Context, plainToken string) (*models.User, error)
	ConsumeAndResetFunc func(ctx context.Context, plainToken, newPassword string) error
}

func (m *MockPasswordResetService) RequestReset(ctx context.Context, email string) error {
	if m.RequestResetFunc == nil {
		return nil
	}
	return m.RequestResetFunc(ctx, email)
}

func (m *MockPasswordResetService) Validate(ctx context.Context, plainToken string) (*models.User, error) {
	if m.ValidateFunc == nil {
		return nil, models.ErrInvalidOrExpiredToken
	}
	return m.ValidateFunc(ctx, plainToken)
}

func (m *MockPasswordResetService) ConsumeAndReset(ctx context.Context, plainToken, newPassword string) error {
	if m.ConsumeAndResetFunc == nil {
		return models.ErrInvalidOrExpiredToken
	}
	return m.ConsumeAndResetFunc(ctx, plainToken, newPassword)
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	LoginFunc       func(ctx context.Context, passcode, callerKey string) (string, error)
	ListMembersFunc func(ctx context.Context, limit, offset int) ([]*services.UserResponse, error)
}

func (m *MockAdminService) Login(ctx context.Context, passcode, callerKey string) (string, error) {
	if m.LoginFunc == nil {
		return "", models.ErrInvalidPasscode
	}
	return m.LoginFunc(ctx, passcode, callerKey)
}

func (m *MockAdminService) ListMembers(ctx context.Context, limit, offset int) ([]*services.UserResponse, error) {
	if m.ListMembersFunc == nil {
		return nil, nil
	}
	return m.ListMembersFunc(ctx, limit, offset)
}

// validRegisterRequest returns a request body that passes validation
func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@x.com",
		PhoneNumber: "555-123-4567",
		Password:    "secret6",
	}
}

func testAuthResponse(userID, email string) *services.AuthResponse {
	return &services.AuthResponse{
		Token: "signed.jwt.token",
		User: &services.UserResponse{
			ID:        userID,
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     email,
			Role:      models.RoleUser,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
}
