package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenavides/billfold/internal/models"
	"github.com/mbenavides/billfold/internal/services"
)

func TestRegister_Success(t *testing.T) {
	mockService := &MockAuthService{
		RegisterFunc: func(ctx context.Context, firstName, lastName, email, phone, password string) (*services.AuthResponse, error) {
			assert.Equal(t, "ada@x.com", email)
			assert.Equal(t, "Ada", firstName)
			return testAuthResponse("user123", email), nil
		},
	}
	handler := NewAuthHandler(mockService, &MockPasswordResetService{})

	req := NewTestRequest(t, http.MethodPost, "/auth/register", validRegisterRequest())
	w := httptest.NewRecorder()
	handler.Register(w, req)

	var resp services.AuthResponse
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "signed.jwt.token", resp.Token)
	assert.Equal(t, "user123", resp.User.ID)
}

func TestRegister_EmailNormalized(t *testing.T) {
	var gotEmail string
	mockService := &MockAuthService{
		RegisterFunc: func(ctx context.Context, firstName, lastName, email, phone, password string) (*services.AuthResponse, error) {
			gotEmail = email
			return testAuthResponse("user123", email), nil
		},
	}
	handler := NewAuthHandler(mockService, &MockPasswordResetService{})

	body := validRegisterRequest()
	body.Email = "  Ada@X.Com "
	req := NewTestRequest(t, http.MethodPost, "/auth/register", body)
	w := httptest.NewRecorder()
	handler.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ada@x.com", gotEmail)
}

func TestRegister_Duplicate(t *testing.T) {
	mockService := &MockAuthService{
		RegisterFunc: func(ctx context.Context, firstName, lastName, email, phone, password string) (*services.AuthResponse, error) {
			return nil, models.ErrConflict
		},
	}
	handler := NewAuthHandler(mockService, &MockPasswordResetService{})

	req := NewTestRequest(t, http.MethodPost, "/auth/register", validRegisterRequest())
	w := httptest.NewRecorder()
	handler.Register(w, req)

	AssertErrorResponse(t, w, http.StatusConflict, "conflict")
}

func TestRegister_ValidationFailures(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &MockPasswordResetService{})

	tests := []struct {
		name   string
		mutate func(r *RegisterRequest)
	}{
		{"missing email", func(r *RegisterRequest) { r.Email = "" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"missing first name", func(r *RegisterRequest) { r.FirstName = "" }},
		{"short password", func(r *RegisterRequest) { r.Password = "five5" }},
		{"bad phone", func(r *RegisterRequest) { r.PhoneNumber = "call me" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validRegisterRequest()
			tt.mutate(&body)

			req := NewTestRequest(t, http.MethodPost, "/auth/register", body)
			w := httptest.NewRecorder()
			handler.Register(w, req)

			AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
		})
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &MockPasswordResetService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	w := httptest.NewRecorder()
	handler.Register(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestLogin_Success(t *testing.T) {
	mockService := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			assert.Equal(t, "ada@x.com", email)
			assert.Equal(t, "secret6", password)
			return testAuthResponse("user123", email), nil
		},
	}
	handler := NewAuthHandler(mockService, &MockPasswordResetService{})

	req := NewTestRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "ada@x.com", Password: "secret6"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp services.AuthResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "signed.jwt.token", resp.Token)
}

func TestLogin_PaddedEmailAccepted(t *testing.T) {
	var gotEmail string
	mockService := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			gotEmail = email
			return testAuthResponse("user123", email), nil
		},
	}
	handler := NewAuthHandler(mockService, &MockPasswordResetService{})

	req := NewTestRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "  Ada@X.Com ", Password: "secret6"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@x.com", gotEmail)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockService := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return nil, models.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(mockService, &MockPasswordResetService{})

	req := NewTestRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "ada@x.com", Password: "wrong"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestLogin_MissingFields(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &MockPasswordResetService{})

	req := NewTestRequest(t, http.MethodPost, "/auth/login", LoginRequest{Email: "ada@x.com"})
	w := httptest.NewRecorder()
	handler.Login(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestForgotPassword_AlwaysAccepted(t *testing.T) {
	// Known and unknown emails produce the identical response.
	for _, known := range []bool{true, false} {
		mockReset := &MockPasswordResetService{
			RequestResetFunc: func(ctx context.Context, email string) error {
				return nil
			},
		}
		handler := NewAuthHandler(&MockAuthService{}, mockReset)

		req := NewTestRequest(t, http.MethodPost, "/auth/forgot-password", ForgotPasswordRequest{Email: "ada@x.com"})
		w := httptest.NewRecorder()
		handler.ForgotPassword(w, req)

		var resp map[string]string
		AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Contains(t, resp["message"], "If an account exists", "known=%v", known)
	}
}

func TestForgotPassword_PaddedEmailAccepted(t *testing.T) {
	var gotEmail string
	mockReset := &MockPasswordResetService{
		RequestResetFunc: func(ctx context.Context, email string) error {
			gotEmail = email
			return nil
		},
	}
	handler := NewAuthHandler(&MockAuthService{}, mockReset)

	req := NewTestRequest(t, http.MethodPost, "/auth/forgot-password", ForgotPasswordRequest{Email: "  Ada@X.Com "})
	w := httptest.NewRecorder()
	handler.ForgotPassword(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@x.com", gotEmail)
}

func TestForgotPassword_StorageFailure(t *testing.T) {
	mockReset := &MockPasswordResetService{
		RequestResetFunc: func(ctx context.Context, email string) error {
			return models.ErrInternalServer
		},
	}
	handler := NewAuthHandler(&MockAuthService{}, mockReset)

	req := NewTestRequest(t, http.MethodPost, "/auth/forgot-password", ForgotPasswordRequest{Email: "ada@x.com"})
	w := httptest.NewRecorder()
	handler.ForgotPassword(w, req)

	AssertErrorResponse(t, w, http.StatusInternalServerError, "internal_error")
}

func TestValidateResetToken_Valid(t *testing.T) {
	mockReset := &MockPasswordResetService{
		ValidateFunc: func(ctx context.Context, plainToken string) (*models.User, error) {
			assert.Equal(t, "sometoken", plainToken)
			return &models.User{ID: "user123"}, nil
		},
	}
	handler := NewAuthHandler(&MockAuthService{}, mockReset)

	req := NewTestRequest(t, http.MethodPost, "/auth/validate-reset-token", ValidateResetTokenRequest{Token: "sometoken"})
	w := httptest.NewRecorder()
	handler.ValidateResetToken(w, req)

	var resp map[string]bool
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp["valid"])
}

func TestValidateResetToken_Invalid(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &MockPasswordResetService{})

	req := NewTestRequest(t, http.MethodPost, "/auth/validate-reset-token", ValidateResetTokenRequest{Token: "expiredtoken"})
	w := httptest.NewRecorder()
	handler.ValidateResetToken(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestResetPassword_Success(t *testing.T) {
	var gotToken, gotPassword string
	mockReset := &MockPasswordResetService{
		ConsumeAndResetFunc: func(ctx context.Context, plainToken, newPassword string) error {
			gotToken = plainToken
			gotPassword = newPassword
			return nil
		},
	}
	handler := NewAuthHandler(&MockAuthService{}, mockReset)

	req := NewTestRequest(t, http.MethodPut, "/auth/reset-password/sometoken", ResetPasswordRequest{Password: "newpass2"})
	req = WithURLParam(req, "token", "sometoken")
	w := httptest.NewRecorder()
	handler.ResetPassword(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sometoken", gotToken)
	assert.Equal(t, "newpass2", gotPassword)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &MockPasswordResetService{})

	req := NewTestRequest(t, http.MethodPut, "/auth/reset-password/consumedtoken", ResetPasswordRequest{Password: "newpass2"})
	req = WithURLParam(req, "token", "consumedtoken")
	w := httptest.NewRecorder()
	handler.ResetPassword(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestResetPassword_MissingToken(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{}, &MockPasswordResetService{})

	req := NewTestRequest(t, http.MethodPut, "/auth/reset-password/", ResetPasswordRequest{Password: "newpass2"})
	w := httptest.NewRecorder()
	handler.ResetPassword(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestResetPassword_ShortPassword(t *testing.T) {
	called := false
	mockReset := &MockPasswordResetService{
		ConsumeAndResetFunc: func(ctx context.Context, plainToken, newPassword string) error {
			called = true
			return nil
		},
	}
	handler := NewAuthHandler(&MockAuthService{}, mockReset)

	req := NewTestRequest(t, http.MethodPut, "/auth/reset-password/sometoken", ResetPasswordRequest{Password: "short"})
	req = WithURLParam(req, "token", "sometoken")
	w := httptest.NewRecorder()
	handler.ResetPassword(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
	assert.False(t, called)
}
