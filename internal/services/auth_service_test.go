package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenavides/billfold/internal/auth"
	"github.com/mbenavides/billfold/internal/models"
	pkgauth "github.com/mbenavides/billfold/pkg/auth"
	pkglogger "github.com/mbenavides/billfold/pkg/logger"
)

func newTestAuthService(repo *MockUserRepository) *AuthService {
	logger := slog.Default()
	tm := auth.NewTokenManager("test-secret-key-that-is-long-enough", "billfold-api", "billfold-client", 30*24*time.Hour, time.Hour)
	timing := auth.NewTimingDelay(auth.TimingConfig{})
	return NewAuthService(repo, tm, timing, logger, pkglogger.NewAuditLogger(logger))
}

func TestAuthService_Register_Success(t *testing.T) {
	mockRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user123"
			user.CreatedAt = time.Now()
			user.UpdatedAt = user.CreatedAt
			return user, nil
		},
	}

	svc := newTestAuthService(mockRepo)

	resp, err := svc.Register(context.Background(), "Ada", "Lovelace", "Ada@X.com", "+12025550101", "secret1")
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "user123", resp.User.ID)
	assert.Equal(t, "ada@x.com", resp.User.Email, "email should be normalized")
	assert.Equal(t, models.RoleUser, resp.User.Role)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return NewTestUser("existing", email), nil
		},
	}

	svc := newTestAuthService(mockRepo)

	resp, err := svc.Register(context.Background(), "Ada", "Lovelace", "ada@x.com", "+12025550101", "secret1")
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Nil(t, resp)
}

func TestAuthService_Register_DuplicatePhone(t *testing.T) {
	mockRepo := &MockUserRepository{
		GetByPhoneFunc: func(ctx context.Context, phone string) (*models.User, error) {
			return NewTestUser("existing", "other@x.com"), nil
		},
	}

	svc := newTestAuthService(mockRepo)

	resp, err := svc.Register(context.Background(), "Ada", "Lovelace", "ada@x.com", "+12025550101", "secret1")
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Nil(t, resp)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})

	resp, err := svc.Register(context.Background(), "Ada", "Lovelace", "ada@x.com", "+12025550101", "short")
	assert.Error(t, err)
	assert.Nil(t, resp)

	var pve *pkgauth.PasswordValidationError
	assert.ErrorAs(t, err, &pve)
}

func TestAuthService_Register_StoreConflictWinsRace(t *testing.T) {
	// Pre-checks pass, but the insert hits the unique constraint.
	mockRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}

	svc := newTestAuthService(mockRepo)

	_, err := svc.Register(context.Background(), "Ada", "Lovelace", "ada@x.com", "+12025550101", "secret1")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAuthService_Login_Success(t *testing.T) {
	hash, err := pkgauth.HashPassword("secret1")
	require.NoError(t, err)

	user := NewTestUser("user123", "ada@x.com")
	user.PasswordHash = hash

	mockRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == "ada@x.com" {
				return user, nil
			}
			return nil, models.ErrNotFound
		},
	}

	svc := newTestAuthService(mockRepo)

	resp, err := svc.Login(context.Background(), "Ada@X.com ", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "user123", resp.User.ID)
}

func TestAuthService_Login_IdenticalErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	hash, err := pkgauth.HashPassword("secret1")
	require.NoError(t, err)

	user := NewTestUser("user123", "ada@x.com")
	user.PasswordHash = hash

	mockRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == "ada@x.com" {
				return user, nil
			}
			return nil, models.ErrNotFound
		},
	}

	svc := newTestAuthService(mockRepo)

	_, errUnknown := svc.Login(context.Background(), "nobody@x.com", "secret1")
	_, errWrongPw := svc.Login(context.Background(), "ada@x.com", "wrongpass")

	assert.ErrorIs(t, errUnknown, models.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, models.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPw)
}

func TestAuthService_Login_TokenResolvesToSameIdentity(t *testing.T) {
	hash, err := pkgauth.HashPassword("secret1")
	require.NoError(t, err)

	user := NewTestUser("user123", "ada@x.com")
	user.PasswordHash = hash

	mockRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	tm := auth.NewTokenManager("test-secret-key-that-is-long-enough", "billfold-api", "billfold-client", 30*24*time.Hour, time.Hour)
	logger := slog.Default()
	svc := NewAuthService(mockRepo, tm, auth.NewTimingDelay(auth.TimingConfig{}), logger, pkglogger.NewAuditLogger(logger))

	resp, err := svc.Login(context.Background(), "ada@x.com", "secret1")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user123", claims.UserID)
	assert.False(t, claims.IsAdmin())
}

func TestAuthService_Login_EmptyInputs(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{})

	_, err := svc.Login(context.Background(), "", "secret1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "ada@x.com", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
