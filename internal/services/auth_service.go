package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mbenavides/billfold/internal/auth"
	"github.com/mbenavides/billfold/internal/models"
	pkgauth "github.com/mbenavides/billfold/pkg/auth"
	pkglogger "github.com/mbenavides/billfold/pkg/logger"
)

// UserRepository defines the credential store operations the auth flows need
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// AuthService handles registration and login business logic
type AuthService struct {
	repo        UserRepository
	tm          *auth.TokenManager
	timingDelay *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, tm *auth.TokenManager, timingDelay *auth.TimingDelay, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		timingDelay: timingDelay,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// UserResponse is the public profile shape returned to callers. The password
// hash and reset state never appear here.
type UserResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
}

// AuthResponse represents the response from auth operations
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// Register creates a new user account and issues a token scoped to it.
// Duplicate email or phone number is ErrConflict.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, phone, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	phone = strings.TrimSpace(phone)

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		s.logger.Info("registration failed: email already registered")
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.repo.GetByPhone(ctx, phone); err == nil {
		s.logger.Info("registration failed: phone already registered")
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check phone uniqueness", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
	}

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		// The unique constraints are the authority; the pre-checks only
		// improve error latency under the common case.
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.IssueUserToken(createdUser.ID)
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("user_id", createdUser.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", createdUser.ID))
	s.auditLogger.LogAccountAction("user_registered", createdUser.ID, "", nil)

	return &AuthResponse{
		Token: token,
		User:  UserToResponse(createdUser),
	}, nil
}

// Login authenticates a user by email and password. An unknown email and a
// wrong password produce the same error after a comparable delay.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				FailureReason: "invalid_credentials",
				Success:       false,
			})
			s.timingDelay.Wait(false)
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			FailureReason: "invalid_credentials",
			Success:       false,
		})
		s.timingDelay.Wait(false)
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.tm.IssueUserToken(user.ID)
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		Success:   true,
	})
	s.timingDelay.Wait(true)

	return &AuthResponse{
		Token: token,
		User:  UserToResponse(user),
	}, nil
}

// UserToResponse converts a user model to its public profile
func UserToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}
