package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mbenavides/billfold/internal/auth"
	"github.com/mbenavides/billfold/internal/models"
	pkglogger "github.com/mbenavides/billfold/pkg/logger"
)

// AdminUserRepository is the subset of UserRepository methods AdminService needs
type AdminUserRepository interface {
	UpsertAdmin(ctx context.Context, email string) (*models.User, error)
	ListMembers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// AdminService handles passcode-gated administrator sessions
type AdminService struct {
	repo        AdminUserRepository
	tm          *auth.TokenManager
	limiter     *RateLimitService
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	passcode    string
	adminEmail  string
}

// NewAdminService creates a new AdminService
func NewAdminService(
	repo AdminUserRepository,
	tm *auth.TokenManager,
	limiter *RateLimitService,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	passcode string,
	adminEmail string,
) *AdminService {
	return &AdminService{
		repo:        repo,
		tm:          tm,
		limiter:     limiter,
		logger:      logger,
		auditLogger: auditLogger,
		passcode:    passcode,
		adminEmail:  adminEmail,
	}
}

// Login exchanges the shared admin passcode for a short-lived admin token.
// The limiter is checked before the passcode so a locked-out caller gets
// ErrTooManyAttempts regardless of passcode correctness; only failed
// attempts count toward the limit.
func (s *AdminService) Login(ctx context.Context, passcode, callerKey string) (string, error) {
	if !s.limiter.Allow(callerKey) {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "admin_login_failed",
			IPAddress:     callerKey,
			FailureReason: "rate_limited",
			Success:       false,
		})
		return "", models.ErrTooManyAttempts
	}

	if !auth.ComparePasscode(passcode, s.passcode) {
		s.limiter.RecordFailure(callerKey)
		s.logger.Info("admin login failed: invalid passcode")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "admin_login_failed",
			IPAddress:     callerKey,
			FailureReason: "invalid_passcode",
			Success:       false,
		})
		return "", models.ErrInvalidPasscode
	}

	admin, err := s.repo.UpsertAdmin(ctx, s.adminEmail)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Error("admin email is held by a regular account",
				slog.String("admin_email", s.adminEmail), slog.Any("error", err))
		} else {
			s.logger.Error("failed to resolve admin record", slog.Any("error", err))
		}
		return "", models.ErrInternalServer
	}

	token, err := s.tm.IssueAdminToken(admin.ID)
	if err != nil {
		s.logger.Error("failed to issue admin token", slog.String("user_id", admin.ID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("admin logged in", slog.String("user_id", admin.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "admin_login_success",
		UserID:    admin.ID,
		IPAddress: callerKey,
		Success:   true,
	})

	return token, nil
}

// ListMembers returns the public profiles of all non-admin users
func (s *AdminService) ListMembers(ctx context.Context, limit, offset int) ([]*UserResponse, error) {
	members, err := s.repo.ListMembers(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list members", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]*UserResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, UserToResponse(m))
	}
	return responses, nil
}
