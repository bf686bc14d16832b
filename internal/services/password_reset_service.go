package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mbenavides/billfold/internal/models"
	pkgauth "github.com/mbenavides/billfold/pkg/auth"
	pkglogger "github.com/mbenavides/billfold/pkg/logger"
)

// ResetUserRepository is the subset of UserRepository methods the reset flow needs
type ResetUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error)
	ConsumePasswordReset(ctx context.Context, tokenHash, newPasswordHash string) (*models.User, error)
}

// PasswordResetService manages the single-use reset token lifecycle: mint,
// store (digest only), deliver out of band, validate, and consume.
type PasswordResetService struct {
	repo            ResetUserRepository
	mailer          Mailer
	logger          *slog.Logger
	auditLogger     *pkglogger.AuditLogger
	tokenTTL        time.Duration
	deliveryTimeout time.Duration
	frontendBaseURL string
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(
	repo ResetUserRepository,
	mailer Mailer,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	tokenTTL time.Duration,
	deliveryTimeout time.Duration,
	frontendBaseURL string,
) *PasswordResetService {
	return &PasswordResetService{
		repo:            repo,
		mailer:          mailer,
		logger:          logger,
		auditLogger:     auditLogger,
		tokenTTL:        tokenTTL,
		deliveryTimeout: deliveryTimeout,
		frontendBaseURL: frontendBaseURL,
	}
}

// RequestReset mints a reset token for the account behind email. The call
// reports success whether or not the account exists, and only the SHA-256
// digest of the token is ever stored; the plain token goes to the mailer and
// nowhere else. Delivery happens after the digest is durably stored and its
// outcome does not affect the response.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Same outcome as the found case: no enumeration signal.
			s.logger.Info("reset requested for unknown email",
				slog.String("email", pkglogger.SanitizedEmail(email)))
			return nil
		}
		s.logger.Error("failed to look up user for reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	plainToken, tokenHash, err := generateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	expiresAt := time.Now().Add(s.tokenTTL)

	// A new request overwrites any token already outstanding for this user.
	if user.HasPendingReset(time.Now()) {
		s.logger.Info("superseding outstanding reset token", slog.String("user_id", user.ID))
	}
	if err := s.repo.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		s.logger.Error("failed to store reset token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("password_reset_requested", user.ID, "", nil)

	// Store-then-attempt-delivery: the token is durable, so a slow or failed
	// send must neither roll it back nor stall this response.
	go s.deliver(user.Email, plainToken)

	return nil
}

// deliver sends the plain token out of band, bounded by the delivery timeout.
func (s *PasswordResetService) deliver(email, plainToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.deliveryTimeout)
	defer cancel()

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendBaseURL, plainToken)
	htmlBody, textBody := resetEmailBodies(resetURL, s.tokenTTL)

	if err := s.mailer.Send(ctx, email, "Password Reset Request", htmlBody, textBody); err != nil {
		// Token stays valid; the user can retry the request.
		s.logger.Error("failed to deliver reset email",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return
	}

	s.logger.Info("reset email delivered",
		slog.String("email", pkglogger.SanitizedEmail(email)))
}

// Validate checks a plain reset token and returns the holder. A wrong token
// and an expired token are indistinguishable to the caller.
func (s *PasswordResetService) Validate(ctx context.Context, plainToken string) (*models.User, error) {
	if plainToken == "" {
		return nil, models.ErrInvalidOrExpiredToken
	}

	user, err := s.repo.GetByResetTokenHash(ctx, digestToken(plainToken))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// ConsumeAndReset redeems a reset token and installs the new secret. The
// lookup-then-clear sequence is a single conditional update at the storage
// layer, so a token can never be redeemed twice: of two concurrent attempts
// exactly one succeeds and the other sees ErrInvalidOrExpiredToken. If
// persistence fails after hashing, the token remains valid for retry.
func (s *PasswordResetService) ConsumeAndReset(ctx context.Context, plainToken, newPassword string) error {
	if plainToken == "" {
		return models.ErrInvalidOrExpiredToken
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	newHash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	user, err := s.repo.ConsumePasswordReset(ctx, digestToken(plainToken), newHash)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "password_reset_failed",
				FailureReason: "invalid_or_expired_token",
				Success:       false,
			})
			return models.ErrInvalidOrExpiredToken
		}
		s.logger.Error("failed to consume reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogPasswordChange(user.ID, "", true)
	s.logger.Info("password reset completed", slog.String("user_id", user.ID))

	return nil
}

// generateResetToken returns a fresh random token and its storage digest.
// 32 random bytes hex-encoded; the digest is a fast one-way SHA-256 since
// the token is a high-entropy lookup key, not a low-entropy secret needing
// a slow hash.
func generateResetToken() (plainToken, tokenHash string, err error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}

	plainToken = hex.EncodeToString(tokenBytes)
	return plainToken, digestToken(plainToken), nil
}

// digestToken computes the storage digest of a plain reset token
func digestToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
