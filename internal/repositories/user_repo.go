package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mbenavides/billfold/internal/database"
	"github.com/mbenavides/billfold/internal/models"
)

const userColumns = `id, first_name, last_name, email, phone_number, password_hash, role, reset_token_hash, reset_token_expires_at, created_at, updated_at`

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner interface for scanning user rows (single row or result set)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var passwordHash *string

	err := scanner.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PhoneNumber,
		&passwordHash, &user.Role,
		&user.ResetTokenHash, &user.ResetTokenExpiresAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}

	return &user, nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByEmail loads a user including the password hash; callers that do not
// verify a secret should discard the hash rather than serialize it.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, phone))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query := `
		INSERT INTO users (id, first_name, last_name, email, phone_number, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PhoneNumber,
		user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt,
	))
}

// ListMembers returns all non-admin users, hashes excluded.
func (r *UserRepository) ListMembers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, phone_number, NULL::text, role, reset_token_hash, reset_token_expires_at, created_at, updated_at
		FROM users WHERE role <> $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, models.RoleAdmin, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}

	return scanUserRows(rows)
}

// SetResetToken stores the reset digest and expiry on the user record. A new
// request overwrites whatever token was previously outstanding.
func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.Pool.Exec(ctx, query, tokenHash, expiresAt, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetByResetTokenHash finds the user holding an unexpired reset token with
// the given digest. An expired or unknown digest is ErrNotFound either way.
func (r *UserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at > now()
	`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, tokenHash))
}

// ConsumePasswordReset redeems a reset token in one conditional update: the
// new hash is written and both reset fields are cleared only if the digest
// still matches and the expiry is in the future. Zero rows affected means
// the token was invalid, expired, or already consumed by a concurrent
// redeemer; exactly one of two racing calls can win.
func (r *UserRepository) ConsumePasswordReset(ctx context.Context, tokenHash, newPasswordHash string) (*models.User, error) {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = $2
		WHERE reset_token_hash = $3 AND reset_token_expires_at > now()
		RETURNING ` + userColumns

	user, err := scanUserRow(r.db.Pool.QueryRow(ctx, query, newPasswordHash, time.Now(), tokenHash))
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ClearExpiredResetTokens removes lapsed reset state so expired pairs do not
// linger on user records.
func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	query := `
		UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= now()
	`

	result, err := r.db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}

// UpsertAdmin resolves the singleton administrator record, creating it if
// absent. The insert races safely against concurrent callers: the conflict
// target is the partial unique index on role='admin', making it an atomic
// insert-if-absent, and the follow-up select returns whichever row won.
// A collision on the email unique index is NOT absorbed; it surfaces as
// models.ErrConflict so a regular account holding the admin email is
// reported instead of breaking every admin login.
func (r *UserRepository) UpsertAdmin(ctx context.Context, email string) (*models.User, error) {
	now := time.Now()

	insert := `
		INSERT INTO users (id, first_name, last_name, email, phone_number, password_hash, role, created_at, updated_at)
		VALUES ($1, 'Admin', 'User', $2, '', NULL, $3, $4, $4)
		ON CONFLICT (role) WHERE role = 'admin' DO NOTHING
	`

	if _, err := r.db.Pool.Exec(ctx, insert, uuid.New().String(), email, models.RoleAdmin, now); err != nil {
		return nil, database.MapPostgresError(err)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, models.RoleAdmin))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
