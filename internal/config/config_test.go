package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-development-secret")
	t.Setenv("ADMIN_PASSCODE", "test-admin-passcode")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.UserTokenExpiry)
	assert.Equal(t, 1*time.Hour, cfg.Auth.AdminTokenExpiry)
	assert.Equal(t, 15*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 3, cfg.RateLimit.AdminMaxAttempts)
	assert.Equal(t, "billfold-api", cfg.Auth.TokenIssuer)
	assert.Equal(t, 100, cfg.Auth.TimingDelayBaseMs)
	assert.Equal(t, 50, cfg.Auth.TimingDelayRandomMs)
	assert.False(t, cfg.Auth.TimingDelayOnSuccess)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_PASSCODE", "test-admin-passcode")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingAdminPasscode(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-development-secret")
	t.Setenv("ADMIN_PASSCODE", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_WeakJWTSecretRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AdminTokenExpiryCapped(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_TOKEN_EXPIRY", "24h")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_TOKEN_EXPIRY")
}

func TestLoad_AdminTokenExpiryWithinCap(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_TOKEN_EXPIRY", "8h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, cfg.Auth.AdminTokenExpiry)
}

func TestLoad_ProductionRequiresStrongerSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "only-twenty-chars-xx")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "pw", Name: "billfold", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=billfold sslmode=disable",
		cfg.DSN())
}
