package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const maxAdminTokenExpiry = 8 * time.Hour

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite string
}

type AuthConfig struct {
	JWTSecret            string
	TokenIssuer          string
	TokenAudience        string
	UserTokenExpiry      time.Duration
	AdminTokenExpiry     time.Duration
	AdminPasscode        string
	AdminEmail           string
	ResetTokenTTL        time.Duration
	CleanupInterval      time.Duration
	TimingDelayBaseMs    int
	TimingDelayRandomMs  int
	TimingDelayOnSuccess bool
}

type RateLimitConfig struct {
	Window            time.Duration
	AdminMaxAttempts  int
	RequestsPerMinute int
}

type EmailConfig struct {
	AWSRegion       string
	FromAddress     string
	FrontendBaseURL string
	DeliveryTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	adminPasscode := getEnv("ADMIN_PASSCODE", "")
	if adminPasscode == "" {
		return nil, fmt.Errorf("ADMIN_PASSCODE is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "billfold"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseCommaList(getEnv("ALLOWED_ORIGINS", "")),
			TrustedProxies: parseCommaList(getEnv("TRUSTED_PROXIES", "")),
			CookieDomain:   getEnv("COOKIE_DOMAIN", ""),
			CookieSecure:   getEnvAsBool("COOKIE_SECURE", env == "production"),
			CookieSameSite: getEnv("COOKIE_SAMESITE", "strict"),
		},
		Auth: AuthConfig{
			JWTSecret:            jwtSecret,
			TokenIssuer:          getEnv("TOKEN_ISSUER", "billfold-api"),
			TokenAudience:        getEnv("TOKEN_AUDIENCE", "billfold-client"),
			UserTokenExpiry:      getEnvAsDuration("USER_TOKEN_EXPIRY", 30*24*time.Hour),
			AdminTokenExpiry:     getEnvAsDuration("ADMIN_TOKEN_EXPIRY", 1*time.Hour),
			AdminPasscode:        adminPasscode,
			AdminEmail:           getEnv("ADMIN_EMAIL", "admin@billfold.app"),
			ResetTokenTTL:        getEnvAsDuration("RESET_TOKEN_TTL", 15*time.Minute),
			CleanupInterval:      getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
			TimingDelayBaseMs:    getEnvAsInt("TIMING_DELAY_BASE_MS", 100),
			TimingDelayRandomMs:  getEnvAsInt("TIMING_DELAY_RANDOM_MS", 50),
			TimingDelayOnSuccess: getEnvAsBool("TIMING_DELAY_ON_SUCCESS", false),
		},
		RateLimit: RateLimitConfig{
			Window:            getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			AdminMaxAttempts:  getEnvAsInt("ADMIN_LOGIN_MAX_ATTEMPTS", 3),
			RequestsPerMinute: getEnvAsInt("AUTH_REQUESTS_PER_MINUTE", 5),
		},
		Email: EmailConfig{
			AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
			FromAddress:     getEnv("EMAIL_FROM", "no-reply@billfold.app"),
			FrontendBaseURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
			DeliveryTimeout: getEnvAsDuration("EMAIL_DELIVERY_TIMEOUT", 5*time.Second),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	// Admin sessions are capped at a short privileged window
	if cfg.Auth.AdminTokenExpiry > maxAdminTokenExpiry {
		return nil, fmt.Errorf("ADMIN_TOKEN_EXPIRY must not exceed %s", maxAdminTokenExpiry)
	}
	if cfg.Auth.AdminTokenExpiry <= 0 {
		return nil, fmt.Errorf("ADMIN_TOKEN_EXPIRY must be positive")
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16 // Development minimum
	if env == "production" {
		minLength = 32 // Production requires a 256-bit secret
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseCommaList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
