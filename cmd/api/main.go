package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbenavides/billfold/internal/auth"
	"github.com/mbenavides/billfold/internal/background"
	"github.com/mbenavides/billfold/internal/config"
	"github.com/mbenavides/billfold/internal/database"
	"github.com/mbenavides/billfold/internal/handlers"
	middlewareCustom "github.com/mbenavides/billfold/internal/middleware"
	"github.com/mbenavides/billfold/internal/repositories"
	"github.com/mbenavides/billfold/internal/routes"
	"github.com/mbenavides/billfold/internal/services"
	pkghttp "github.com/mbenavides/billfold/pkg/http"
	pkglogger "github.com/mbenavides/billfold/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)

	// Token manager
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenIssuer,
		cfg.Auth.TokenAudience,
		cfg.Auth.UserTokenExpiry,
		cfg.Auth.AdminTokenExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Admin passcode lockout tracking
	adminLimiter := services.NewRateLimitService(services.RateLimitConfig{
		Window:      cfg.RateLimit.Window,
		MaxAttempts: cfg.RateLimit.AdminMaxAttempts,
	}, logger)

	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:    cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs:  cfg.Auth.TimingDelayRandomMs,
		DelayOnSuccess: cfg.Auth.TimingDelayOnSuccess,
	})

	// AWS SES reset email delivery
	mailer, err := services.NewAWSSESMailer(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Error("failed to initialize mailer", slog.Any("error", err))
		os.Exit(1)
	}

	// Services
	authService := services.NewAuthService(userRepo, tokenManager, timingDelay, logger, auditLogger)
	resetService := services.NewPasswordResetService(
		userRepo,
		mailer,
		logger,
		auditLogger,
		cfg.Auth.ResetTokenTTL,
		cfg.Email.DeliveryTimeout,
		cfg.Email.FrontendBaseURL,
	)
	adminService := services.NewAdminService(
		userRepo,
		tokenManager,
		adminLimiter,
		logger,
		auditLogger,
		cfg.Auth.AdminPasscode,
		cfg.Auth.AdminEmail,
	)

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	cookieConfig := auth.CookieConfig{
		Domain:   cfg.Server.CookieDomain,
		Secure:   cfg.Server.CookieSecure,
		SameSite: cfg.Server.CookieSameSite,
	}

	authHandler := handlers.NewAuthHandler(authService, resetService)
	adminHandler := handlers.NewAdminHandler(adminService, ipConfig, cookieConfig, cfg.Auth.AdminTokenExpiry)
	userHandler := handlers.NewUserHandler()

	// Background sweep of expired reset tokens and stale attempt windows
	cleanupManager := background.NewCleanupManager(userRepo, adminLimiter, logger, cfg.Auth.CleanupInterval)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(
		router,
		authHandler,
		adminHandler,
		userHandler,
		tokenManager,
		userRepo,
		middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.RateLimit.RequestsPerMinute},
	)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
