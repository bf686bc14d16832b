package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mbenavides/billfold/internal/auth"
	"github.com/mbenavides/billfold/internal/handlers"
	"github.com/mbenavides/billfold/internal/middleware"
	"github.com/mbenavides/billfold/internal/repositories"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	userHandler *handlers.UserHandler,
	tokenManager *auth.TokenManager,
	userRepo *repositories.UserRepository,
	rateLimitConfig middleware.RateLimitConfig,
) {
	// Public routes - flood-guarded, no authentication required
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)
		r.Post("/auth/validate-reset-token", authHandler.ValidateResetToken)
		r.Put("/auth/reset-password/{token}", authHandler.ResetPassword)
		r.Post("/admin/login", adminHandler.Login)
	})

	// Routes for any authenticated user
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(tokenManager, userRepo))

		r.Get("/users/me", userHandler.Me)
	})

	// Admin-only routes
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(tokenManager))

		r.Get("/admin/members", adminHandler.ListMembers)
		r.Post("/admin/logout", adminHandler.Logout)
	})
}
