package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techfix-ai/techfix-backend/internal/config"
	"github.com/techfix-ai/techfix-backend/internal/handlers"
	"github.com/techfix-ai/techfix-backend/internal/middleware"
	"github.com/techfix-ai/techfix-backend/internal/ratelimit"
	"github.com/techfix-ai/techfix-backend/internal/services"
	"github.com/techfix-ai/techfix-backend/internal/storage"
)

// Deps carries everything the routes need.
type Deps struct {
	Store    storage.Store
	Sessions *services.SessionManager
	AI       *services.MistralService
	Mailer   *services.ResendService
	Payments *services.PaystackService
	Limiter  *ratelimit.Limiter
	Config   config.Config
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	healthHandler := handlers.NewHealthHandler("AI Tech Repairer Backend")
	tokenHandler := handlers.NewTokenHandler(deps.Sessions)
	planHandler := handlers.NewPlanHandler(deps.Sessions, deps.AI, deps.Limiter)
	helpHandler := handlers.NewHelpHandler(deps.Sessions, deps.Mailer, deps.Limiter)
	analyticsHandler := handlers.NewAnalyticsHandler(deps.Store)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments, deps.Sessions, deps.Mailer)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to TechFix AI Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":         "/health",
				"generate_token": "/generate-token",
				"generate_plan":  "/generate-plan",
				"human_help":     "/request-human-help",
				"checkout":       "/create-checkout-session",
			},
		})
	})

	app.Get("/health", healthHandler.Check)

	// Public endpoints, rate limited per client IP
	limited := app.Group("", middleware.RateLimit(deps.Limiter))
	limited.Post("/generate-token", tokenHandler.GenerateToken)
	limited.Post("/generate-plan", planHandler.GeneratePlan)
	limited.Post("/request-human-help", helpHandler.RequestHumanHelp)
	limited.Post("/track-download", analyticsHandler.TrackDownload)
	limited.Post("/create-checkout-session", paymentHandler.CreateCheckoutSession)
	limited.Post("/verify-payment", paymentHandler.VerifyPayment)

	// Key-gated operator endpoints
	admin := app.Group("", middleware.RequireAdminKey(deps.Config.AdminAPIKey))
	admin.Get("/analytics", analyticsHandler.GetAnalytics)
	admin.Get("/analytics/export", analyticsHandler.ExportEmails)
	admin.Get("/notifications", analyticsHandler.GetNotifications)
	admin.Post("/cleanup-sessions", analyticsHandler.CleanupSessions)
}
