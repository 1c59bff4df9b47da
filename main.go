package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/techfix-ai/techfix-backend/database"
	"github.com/techfix-ai/techfix-backend/internal/config"
	"github.com/techfix-ai/techfix-backend/internal/jobs"
	"github.com/techfix-ai/techfix-backend/internal/models"
	"github.com/techfix-ai/techfix-backend/internal/ratelimit"
	"github.com/techfix-ai/techfix-backend/internal/routes"
	"github.com/techfix-ai/techfix-backend/internal/services"
	"github.com/techfix-ai/techfix-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	cfg := config.Load()

	log.Println("========================================")
	log.Println("BACKEND STARTUP - Environment Check")
	log.Printf("🔍 SUPABASE_URL loaded: %v", cfg.SupabaseURL != "")
	log.Printf("🔍 MISTRAL_API_KEY loaded: %v", cfg.MistralAPIKey != "")
	log.Printf("🔍 RESEND_API_KEY loaded: %v", cfg.ResendAPIKey != "")
	log.Printf("🔍 PAYSTACK_SECRET_KEY loaded: %v", cfg.PaystackSecretKey != "")
	log.Printf("🔍 TECHNICIAN_EMAIL: %s", cfg.TechnicianEmail)
	log.Println("========================================")

	// Initialize storage
	var store storage.Store
	switch {
	case cfg.UseMemoryStore:
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	case cfg.SupabaseURL != "":
		log.Println("📦 Using Supabase REST storage")
		store = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey)
	default:
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		if err := database.DB.AutoMigrate(
			&models.Session{},
			&models.DownloadEvent{},
			&models.Notification{},
		); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}
	storage.SetStore(store)

	// Initialize services
	sessionManager := services.NewSessionManager(store)
	mistralService := services.NewMistralService(cfg.MistralBaseURL, cfg.MistralAPIKey, cfg.MistralModel)
	resendService := services.NewResendService(cfg.ResendAPIKey, cfg.TechnicianEmail, store)
	paystackService := services.NewPaystackService(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	limiter := ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow, cfg.BlockAfterFailed, cfg.BlockDuration)

	// Start scheduled session cleanup
	cleanupJob := jobs.NewCleanupJob(store, time.Hour)
	cleanupJob.Start()

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "TechFix AI Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				log.Printf("❌ Internal error: %v", err)
				return c.Status(code).JSON(fiber.Map{"error": "Internal server error"})
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
		MaxAge:       3600,
	}))

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		Store:    store,
		Sessions: sessionManager,
		AI:       mistralService,
		Mailer:   resendService,
		Payments: paystackService,
		Limiter:  limiter,
		Config:   cfg,
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		cleanupJob.Stop()
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 TechFix AI Backend starting on port %s", cfg.Port)
	log.Println("🔧 Active Services:")
	log.Println("  ✓ Session tokens")
	log.Println("  ✓ AI repair plans")
	log.Println("  ✓ Help-request email")
	log.Println("  ✓ Hosted checkout")
	log.Println("  ✓ Scheduled session cleanup")
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}
