package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every environment-driven setting. It is read once at
// process start; nothing re-reads the environment afterwards.
type Config struct {
	Port string

	// Datastore
	SupabaseURL    string
	SupabaseKey    string
	UseMemoryStore bool

	// AI provider
	MistralAPIKey  string
	MistralBaseURL string
	MistralModel   string

	// Email provider
	ResendAPIKey    string
	TechnicianEmail string

	// Payment gateway
	PaystackSecretKey string
	PaystackBaseURL   string

	// Admin / analytics
	AdminAPIKey string

	// Rate limiting
	RateLimitMax      int
	RateLimitWindow   time.Duration
	BlockAfterFailed  int
	BlockDuration     time.Duration

	// CORS
	AllowedOrigins string
}

// Load reads configuration from the environment with sane defaults.
func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mistralBaseURL := os.Getenv("MISTRAL_BASE_URL")
	if mistralBaseURL == "" {
		mistralBaseURL = "https://api.mistral.ai/v1"
	}

	mistralModel := os.Getenv("MISTRAL_MODEL")
	if mistralModel == "" {
		mistralModel = "mistral-small-latest"
	}

	paystackBaseURL := os.Getenv("PAYSTACK_BASE_URL")
	if paystackBaseURL == "" {
		paystackBaseURL = "https://api.paystack.co"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173, http://localhost:3000"
	}

	return Config{
		Port: port,

		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		UseMemoryStore: os.Getenv("USE_MEMORY_STORE") == "true",

		MistralAPIKey:  os.Getenv("MISTRAL_API_KEY"),
		MistralBaseURL: mistralBaseURL,
		MistralModel:   mistralModel,

		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		TechnicianEmail: os.Getenv("TECHNICIAN_EMAIL"),

		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:   paystackBaseURL,

		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),

		RateLimitMax:     envInt("RATE_LIMIT_MAX", 30),
		RateLimitWindow:  time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		BlockAfterFailed: envInt("BLOCK_AFTER_FAILED_ATTEMPTS", 10),
		BlockDuration:    time.Duration(envInt("BLOCK_DURATION_MINUTES", 15)) * time.Minute,

		AllowedOrigins: allowedOrigins,
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
