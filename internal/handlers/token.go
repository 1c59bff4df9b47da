package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/techfix-ai/techfix-backend/internal/services"
)

// TokenHandler issues new service tokens
type TokenHandler struct {
	sessions *services.SessionManager
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(sessions *services.SessionManager) *TokenHandler {
	return &TokenHandler{sessions: sessions}
}

type generateTokenRequest struct {
	Email   string `json:"email"`
	Issue   string `json:"issue"`
	Minutes int    `json:"minutes"`
	Plan    string `json:"plan"`
}

// GenerateToken mints a session and returns the token to the frontend.
// No email is sent here; the token is shown on screen only.
func (h *TokenHandler) GenerateToken(c *fiber.Ctx) error {
	var req generateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if !validEmail(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid email required"})
	}

	issue := req.Issue
	if issue == "" {
		issue = "Unknown issue"
	}

	minutes := req.Minutes
	if req.Plan != "" {
		tier, ok := services.LookupPlanTier(req.Plan)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown plan"})
		}
		minutes = tier.Minutes
	}
	if minutes <= 0 {
		minutes = services.DefaultSessionMinutes
	}

	session, err := h.sessions.CreateSession(req.Email, issue, minutes)
	if err != nil {
		log.Printf("❌ Error in generate-token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":      session.Token,
		"expires_in": minutes,
		"expires_at": session.ExpiresAt,
		"email":      session.Email,
	})
}

func validEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}
