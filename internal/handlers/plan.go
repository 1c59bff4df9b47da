package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/techfix-ai/techfix-backend/internal/plan"
	"github.com/techfix-ai/techfix-backend/internal/ratelimit"
	"github.com/techfix-ai/techfix-backend/internal/services"
)

// AIGateway is the slice of the AI service the plan handler consumes.
type AIGateway interface {
	Complete(ctx context.Context, prompt string) (any, error)
}

// PlanHandler generates and persists repair plans
type PlanHandler struct {
	sessions *services.SessionManager
	ai       AIGateway
	limiter  *ratelimit.Limiter
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(sessions *services.SessionManager, ai AIGateway, limiter *ratelimit.Limiter) *PlanHandler {
	return &PlanHandler{sessions: sessions, ai: ai, limiter: limiter}
}

type generatePlanRequest struct {
	Token      string         `json:"token"`
	Issue      string         `json:"issue"`
	SystemInfo map[string]any `json:"system_info"`
}

// GeneratePlan asks the AI gateway for a repair plan, sanitizes
// whatever comes back, persists it on the session and returns it. An
// upstream AI failure still yields a valid (degraded) plan body, with
// a 500 status.
func (h *PlanHandler) GeneratePlan(c *fiber.Ctx) error {
	var req generatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Token == "" || req.Issue == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Token and issue required"})
	}

	session := h.sessions.ValidateToken(req.Token)
	if session == nil {
		h.limiter.RecordFailure(c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or inactive session"})
	}
	h.limiter.Reset(c.IP())

	prompt := services.BuildRepairPrompt(req.Issue, req.SystemInfo)
	raw, err := h.ai.Complete(c.UserContext(), prompt)
	if err != nil {
		log.Printf("❌ AI gateway failure: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(plan.ErrorPlan(req.Issue, err.Error()))
	}

	sanitized := plan.Sanitize(raw, req.Issue)
	if err := h.sessions.AttachPlan(req.Token, sanitized); err != nil {
		log.Printf("⚠️  Failed to persist plan for token %s: %v", req.Token, err)
	}

	return c.JSON(sanitized)
}
