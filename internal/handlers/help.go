package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techfix-ai/techfix-backend/internal/ratelimit"
	"github.com/techfix-ai/techfix-backend/internal/services"
)

// HelpMailer is the slice of the email service the help handler
// consumes.
type HelpMailer interface {
	SendHelpRequest(token, userEmail, issue, rdpCode string)
}

// HelpHandler forwards remote-help requests to the technician
type HelpHandler struct {
	sessions *services.SessionManager
	mailer   HelpMailer
	limiter  *ratelimit.Limiter
}

// NewHelpHandler creates a new help handler
func NewHelpHandler(sessions *services.SessionManager, mailer HelpMailer, limiter *ratelimit.Limiter) *HelpHandler {
	return &HelpHandler{sessions: sessions, mailer: mailer, limiter: limiter}
}

type helpRequest struct {
	Token   string `json:"token"`
	Email   string `json:"email"`
	Issue   string `json:"issue"`
	RDPCode string `json:"rdp_code"`
}

// RequestHumanHelp emails the technician. The mail goes out on a
// background goroutine; the response never waits for delivery.
func (h *HelpHandler) RequestHumanHelp(c *fiber.Ctx) error {
	var req helpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session := h.sessions.ValidateToken(req.Token)
	if session == nil {
		h.limiter.RecordFailure(c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid session"})
	}
	h.limiter.Reset(c.IP())

	h.mailer.SendHelpRequest(req.Token, req.Email, req.Issue, req.RDPCode)

	return c.JSON(fiber.Map{"status": "sent"})
}
