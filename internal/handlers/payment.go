package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/techfix-ai/techfix-backend/internal/services"
)

// PaymentGateway is the slice of the payment service the handler
// consumes.
type PaymentGateway interface {
	InitializeCheckout(email, tierName string) (*services.Checkout, error)
	VerifyTransaction(reference string) (*services.VerifiedTransaction, error)
}

// TokenMailer delivers a paid session token by email.
type TokenMailer interface {
	SendTokenDelivery(to, token string, expiresAt time.Time)
}

// PaymentHandler drives the hosted-checkout flow
type PaymentHandler struct {
	payments PaymentGateway
	sessions *services.SessionManager
	mailer   TokenMailer
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments PaymentGateway, sessions *services.SessionManager, mailer TokenMailer) *PaymentHandler {
	return &PaymentHandler{payments: payments, sessions: sessions, mailer: mailer}
}

type checkoutRequest struct {
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

// CreateCheckoutSession initializes a hosted checkout for a plan tier.
func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if !validEmail(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid email required"})
	}
	if _, ok := services.LookupPlanTier(req.Plan); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown plan"})
	}

	checkout, err := h.payments.InitializeCheckout(req.Email, req.Plan)
	if err != nil {
		log.Printf("❌ Checkout initialization failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}

	return c.JSON(checkout)
}

type verifyPaymentRequest struct {
	Reference string `json:"reference"`
}

// VerifyPayment confirms a checkout and, on success, mints a fresh
// session (deactivating the buyer's prior ones) and emails the token.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Reference required"})
	}

	tx, err := h.payments.VerifyTransaction(req.Reference)
	if err != nil {
		log.Printf("❌ Payment verification failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify payment"})
	}

	if tx.Status != "success" {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error":  "Payment not completed",
			"status": tx.Status,
		})
	}

	tier, ok := services.LookupPlanTier(tx.Tier)
	if !ok {
		log.Printf("❌ Verified payment %s carries unknown tier %q", tx.Reference, tx.Tier)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	session, err := h.sessions.MintPaidSession(tx.Email, tier.Minutes)
	if err != nil {
		log.Printf("❌ Failed to mint paid session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}

	h.mailer.SendTokenDelivery(tx.Email, session.Token, session.ExpiresAt)

	return c.JSON(fiber.Map{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"email":      session.Email,
		"plan":       tx.Tier,
	})
}
