package handlers

import (
	"bytes"
	"encoding/csv"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/techfix-ai/techfix-backend/internal/models"
	"github.com/techfix-ai/techfix-backend/internal/storage"
)

// AnalyticsHandler serves download tracking, the key-gated dashboard
// and session housekeeping
type AnalyticsHandler struct {
	store storage.Store
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(store storage.Store) *AnalyticsHandler {
	return &AnalyticsHandler{store: store}
}

type trackDownloadRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Platform string `json:"platform"`
}

// TrackDownload records a repair-agent download.
func (h *AnalyticsHandler) TrackDownload(c *fiber.Ctx) error {
	var req trackDownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	event := &models.DownloadEvent{
		Token:    req.Token,
		Email:    req.Email,
		Platform: req.Platform,
		ClientIP: c.IP(),
	}
	if err := h.store.CreateDownloadEvent(event); err != nil {
		// Tracking is best-effort; the download must not fail over it.
		log.Printf("⚠️  Failed to record download: %v", err)
	}

	return c.JSON(fiber.Map{"status": "tracked"})
}

// GetAnalytics returns the dashboard summary.
func (h *AnalyticsHandler) GetAnalytics(c *fiber.Ctx) error {
	summary, err := h.store.GetAnalyticsSummary()
	if err != nil {
		log.Printf("❌ Error building analytics summary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(summary)
}

// ExportEmails streams the collected email addresses as CSV.
func (h *AnalyticsHandler) ExportEmails(c *fiber.Ctx) error {
	summary, err := h.store.GetAnalyticsSummary()
	if err != nil {
		log.Printf("❌ Error exporting emails: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"email"})
	for _, email := range summary.CollectedEmails {
		w.Write([]string{email})
	}
	w.Flush()

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="emails.csv"`)
	return c.Send(buf.Bytes())
}

// GetNotifications returns recent notification records.
func (h *AnalyticsHandler) GetNotifications(c *fiber.Ctx) error {
	notifications, err := h.store.GetRecentNotifications(50)
	if err != nil {
		log.Printf("❌ Error fetching notifications: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}

// CleanupSessions deletes expired, inactive sessions on demand.
func (h *AnalyticsHandler) CleanupSessions(c *fiber.Ctx) error {
	deleted, err := h.store.DeleteExpiredSessions()
	if err != nil {
		log.Printf("❌ Error cleaning up sessions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
