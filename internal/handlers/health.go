package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/techfix-ai/techfix-backend/internal/storage"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Service string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{Service: service}
}

// Check returns the health status of the service, including whether
// the configured store is reachable.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storageStatus := "not configured"
	if store := storage.GetStore(); store != nil {
		if _, err := store.GetAnalyticsSummary(); err != nil {
			storageStatus = "unavailable"
		} else {
			storageStatus = "ok"
		}
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"service": h.Service,
		"storage": storageStatus,
	})
}
