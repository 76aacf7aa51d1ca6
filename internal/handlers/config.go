package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"nova/internal/services"
)

// ConfigHandler manages runtime configuration of the external services.
type ConfigHandler struct {
	api *services.APIService
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(api *services.APIService) *ConfigHandler {
	return &ConfigHandler{api: api}
}

// apiKeyRequest is the POST /api/config/api-key body.
type apiKeyRequest struct {
	Service string `json:"service"`
	APIKey  string `json:"api_key"`
}

// HandleSetAPIKey updates a lookup service credential and re-probes it.
// POST /api/config/api-key
func (h *ConfigHandler) HandleSetAPIKey(c *fiber.Ctx) error {
	var req apiKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Service == "" || req.APIKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "service and api_key are required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	if err := h.api.SetAPIKey(ctx, req.Service, req.APIKey); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Printf("🔑 [CONFIG-API] API key updated for service: %s", req.Service)
	return c.JSON(fiber.Map{
		"status":     "updated",
		"service":    req.Service,
		"api_status": h.api.Status(),
	})
}

// HandleExternalStatus reports connectivity of the lookup services.
// GET /api/external/status
func (h *ConfigHandler) HandleExternalStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"services": h.api.Status(),
	})
}
