package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"nova/internal/cache"
	"nova/internal/services"
)

// ChatHandler handles the chat and stats endpoints.
type ChatHandler struct {
	assistant *services.AssistantService
	cache     *cache.Cache
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(assistant *services.AssistantService, c *cache.Cache) *ChatHandler {
	return &ChatHandler{assistant: assistant, cache: c}
}

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Message string `json:"message"`
}

// HandleChat processes one chat message.
// POST /api/chat
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	return c.JSON(h.assistant.ProcessMessage(ctx, req.Message))
}

// HandleStats reports journal and cache statistics.
// GET /api/stats
func (h *ChatHandler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"memory": h.assistant.MemoryStats(),
		"cache":  h.cache.Stats(),
	})
}
