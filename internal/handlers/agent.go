package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"nova/internal/services"
)

// AgentHandler exposes the proactive agent over HTTP.
type AgentHandler struct {
	agent *services.AgentService
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(agent *services.AgentService) *AgentHandler {
	return &AgentHandler{agent: agent}
}

// HandleStatus reports the agent's state and pending actions.
// GET /api/agent/status
func (h *AgentHandler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.agent.Status())
}

// HandleInsights returns the most recent insights.
// GET /api/agent/insights
func (h *AgentHandler) HandleInsights(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"insights": h.agent.RecentInsights(10),
	})
}

// HandleDailyPlan builds a plan for the rest of the day.
// GET /api/agent/daily-plan
func (h *AgentHandler) HandleDailyPlan(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	return c.JSON(h.agent.GenerateDailyPlan(ctx))
}

// HandleDailyBriefing assembles the daily briefing on demand.
// GET /api/agent/daily-briefing
func (h *AgentHandler) HandleDailyBriefing(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	return c.JSON(h.agent.GenerateDailyBriefing(ctx))
}

// actionRequest is the POST /api/agent/action body.
type actionRequest struct {
	ActionID string `json:"action_id"`
}

// HandleAction executes a pending action by ID.
// POST /api/agent/action
func (h *AgentHandler) HandleAction(c *fiber.Ctx) error {
	var req actionRequest
	if err := c.BodyParser(&req); err != nil || req.ActionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "action_id is required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	result, err := h.agent.ExecuteAction(ctx, req.ActionID)
	if err != nil {
		log.Printf("⚠️  [AGENT-API] Failed to execute action %s: %v", req.ActionID, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "executed",
		"result": result,
	})
}
