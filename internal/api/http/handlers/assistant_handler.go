package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-agent-bridge/internal/api/dto"
	"github.com/spec-kit/itsm-agent-bridge/internal/service"
	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

// AssistantHandler exposes the conversational runtime endpoint.
type AssistantHandler struct {
	assistant *service.AssistantService
}

// NewAssistantHandler constructs handler.
func NewAssistantHandler(assistant *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Invoke POST /invocations.
func (h *AssistantHandler) Invoke(c *fiber.Ctx) error {
	var req dto.InvokeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidFormat("invalid payload", nil)
	}
	if req.Text() == "" {
		return apperrors.NewMissingField("prompt")
	}

	reply := h.assistant.HandleMessage(c.UserContext(), req.SessionID, req.Text())
	return c.Status(reply.StatusCode).JSON(reply)
}
