package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/invoice-service/internal/api/dto"
	"github.com/spec-kit/invoice-service/internal/chat"
	apperrors "github.com/spec-kit/invoice-service/pkg/util/errorutil"
)

// ChatHandler relays assistant conversations.
type ChatHandler struct {
	relay *chat.Relay
}

// NewChatHandler constructs handler.
func NewChatHandler(relay *chat.Relay) *ChatHandler {
	return &ChatHandler{relay: relay}
}

// Reply POST /chat. Upstream failures still answer 200 with the fallback text.
func (h *ChatHandler) Reply(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.NewValidationError("message required", nil)
	}
	reply := h.relay.Reply(c.UserContext(), req.Message, req.History)
	return c.JSON(dto.ChatResponse{Reply: reply})
}
