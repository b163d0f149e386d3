// Package chat relays a conversation to an OpenAI-compatible chat-completion
// endpoint. Every failure collapses into a fixed fallback reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/invoice-service/internal/config"
)

// FallbackReply is returned whenever the upstream call cannot produce an answer.
const FallbackReply = "Sorry, there was an error contacting the AI service."

// Turn is one prior exchange: what the user said and what the assistant answered.
type Turn [2]string

// Message is a single chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Relay performs one upstream call per request, with no retries.
type Relay struct {
	cfg    config.ChatConfig
	logger *zap.Logger
}

// NewRelay builds a relay.
func NewRelay(cfg config.ChatConfig, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{cfg: cfg, logger: logger}
}

// BuildMessages prepends the system prompt and flattens history into
// alternating user/assistant messages, ending with the new user message.
func BuildMessages(systemPrompt string, history []Turn, message string) []Message {
	msgs := make([]Message, 0, 2+2*len(history))
	msgs = append(msgs, Message{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		msgs = append(msgs,
			Message{Role: "user", Content: turn[0]},
			Message{Role: "assistant", Content: turn[1]},
		)
	}
	return append(msgs, Message{Role: "user", Content: message})
}

// Reply returns the assistant answer, or FallbackReply on any failure.
func (r *Relay) Reply(ctx context.Context, message string, history []Turn) string {
	reply, err := r.Complete(ctx, message, history)
	if err != nil {
		r.logger.Warn("chat completion failed", zap.Error(err))
		return FallbackReply
	}
	return reply
}

// Complete calls the upstream endpoint once and returns the trimmed first choice.
func (r *Relay) Complete(ctx context.Context, message string, history []Turn) (string, error) {
	if strings.TrimSpace(r.cfg.APIKey) == "" {
		return "", errors.New("chat api key not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	agent := fiber.Post(strings.TrimRight(r.cfg.BaseURL, "/") + "/chat/completions")
	agent.Set(fiber.HeaderAuthorization, "Bearer "+r.cfg.APIKey)
	agent.JSON(completionRequest{
		Model:       r.cfg.Model,
		Messages:    BuildMessages(r.cfg.SystemPrompt, history, message),
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
	})
	agent.Timeout(r.cfg.Timeout())
	if err := agent.Parse(); err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}

	var resp completionResponse
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return "", fmt.Errorf("chat request: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return "", fmt.Errorf("chat upstream status %d", code)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat upstream returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
