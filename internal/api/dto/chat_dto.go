package dto

import "github.com/spec-kit/invoice-service/internal/chat"

// ChatRequest carries the new message plus prior [user, assistant] pairs.
type ChatRequest struct {
	Message string      `json:"message"`
	History []chat.Turn `json:"history"`
}

// ChatResponse always carries a reply, even when upstream failed.
type ChatResponse struct {
	Reply string `json:"reply"`
}
