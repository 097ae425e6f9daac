package output

import (
	"context"

	"listing-assistant/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	APIKey    string
	System    string
	Messages  []entity.Message
	Tools     []entity.ToolDefinition
	MaxTokens int
}

type ChatResponse struct {
	Message    entity.Message
	StopReason entity.StopReason
}
