package output

import (
	"context"

	"listing-assistant/internal/domain/entity"
)

// ChatSurfacePort renders the conversation and asks the user for consent.
type ChatSurfacePort interface {
	ShowMessage(ctx context.Context, role entity.MessageRole, content string)
	ShowSystem(ctx context.Context, content string)
	ShowTyping(ctx context.Context, on bool)
	ShowToolStart(ctx context.Context, toolName, arguments string)
	ShowToolResult(ctx context.Context, toolName, result string, isError bool)
	Approve(ctx context.Context, description string) (bool, error)
}
