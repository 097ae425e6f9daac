package input

import (
	"context"

	"listing-assistant/internal/domain/entity"
)

type Status string

const (
	StatusIdle                  Status = "idle"
	StatusAwaitingModelResponse Status = "awaiting_model_response"
	StatusExecutingTools        Status = "executing_tools"
)

type TurnResult struct {
	TurnID     string
	Reply      string
	Iterations int
	Navigated  bool
}

type ConversationController interface {
	SubmitTurn(ctx context.Context, text string, synthesized bool) (*TurnResult, error)
	// OnPageLoad restores the search context of the current page and may
	// run a synthesized turn (resume after navigation or greeting).
	OnPageLoad(ctx context.Context) (*TurnResult, error)
	Clear(ctx context.Context) error
	SetSidebarOpen(ctx context.Context, open bool) error
	SetPendingInput(ctx context.Context, text string) error
	History() []entity.ChatMessage
	Status() Status
}
