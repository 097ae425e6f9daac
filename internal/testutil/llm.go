package testutil

import (
	"context"
	"fmt"
	"sync"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

var _ output.LLMPort = (*FakeLLM)(nil)

// FakeLLM replays scripted responses in order and records every request.
type FakeLLM struct {
	mu        sync.Mutex
	responses []scripted
	Requests  []output.ChatRequest
}

type scripted struct {
	resp *output.ChatResponse
	err  error
}

func (f *FakeLLM) Reply(resp *output.ChatResponse) *FakeLLM {
	f.responses = append(f.responses, scripted{resp: resp})
	return f
}

func (f *FakeLLM) Fail(err error) *FakeLLM {
	f.responses = append(f.responses, scripted{err: err})
	return f
}

func (f *FakeLLM) Chat(_ context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req.Messages = append([]entity.Message(nil), req.Messages...)
	f.Requests = append(f.Requests, req)

	if len(f.responses) == 0 {
		return nil, fmt.Errorf("no scripted response for call %d", len(f.Requests))
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.resp, next.err
}

func (f *FakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// TextResponse is a terminal model response.
func TextResponse(text string) *output.ChatResponse {
	return &output.ChatResponse{
		Message: entity.Message{
			Role:   entity.RoleAssistant,
			Blocks: []entity.ContentBlock{{Type: entity.ContentTypeText, Text: text}},
		},
		StopReason: entity.StopReasonEndTurn,
	}
}

// ToolResponse requests one or more tool calls.
func ToolResponse(calls ...entity.ToolCall) *output.ChatResponse {
	blocks := make([]entity.ContentBlock, 0, len(calls))
	for i := range calls {
		c := calls[i]
		blocks = append(blocks, entity.ContentBlock{Type: entity.ContentTypeToolUse, ToolUse: &c})
	}
	return &output.ChatResponse{
		Message:    entity.Message{Role: entity.RoleAssistant, Blocks: blocks},
		StopReason: entity.StopReasonToolUse,
	}
}

func Call(id string, name entity.ToolName, input string) entity.ToolCall {
	return entity.ToolCall{ID: id, Name: name.String(), Input: []byte(input)}
}
