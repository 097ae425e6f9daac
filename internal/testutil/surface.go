package testutil

import (
	"context"
	"sync"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

var _ output.ChatSurfacePort = (*FakeSurface)(nil)

type FakeSurface struct {
	mu sync.Mutex

	Messages    []entity.ChatMessage
	System      []string
	ToolStarts  []string
	Approvals   []string
	ApproveWith bool
}

func (s *FakeSurface) ShowMessage(_ context.Context, role entity.MessageRole, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, entity.ChatMessage{Role: role, Content: content})
}

func (s *FakeSurface) ShowSystem(_ context.Context, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.System = append(s.System, content)
}

func (s *FakeSurface) ShowTyping(context.Context, bool) {}

func (s *FakeSurface) ShowToolStart(_ context.Context, toolName, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ToolStarts = append(s.ToolStarts, toolName)
}

func (s *FakeSurface) ShowToolResult(context.Context, string, string, bool) {}

func (s *FakeSurface) Approve(_ context.Context, description string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Approvals = append(s.Approvals, description)
	return s.ApproveWith, nil
}
