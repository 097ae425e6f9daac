package entity

import (
	"encoding/json"
	"strings"
)

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type ContentType string

const (
	ContentTypeText       ContentType = "text"
	ContentTypeToolUse    ContentType = "tool_use"
	ContentTypeToolResult ContentType = "tool_result"
)

type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonToolUse   StopReason = "tool_use"
	StopReasonMaxTokens StopReason = "max_tokens"
)

// Message is one entry of the model working buffer. Plain turns carry Content,
// tool exchanges carry Blocks.
type Message struct {
	Role    MessageRole
	Content string
	Blocks  []ContentBlock
}

type ContentBlock struct {
	Type       ContentType
	Text       string
	ToolUse    *ToolCall
	ToolResult *ToolResult
}

type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

func TextMessage(role MessageRole, text string) Message {
	return Message{Role: role, Content: text}
}

// ToolCalls returns the tool_use segments of the message in order.
func (m Message) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, b := range m.Blocks {
		if b.Type == ContentTypeToolUse && b.ToolUse != nil {
			calls = append(calls, *b.ToolUse)
		}
	}
	return calls
}

// Text concatenates the text segments, ignoring tool segments.
func (m Message) Text() string {
	if len(m.Blocks) == 0 {
		return m.Content
	}
	parts := make([]string, 0, len(m.Blocks))
	for _, b := range m.Blocks {
		if b.Type == ContentTypeText && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func ToolResultsMessage(results []ToolResult) Message {
	blocks := make([]ContentBlock, 0, len(results))
	for i := range results {
		r := results[i]
		blocks = append(blocks, ContentBlock{
			Type:       ContentTypeToolResult,
			ToolResult: &r,
		})
	}
	return Message{Role: RoleUser, Blocks: blocks}
}
