package anthropic

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

var _ output.LLMPort = (*Adapter)(nil)

const (
	DefaultBaseURL = "https://api.anthropic.com/v1"
	DefaultModel   = "claude-sonnet-4-20250514"
	DefaultTimeout = 60 * time.Second
)

type Config struct {
	Model   string
	BaseURL string
	Timeout time.Duration
	Logger  output.LoggerPort
}

func DefaultConfig() Config {
	return Config{
		Model:   DefaultModel,
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// Adapter talks to the model through the chat-completions compatible
// endpoint. The API key travels with each request, so clients are cached
// per key.
type Adapter struct {
	cfg Config

	mu      sync.Mutex
	clients map[string]*openai.Client
}

func NewAdapter(cfg Config) *Adapter {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Adapter{cfg: cfg, clients: make(map[string]*openai.Client)}
}

func (a *Adapter) client(apiKey string) *openai.Client {
	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.clients[apiKey]; ok {
		return c
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = a.cfg.BaseURL
	if a.cfg.Logger != nil {
		config.HTTPClient = &http.Client{
			Transport: &loggingTransport{base: http.DefaultTransport, logger: a.cfg.Logger},
		}
	}

	c := openai.NewClientWithConfig(config)
	a.clients[apiKey] = c
	return c
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, entity.NewError(entity.ErrMissingCredential, "", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	resp, err := a.client(req.APIKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.cfg.Model,
		MaxTokens: req.MaxTokens,
		Messages:  convertMessages(req.System, req.Messages),
		Tools:     convertTools(req.Tools),
	})
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return nil, entity.NewError(entity.ErrUpstreamServer, "no choices in response", nil)
	}

	choice := resp.Choices[0]
	return &output.ChatResponse{
		Message:    convertResponseMessage(choice.Message),
		StopReason: stopReason(choice.FinishReason),
	}, nil
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	fields := []any{
		"method", req.Method,
		"url", req.URL.String(),
		"request_bytes", req.ContentLength,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		t.logger.Warn("model request failed", append(fields, "error", err.Error())...)
		return resp, err
	}
	t.logger.Debug("model request", append(fields, "status", resp.StatusCode)...)
	return resp, nil
}

func convertMessages(system string, messages []entity.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, msg := range messages {
		if len(msg.Blocks) == 0 {
			result = append(result, openai.ChatCompletionMessage{
				Role:    string(msg.Role),
				Content: msg.Content,
			})
			continue
		}

		// Tool results become one tool-role message each, in block order.
		if msg.Role == entity.RoleUser && hasToolResults(msg) {
			for _, b := range msg.Blocks {
				switch {
				case b.Type == entity.ContentTypeToolResult && b.ToolResult != nil:
					result = append(result, openai.ChatCompletionMessage{
						Role:       openai.ChatMessageRoleTool,
						Content:    b.ToolResult.Content,
						ToolCallID: b.ToolResult.ToolUseID,
					})
				case b.Type == entity.ContentTypeText && b.Text != "":
					result = append(result, openai.ChatCompletionMessage{
						Role:    openai.ChatMessageRoleUser,
						Content: b.Text,
					})
				}
			}
			continue
		}

		oaiMsg := openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Text(),
		}
		for _, tc := range msg.ToolCalls() {
			args := string(tc.Input)
			if strings.TrimSpace(args) == "" {
				args = "{}"
			}
			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: args,
				},
			})
		}
		result = append(result, oaiMsg)
	}
	return result
}

func hasToolResults(msg entity.Message) bool {
	for _, b := range msg.Blocks {
		if b.Type == entity.ContentTypeToolResult {
			return true
		}
	}
	return false
}

func convertTools(tools []entity.ToolDefinition) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return result
}

func convertResponseMessage(msg openai.ChatCompletionMessage) entity.Message {
	result := entity.Message{Role: entity.RoleAssistant}

	if msg.Content != "" {
		result.Blocks = append(result.Blocks, entity.ContentBlock{
			Type: entity.ContentTypeText,
			Text: msg.Content,
		})
	}

	for _, tc := range msg.ToolCalls {
		args := tc.Function.Arguments
		if strings.TrimSpace(args) == "" {
			args = "{}"
		}
		call := entity.ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: []byte(args),
		}
		result.Blocks = append(result.Blocks, entity.ContentBlock{
			Type:    entity.ContentTypeToolUse,
			ToolUse: &call,
		})
	}

	return result
}

func stopReason(reason openai.FinishReason) entity.StopReason {
	switch reason {
	case openai.FinishReasonToolCalls, openai.FinishReasonFunctionCall:
		return entity.StopReasonToolUse
	case openai.FinishReasonLength:
		return entity.StopReasonMaxTokens
	}
	return entity.StopReasonEndTurn
}
