package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"listing-assistant/internal/application/port/input"
	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/usecase/session"
)

var (
	_ input.ConversationController = (*Controller)(nil)
	_ output.NavigationGuard       = (*Controller)(nil)
	_ output.FilterStatePort       = (*Controller)(nil)
)

const (
	DefaultMaxToolIterations = 10
	DefaultMaxTokens         = 1024
	maxResultLen             = 20000
)

type SessionStore interface {
	LoadConversation(ctx context.Context, contextKey string) (*entity.ConversationState, bool, error)
	SaveConversation(ctx context.Context, contextKey string, state entity.ConversationState) error
	RemoveConversation(ctx context.Context, contextKey string) error
	SetPendingNavigation(ctx context.Context, contextKey, message string) error
	ConsumePendingNavigation(ctx context.Context, contextKey string) (*entity.PendingNavigation, bool, error)
	ClearPendingNavigation(ctx context.Context, contextKey string) error
	APIKey(ctx context.Context) (string, error)
	Profile(ctx context.Context) (entity.Profile, error)
	Memories(ctx context.Context) ([]string, error)
}

type PageListings interface {
	ApplyFilters(ctx context.Context, spec entity.FilterSpec) (entity.FilterResult, error)
	ShowAll(ctx context.Context) (int, error)
	Summary(ctx context.Context) (entity.PageSummary, error)
}

type PromptBuilder interface {
	SystemPrompt(profile entity.Profile, memories []string) (string, error)
	GreetingPrompt(summary entity.PageSummary) (string, error)
	ResumePrompt(message, url string) (string, error)
}

type Config struct {
	MaxToolIterations int
	MaxTokens         int
}

// state is the session owned by the controller for one search context.
type state struct {
	contextKey   string
	messages     []entity.ChatMessage
	filters      entity.FilterSpec
	sidebarOpen  bool
	pendingInput string
	lastUserText string
}

type Controller struct {
	llm      output.LLMPort
	tools    output.ToolRegistry
	page     output.PagePort
	store    SessionStore
	listings PageListings
	prompts  PromptBuilder
	surface  output.ChatSurfacePort
	logger   output.LoggerPort
	config   Config

	mu     sync.Mutex
	status input.Status
	state  state
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	page output.PagePort,
	store SessionStore,
	listings PageListings,
	prompts PromptBuilder,
	surface output.ChatSurfacePort,
	logger output.LoggerPort,
	config Config,
) *Controller {
	if config.MaxToolIterations <= 0 {
		config.MaxToolIterations = DefaultMaxToolIterations
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	return &Controller{
		llm:      llm,
		tools:    tools,
		page:     page,
		store:    store,
		listings: listings,
		prompts:  prompts,
		surface:  surface,
		logger:   logger,
		config:   config,
		status:   input.StatusIdle,
	}
}

func (c *Controller) Status() input.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) History() []entity.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.ChatMessage(nil), c.state.messages...)
}

func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != input.StatusIdle {
		return false
	}
	c.status = input.StatusAwaitingModelResponse
	return true
}

func (c *Controller) setStatus(s input.Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// SubmitTurn runs one user turn through the tool loop. Synthesized prompts
// drive the model but are never added to the visible history.
func (c *Controller) SubmitTurn(ctx context.Context, text string, synthesized bool) (*input.TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("message is empty")
	}
	if !c.begin() {
		return nil, entity.NewError(entity.ErrTurnInProgress, "", nil)
	}
	defer c.setStatus(input.StatusIdle)

	turnID := uuid.NewString()
	logger := c.logger.WithFields(map[string]any{
		"turn_id":     turnID,
		"context":     c.contextKey(),
		"synthesized": synthesized,
	})

	apiKey, err := c.store.APIKey(ctx)
	if err != nil {
		return nil, c.fail(ctx, logger, entity.NewError(entity.ErrInternal, "failed to read credential", err))
	}
	if apiKey == "" {
		return nil, c.fail(ctx, logger, entity.NewError(entity.ErrMissingCredential, "", nil))
	}

	c.mu.Lock()
	if !synthesized {
		c.state.messages = append(c.state.messages, entity.ChatMessage{Role: entity.RoleUser, Content: text})
		c.state.pendingInput = ""
		c.state.lastUserText = text
	}
	buffer := c.outboundMessages()
	c.mu.Unlock()

	if !synthesized {
		c.surface.ShowMessage(ctx, entity.RoleUser, text)
		c.persist(ctx, logger)
	} else {
		buffer = append(buffer, entity.TextMessage(entity.RoleUser, text))
	}

	system, err := c.systemPrompt(ctx)
	if err != nil {
		return nil, c.fail(ctx, logger, entity.NewError(entity.ErrInternal, "failed to build system prompt", err))
	}

	logger.Info("turn started", "history", len(buffer))

	result := &input.TurnResult{TurnID: turnID}
	toolDefs := c.tools.Definitions()
	rounds := 0

	for {
		c.setStatus(input.StatusAwaitingModelResponse)
		c.surface.ShowTyping(ctx, true)
		resp, err := c.llm.Chat(ctx, output.ChatRequest{
			APIKey:    apiKey,
			System:    system,
			Messages:  buffer,
			Tools:     toolDefs,
			MaxTokens: c.config.MaxTokens,
		})
		c.surface.ShowTyping(ctx, false)
		result.Iterations++
		if err != nil {
			if entity.KindOf(err) == "" {
				err = entity.NewError(entity.ErrNetworkFailure, "", err)
			}
			return nil, c.fail(ctx, logger, err)
		}

		buffer = append(buffer, resp.Message)
		calls := resp.Message.ToolCalls()

		if resp.StopReason != entity.StopReasonToolUse || len(calls) == 0 {
			result.Reply = strings.TrimSpace(resp.Message.Text())
			c.finish(ctx, logger, result.Reply)
			logger.Info("turn completed", "iterations", result.Iterations, "tool_rounds", rounds)
			return result, nil
		}

		if rounds >= c.config.MaxToolIterations {
			return nil, c.fail(ctx, logger, entity.NewError(entity.ErrToolLoopExceeded,
				fmt.Sprintf("more than %d tool rounds", c.config.MaxToolIterations), nil))
		}
		rounds++

		c.setStatus(input.StatusExecutingTools)
		results, nav := c.dispatch(ctx, logger, calls)
		buffer = append(buffer, entity.ToolResultsMessage(results))

		if nav != nil {
			result.Navigated = true
			result.Reply = strings.TrimSpace(resp.Message.Text())
			c.finish(ctx, logger, result.Reply)
			c.persistAt(ctx, logger, session.ContextKey(nav.URL))
			logger.Info("turn ended by navigation", "url", nav.URL, "iterations", result.Iterations)
			return result, nil
		}
	}
}

// outboundMessages must be called with mu held. The model API wants the
// first message from the user, so a leading greeting gets a placeholder.
func (c *Controller) outboundMessages() []entity.Message {
	msgs := entity.ConversationState{Messages: c.state.messages}.History()
	if len(msgs) > 0 && msgs[0].Role == entity.RoleAssistant {
		msgs = append([]entity.Message{entity.TextMessage(entity.RoleUser, "(página cargada)")}, msgs...)
	}
	return msgs
}

func (c *Controller) systemPrompt(ctx context.Context) (string, error) {
	profile, err := c.store.Profile(ctx)
	if err != nil {
		return "", err
	}
	memories, err := c.store.Memories(ctx)
	if err != nil {
		return "", err
	}
	return c.prompts.SystemPrompt(profile, memories)
}

// dispatch runs the requested tools in order. Once one of them navigates,
// the rest are answered without running since the page is gone.
func (c *Controller) dispatch(ctx context.Context, logger output.LoggerPort, calls []entity.ToolCall) ([]entity.ToolResult, *entity.NavigationOutcome) {
	results := make([]entity.ToolResult, 0, len(calls))
	var nav *entity.NavigationOutcome

	for _, call := range calls {
		args := string(call.Input)

		if nav != nil {
			results = append(results, entity.ToolResult{
				ToolUseID: call.ID,
				Content:   `{"error":"skipped: the page navigated away"}`,
				IsError:   true,
			})
			continue
		}

		c.surface.ShowToolStart(ctx, call.Name, args)
		logger.Info("executing tool", "name", call.Name, "args", args)

		outcome := c.tools.Execute(ctx, call.Name, args)
		content := outcome.Content
		if len(content) > maxResultLen {
			logger.Warn("tool result truncated", "name", call.Name, "size", len(content), "limit", maxResultLen)
			content = fitResult(content, maxResultLen)
		}

		if outcome.IsError {
			logger.Warn("tool returned error", "name", call.Name, "kind", outcome.Kind, "result", content)
		} else {
			logger.Debug("tool completed", "name", call.Name, "result_len", len(content))
		}
		c.surface.ShowToolResult(ctx, call.Name, content, outcome.IsError)

		results = append(results, entity.ToolResult{
			ToolUseID: call.ID,
			Content:   content,
			IsError:   outcome.IsError,
		})
		if outcome.Navigation != nil && outcome.Navigation.Navigating {
			nav = outcome.Navigation
		}
	}
	return results, nav
}

// finish renders and records the assistant reply. Empty replies are dropped.
func (c *Controller) finish(ctx context.Context, logger output.LoggerPort, reply string) {
	if reply == "" {
		return
	}
	c.mu.Lock()
	c.state.messages = append(c.state.messages, entity.ChatMessage{Role: entity.RoleAssistant, Content: reply})
	c.mu.Unlock()

	c.surface.ShowMessage(ctx, entity.RoleAssistant, reply)
	c.persist(ctx, logger)
}

// fail reports a turn-ending error to the user once and returns it. Errors
// that reach it unclassified are local.
func (c *Controller) fail(ctx context.Context, logger output.LoggerPort, err error) error {
	if entity.KindOf(err) == "" {
		err = entity.NewError(entity.ErrInternal, "", err)
	}
	logger.Error("turn failed", "kind", entity.KindOf(err), "error", err)
	c.surface.ShowSystem(ctx, entity.UserMessage(err))
	return err
}

func (c *Controller) contextKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.contextKey
}

func (c *Controller) snapshot() entity.ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return entity.ConversationState{
		Messages:      append([]entity.ChatMessage(nil), c.state.messages...),
		ActiveFilters: c.state.filters,
		SidebarOpen:   c.state.sidebarOpen,
		PendingInput:  c.state.pendingInput,
	}
}

func (c *Controller) persist(ctx context.Context, logger output.LoggerPort) {
	c.persistAt(ctx, logger, c.contextKey())
}

// persistAt saves the session under key. Storage failures are logged and do
// not fail the turn.
func (c *Controller) persistAt(ctx context.Context, logger output.LoggerPort, key string) {
	if key == "" {
		return
	}
	if err := c.store.SaveConversation(ctx, key, c.snapshot()); err != nil {
		logger.Warn("failed to persist conversation", "context", key, "error", err)
	}
}
