package conversation

import (
	"context"
	"fmt"

	"listing-assistant/internal/application/port/input"
	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/usecase/session"
)

// OnPageLoad switches the controller to the search context of the current
// page: it restores history and filters, then either resumes a task that
// navigated here or greets the user on a fresh context.
func (c *Controller) OnPageLoad(ctx context.Context) (*input.TurnResult, error) {
	url := c.page.CurrentURL()
	key := session.ContextKey(url)
	logger := c.logger.WithField("context", key)

	saved, ok, err := c.store.LoadConversation(ctx, key)
	if err != nil {
		logger.Warn("failed to load conversation", "error", err)
	}

	next := state{contextKey: key}
	if ok {
		next.messages = saved.Messages
		next.filters = saved.ActiveFilters
		next.sidebarOpen = saved.SidebarOpen
		next.pendingInput = saved.PendingInput
		for i := len(saved.Messages) - 1; i >= 0; i-- {
			if saved.Messages[i].Role == entity.RoleUser {
				next.lastUserText = saved.Messages[i].Content
				break
			}
		}
	}

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()

	if !next.filters.IsEmpty() {
		result, err := c.listings.ApplyFilters(ctx, next.filters)
		if err != nil {
			logger.Warn("failed to restore filters", "error", err)
		} else {
			logger.Info("filters restored", "shown", result.Shown, "hidden", result.Hidden)
		}
	}

	for _, m := range next.messages {
		c.surface.ShowMessage(ctx, m.Role, m.Content)
	}

	marker, ok, err := c.store.ConsumePendingNavigation(ctx, key)
	if err != nil {
		logger.Warn("failed to read navigation marker", "error", err)
	}
	if ok {
		prompt, err := c.prompts.ResumePrompt(marker.Message, url)
		if err != nil {
			return nil, fmt.Errorf("failed to build resume prompt: %w", err)
		}
		logger.Info("resuming after navigation")
		return c.SubmitTurn(ctx, prompt, true)
	}

	if len(next.messages) > 0 {
		return nil, nil
	}

	apiKey, err := c.store.APIKey(ctx)
	if err != nil || apiKey == "" {
		return nil, nil
	}

	summary, err := c.listings.Summary(ctx)
	if err != nil {
		logger.Warn("failed to summarize page", "error", err)
		return nil, nil
	}
	if summary.Total == 0 {
		return nil, nil
	}
	prompt, err := c.prompts.GreetingPrompt(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to build greeting prompt: %w", err)
	}
	return c.SubmitTurn(ctx, prompt, true)
}

// PrepareNavigation saves the session under the destination's context and
// leaves a marker there so the next page load resumes the task.
func (c *Controller) PrepareNavigation(ctx context.Context, targetURL, message string) error {
	key := session.ContextKey(targetURL)

	if message == "" {
		c.mu.Lock()
		message = c.state.lastUserText
		c.mu.Unlock()
	}

	if err := c.store.SaveConversation(ctx, key, c.snapshot()); err != nil {
		return fmt.Errorf("failed to save conversation for %s: %w", key, err)
	}
	if err := c.store.SetPendingNavigation(ctx, key, message); err != nil {
		return fmt.Errorf("failed to save navigation marker: %w", err)
	}
	return nil
}

// CancelNavigation removes the marker left by PrepareNavigation so a later
// visit to targetURL does not auto-resume a turn.
func (c *Controller) CancelNavigation(ctx context.Context, targetURL string) error {
	return c.store.ClearPendingNavigation(ctx, session.ContextKey(targetURL))
}

func (c *Controller) ActiveFilters() entity.FilterSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.filters
}

func (c *Controller) SetActiveFilters(ctx context.Context, spec entity.FilterSpec) error {
	c.mu.Lock()
	c.state.filters = spec.Persistable()
	c.mu.Unlock()
	return c.save(ctx)
}

// Clear drops history and filters of the current context and restores the page.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	key := c.state.contextKey
	c.state = state{contextKey: key}
	c.mu.Unlock()

	if _, err := c.listings.ShowAll(ctx); err != nil {
		return fmt.Errorf("failed to restore listings: %w", err)
	}
	if err := c.store.RemoveConversation(ctx, key); err != nil {
		return err
	}
	c.surface.ShowSystem(ctx, "Conversación borrada.")
	return nil
}

func (c *Controller) SetSidebarOpen(ctx context.Context, open bool) error {
	c.mu.Lock()
	c.state.sidebarOpen = open
	c.mu.Unlock()
	return c.save(ctx)
}

func (c *Controller) SetPendingInput(ctx context.Context, text string) error {
	c.mu.Lock()
	c.state.pendingInput = text
	c.mu.Unlock()
	return c.save(ctx)
}

func (c *Controller) save(ctx context.Context) error {
	key := c.contextKey()
	if key == "" {
		return nil
	}
	return c.store.SaveConversation(ctx, key, c.snapshot())
}
