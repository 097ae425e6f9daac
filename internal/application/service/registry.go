package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

var _ output.ToolRegistry = (*ToolRegistryImpl)(nil)

// ToolRegistryImpl keeps tools in registration order so the catalog sent to
// the model is stable between turns.
type ToolRegistryImpl struct {
	mu    sync.RWMutex
	tools map[entity.ToolName]output.ToolPort
	order []entity.ToolName
}

func NewToolRegistry() *ToolRegistryImpl {
	return &ToolRegistryImpl{
		tools: make(map[entity.ToolName]output.ToolPort),
	}
}

func (r *ToolRegistryImpl) Register(tool output.ToolPort) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name()]; !exists {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

func (r *ToolRegistryImpl) Get(name entity.ToolName) (output.ToolPort, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

func (r *ToolRegistryImpl) All() []output.ToolPort {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]output.ToolPort, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

func (r *ToolRegistryImpl) Definitions() []entity.ToolDefinition {
	tools := r.All()
	result := make([]entity.ToolDefinition, 0, len(tools))
	for _, tool := range tools {
		result = append(result, entity.ToolDefinition{
			Name:        tool.Name().String(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return result
}

// Execute never fails: unknown tools, handler errors and panics all come back
// as an {"error": ...} payload for the model.
func (r *ToolRegistryImpl) Execute(ctx context.Context, name string, arguments string) (outcome output.ToolOutcome) {
	tool, ok := r.Get(entity.ToolName(name))
	if !ok {
		return errorOutcome(entity.ErrUnknownTool, fmt.Sprintf("Unknown tool: %s", name))
	}

	defer func() {
		if rec := recover(); rec != nil {
			outcome = errorOutcome(entity.ErrToolExecutionFailure, fmt.Sprintf("tool %s panicked: %v", name, rec))
		}
	}()

	if arguments == "" {
		arguments = "{}"
	}

	result, err := tool.Execute(ctx, arguments)
	if err != nil {
		return errorOutcome(entity.ErrToolExecutionFailure, err.Error())
	}

	return encodeOutcome(result)
}

func encodeOutcome(result any) output.ToolOutcome {
	var outcome output.ToolOutcome

	switch v := result.(type) {
	case entity.NavigationOutcome:
		outcome.Navigation = &v
	case *entity.NavigationOutcome:
		outcome.Navigation = v
	case entity.ErrorResult, *entity.ErrorResult:
		outcome.IsError = true
		outcome.Kind = entity.ErrToolExecutionFailure
	}

	data, err := json.Marshal(result)
	if err != nil {
		return errorOutcome(entity.ErrToolExecutionFailure, fmt.Sprintf("failed to encode result: %v", err))
	}
	outcome.Content = string(data)
	return outcome
}

func errorOutcome(kind entity.ErrorKind, msg string) output.ToolOutcome {
	data, _ := json.Marshal(entity.ErrorResult{Error: msg})
	return output.ToolOutcome{Content: string(data), IsError: true, Kind: kind}
}
