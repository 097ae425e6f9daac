package output

import (
	"context"

	"listing-assistant/internal/domain/entity"
)

// ToolPort is one entry of the tool catalog. Execute receives the raw JSON
// input from the model and returns a JSON-serializable result.
type ToolPort interface {
	Name() entity.ToolName
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, arguments string) (any, error)
}

// ToolOutcome is the serialized result of a dispatch. Navigation is set when
// the tool moved the browser away from the current page; Kind classifies
// error outcomes.
type ToolOutcome struct {
	Content    string
	IsError    bool
	Kind       entity.ErrorKind
	Navigation *entity.NavigationOutcome
}

type ToolRegistry interface {
	Register(tool ToolPort)
	Get(name entity.ToolName) (ToolPort, bool)
	All() []ToolPort
	Definitions() []entity.ToolDefinition
	Execute(ctx context.Context, name string, arguments string) ToolOutcome
}
