package tool

import (
	"context"
	"fmt"
	"strings"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

// ExecuteScriptTool runs arbitrary JavaScript on the page, but only after the
// user approves the model's description of what the script does.
type ExecuteScriptTool struct {
	page    output.PagePort
	surface output.ChatSurfacePort
	logger  output.LoggerPort
}

func NewExecuteScriptTool(page output.PagePort, surface output.ChatSurfacePort, logger output.LoggerPort) *ExecuteScriptTool {
	return &ExecuteScriptTool{page: page, surface: surface, logger: logger}
}

func (t *ExecuteScriptTool) Name() entity.ToolName { return entity.ToolExecuteScript }
func (t *ExecuteScriptTool) Description() string {
	return "Run JavaScript on the results page for anything the other tools cannot do. The user must approve it first based on your description. The script body is evaluated as a function; return a JSON-serializable value."
}
func (t *ExecuteScriptTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"code":        prop("string", "JavaScript function body to run"),
		"description": prop("string", "Plain-language explanation of what the script does, shown to the user for approval"),
	}, "code", "description")
}

func (t *ExecuteScriptTool) Execute(ctx context.Context, args string) (any, error) {
	var input struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Code) == "" {
		return nil, fmt.Errorf("code parameter is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("description parameter is required")
	}

	approved, err := t.surface.Approve(ctx, input.Description)
	if err != nil {
		return nil, fmt.Errorf("approval failed: %w", err)
	}
	if !approved {
		t.logger.Info("script denied by user",
			"kind", entity.ErrUserDeniedPrivilegedAction,
			"description", input.Description,
		)
		return map[string]any{
			"denied":  true,
			"message": "The user did not allow the script to run.",
		}, nil
	}

	result, err := t.page.EvalScript(ctx, input.Code)
	if err != nil {
		return entity.ErrorResult{Error: fmt.Sprintf("script failed: %v", err)}, nil
	}
	return map[string]any{"success": true, "result": result}, nil
}
