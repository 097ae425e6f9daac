package userinteraction

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

var _ output.ChatSurfacePort = (*Console)(nil)

// Console renders the chat in a terminal and reads user lines and consent
// answers from the same input.
type Console struct {
	reader *bufio.Reader
	out    io.Writer
	mu     sync.Mutex
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// ReadLine prompts and returns the next trimmed line; io.EOF ends the session.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	c.mu.Lock()
	color.New(color.FgCyan, color.Bold).Fprint(c.out, "\n> ")
	c.mu.Unlock()

	line, err := c.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) ShowMessage(ctx context.Context, role entity.MessageRole, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch role {
	case entity.RoleUser:
		color.New(color.FgCyan).Fprint(c.out, "\nTú: ")
		fmt.Fprintln(c.out, content)
	default:
		color.New(color.FgGreen, color.Bold).Fprint(c.out, "\nAsistente: ")
		fmt.Fprintln(c.out, content)
	}
}

func (c *Console) ShowSystem(ctx context.Context, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	color.New(color.FgMagenta).Fprintf(c.out, "\n[%s]\n", content)
}

func (c *Console) ShowTyping(ctx context.Context, on bool) {
	if !on {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	color.New(color.Faint).Fprintln(c.out, "… escribiendo")
}

func (c *Console) ShowToolStart(ctx context.Context, toolName, arguments string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	icon, name := toolDisplay(toolName)
	color.New(color.FgYellow, color.Bold).Fprintf(c.out, "%s %s\n", icon, name)

	if summary := formatToolArguments(arguments); summary != "" {
		color.New(color.Faint).Fprintf(c.out, "   %s\n", summary)
	}
}

func (c *Console) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if isError {
		color.New(color.FgRed).Fprint(c.out, "✗ Error: ")
		color.New(color.Faint).Fprintln(c.out, truncate(result, 300))
		return
	}
	color.New(color.FgGreen).Fprintf(c.out, "✓ %s\n", formatToolResult(result))
}

// Approve asks a yes/no question. Anything but an explicit yes is a denial.
func (c *Console) Approve(ctx context.Context, description string) (bool, error) {
	c.mu.Lock()
	color.New(color.FgRed, color.Bold).Fprintln(c.out, "\n[PERMISO REQUERIDO] El asistente quiere ejecutar un script en la página:")
	fmt.Fprintf(c.out, "   %s\n", description)
	fmt.Fprint(c.out, "¿Permitir? [s/N] ")
	c.mu.Unlock()

	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read approval: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "si", "sí", "y", "yes":
		return true, nil
	}
	return false, nil
}

var toolDisplays = map[entity.ToolName][2]string{
	entity.ToolGetListings:        {"📋", "Leyendo anuncios"},
	entity.ToolGetPageSummary:     {"📊", "Resumen de la página"},
	entity.ToolGetPaginationInfo:  {"📄", "Paginación"},
	entity.ToolGetListingDetails:  {"🔍", "Detalle del anuncio"},
	entity.ToolGetListingsDetails: {"🔎", "Detalle de varios anuncios"},
	entity.ToolFilterListings:     {"🧹", "Filtrando"},
	entity.ToolApplySmartFilter:   {"🧠", "Filtro inteligente"},
	entity.ToolHighlightListings:  {"✨", "Resaltando"},
	entity.ToolShowAllListings:    {"👁️", "Mostrando todo"},
	entity.ToolOpenListing:        {"🔗", "Abriendo anuncio"},
	entity.ToolGoToPage:           {"➡️", "Cambiando de página"},
	entity.ToolApplyNativeFilters: {"🌐", "Filtros de búsqueda"},
	entity.ToolExecuteScript:      {"⚠️", "Script en la página"},
}

func toolDisplay(toolName string) (string, string) {
	if d, ok := toolDisplays[entity.ToolName(toolName)]; ok {
		return d[0], d[1]
	}
	return "🔧", toolName
}

func formatToolArguments(arguments string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil || len(args) == 0 {
		return ""
	}
	if desc, ok := args["description"].(string); ok {
		return truncate(desc, 80)
	}
	data, _ := json.Marshal(args)
	return truncate(string(data), 100)
}

func formatToolResult(result string) string {
	var obj map[string]any
	if err := json.Unmarshal([]byte(result), &obj); err != nil {
		return truncate(result, 100)
	}

	switch {
	case obj["shown"] != nil && obj["hidden"] != nil:
		return fmt.Sprintf("%v visibles, %v ocultos", obj["shown"], obj["hidden"])
	case obj["navigating"] == true:
		return fmt.Sprintf("Navegando a %v", obj["url"])
	case obj["denied"] == true:
		return "Denegado por el usuario"
	}
	return truncate(result, 100)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
