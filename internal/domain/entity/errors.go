package entity

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrMissingCredential          ErrorKind = "missing_credential"
	ErrInvalidCredential          ErrorKind = "invalid_credential"
	ErrAuthRejected               ErrorKind = "auth_rejected"
	ErrInsufficientCredits        ErrorKind = "insufficient_credits"
	ErrRateLimited                ErrorKind = "rate_limited"
	ErrUpstreamServer             ErrorKind = "upstream_server_error"
	ErrNetworkFailure             ErrorKind = "network_failure"
	ErrUnknownTool                ErrorKind = "unknown_tool"
	ErrToolExecutionFailure       ErrorKind = "tool_execution_failure"
	ErrToolLoopExceeded           ErrorKind = "tool_loop_exceeded"
	ErrUserDeniedPrivilegedAction ErrorKind = "user_denied_privileged_action"
	ErrTurnInProgress             ErrorKind = "turn_in_progress"
	ErrInternal                   ErrorKind = "internal_failure"
)

var userMessages = map[ErrorKind]string{
	ErrMissingCredential:   "Configura tu API key de Claude con `assistant key set <clave>` antes de usar el asistente.",
	ErrInvalidCredential:   "Formato de API key inválido: debe empezar por sk-ant-.",
	ErrAuthRejected:        "API key inválida. Verifica tu clave con `assistant key status`.",
	ErrInsufficientCredits: "No tienes créditos en tu cuenta de Anthropic. Ve a console.anthropic.com → Settings → Billing para añadir créditos.",
	ErrRateLimited:         "Demasiadas peticiones. Espera unos segundos e inténtalo de nuevo.",
	ErrUpstreamServer:      "Error del servidor de Anthropic. Inténtalo de nuevo en unos minutos.",
	ErrNetworkFailure:      "No se pudo contactar con la API. Comprueba tu conexión e inténtalo de nuevo.",
	ErrToolLoopExceeded:    "El asistente ha encadenado demasiadas acciones sin responder. Reformula la petición.",
	ErrTurnInProgress:      "Espera a que termine la respuesta anterior.",
	ErrInternal:            "Error interno del asistente. Revisa el log para más detalles.",
}

// AssistantError is a classified failure of a conversation turn.
type AssistantError struct {
	Kind      ErrorKind
	Message   string
	Retryable bool
	Err       error
}

func NewError(kind ErrorKind, msg string, err error) *AssistantError {
	return &AssistantError{Kind: kind, Message: msg, Err: err}
}

func (e *AssistantError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *AssistantError) Unwrap() error {
	return e.Err
}

// KindOf extracts the classification of err, or "" for unclassified errors.
func KindOf(err error) ErrorKind {
	var ae *AssistantError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// UserMessage returns the localized text shown in the chat for err.
func UserMessage(err error) string {
	if msg, ok := userMessages[KindOf(err)]; ok {
		return msg
	}
	if err == nil {
		return ""
	}
	return "Error: " + err.Error()
}
