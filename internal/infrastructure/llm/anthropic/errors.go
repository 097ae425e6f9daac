package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"listing-assistant/internal/domain/entity"
)

// classifyError maps transport and API failures onto the assistant's error
// kinds. Message matching follows the texts the API returns.
func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e := entity.NewError(entity.ErrNetworkFailure, "model request timed out", err)
		e.Retryable = true
		return e
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	status, message := 0, ""
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status, message = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
		if reqErr.Err != nil {
			message = reqErr.Err.Error()
		}
		if len(reqErr.Body) > 0 {
			message += " " + string(reqErr.Body)
		}
	}
	lower := strings.ToLower(message)

	var e *entity.AssistantError
	switch {
	case strings.Contains(lower, "credit balance is too low"):
		e = entity.NewError(entity.ErrInsufficientCredits, message, err)
	case status == http.StatusUnauthorized || strings.Contains(lower, "invalid x-api-key") || strings.Contains(lower, "invalid api key"):
		e = entity.NewError(entity.ErrAuthRejected, message, err)
	case status == http.StatusTooManyRequests || strings.Contains(lower, "rate limit"):
		e = entity.NewError(entity.ErrRateLimited, message, err)
		e.Retryable = true
	case status >= 500:
		e = entity.NewError(entity.ErrUpstreamServer, message, err)
		e.Retryable = true
	case status == 0:
		e = entity.NewError(entity.ErrNetworkFailure, "", err)
		e.Retryable = true
	default:
		e = entity.NewError(entity.ErrUpstreamServer, message, err)
	}
	return e
}
