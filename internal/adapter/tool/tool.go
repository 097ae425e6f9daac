package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/usecase/detail"
)

// Listings is the page-level listing service the tools drive.
type Listings interface {
	Listings(ctx context.Context) ([]entity.ListingRecord, error)
	Summary(ctx context.Context) (entity.PageSummary, error)
	Pagination(ctx context.Context) (entity.PaginationState, error)
	ApplyFilters(ctx context.Context, spec entity.FilterSpec) (entity.FilterResult, error)
	Highlight(ctx context.Context, ids []string, color string) (int, error)
	ShowAll(ctx context.Context) (int, error)
}

type Details interface {
	Get(ctx context.Context, id string) (*entity.DetailRecord, error)
	GetMany(ctx context.Context, ids []string) ([]detail.Result, error)
}

func decode(args string, v any) error {
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("invalid input format: %w", err)
	}
	return nil
}

func object(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func stringArray(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": description,
	}
}
