package output

import (
	"context"

	"listing-assistant/internal/domain/entity"
)

// FilterStatePort exposes the filters active in the current search context.
// Mutating tools record what they applied so it survives page loads.
type FilterStatePort interface {
	ActiveFilters() entity.FilterSpec
	SetActiveFilters(ctx context.Context, spec entity.FilterSpec) error
}
