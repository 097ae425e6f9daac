package output

import (
	"context"

	"listing-assistant/internal/domain/entity"
)

// ListingElement is an opaque handle to one listing card on the host page.
type ListingElement interface {
	Index() int
}

type PagePort interface {
	QueryListings(ctx context.Context) ([]ListingElement, error)
	ExtractFields(ctx context.Context, el ListingElement) (entity.ListingRecord, error)
	SetVisibility(ctx context.Context, el ListingElement, visible bool) error
	// SetHighlight outlines the card with color; an empty color clears it.
	SetHighlight(ctx context.Context, el ListingElement, color string) error
	SetBadge(ctx context.Context, el ListingElement, rating entity.EnergyRating) error

	PaginationState(ctx context.Context) (entity.PaginationState, error)
	CurrentURL() string
	Navigate(ctx context.Context, url string) error
	OpenTab(ctx context.Context, url string) error
	EvalScript(ctx context.Context, code string) (string, error)
	FetchHTML(ctx context.Context, url string) (string, error)
}
