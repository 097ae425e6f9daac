package tool

import (
	"context"
	"fmt"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/usecase/filter"
)

var ratingEnum = []string{"A", "B", "C", "D", "E", "F", "G"}

type FilterListingsTool struct {
	listings Listings
	state    output.FilterStatePort
}

func NewFilterListingsTool(listings Listings, state output.FilterStatePort) *FilterListingsTool {
	return &FilterListingsTool{listings: listings, state: state}
}

func (t *FilterListingsTool) Name() entity.ToolName { return entity.ToolFilterListings }
func (t *FilterListingsTool) Description() string {
	return "Show or hide listings on the current page by criteria. Hidden listings stay on the page, just out of view. Replaces previous criteria; an active smart filter is kept."
}
func (t *FilterListingsTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"owner_type": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"individual", "agency", "all"},
			"description": "Owner type: individual (particular), agency, or all",
		},
		"max_price": prop("number", "Maximum monthly price in EUR"),
		"min_size":  prop("integer", "Minimum size in square meters"),
		"min_rooms": prop("integer", "Minimum number of rooms"),
		"min_energy_rating": map[string]interface{}{
			"type":        "string",
			"enum":        ratingEnum,
			"description": "Worst acceptable energy rating (A is best, G is worst)",
		},
		"require_energy_cert": prop("boolean", "Hide listings without an A-G energy certificate"),
		"listing_ids":         stringArray("Show only these listing IDs and hide every other one"),
	})
}

func (t *FilterListingsTool) Execute(ctx context.Context, args string) (any, error) {
	var input entity.FilterSpec
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	input.SmartFilter = nil

	switch input.OwnerType {
	case "", entity.OwnerIndividual, entity.OwnerAgency, filter.OwnerAll:
	default:
		return nil, fmt.Errorf("invalid owner_type %q", input.OwnerType)
	}
	if input.MinEnergyRating != "" {
		rating := entity.ParseEnergyRating(string(input.MinEnergyRating))
		if !rating.IsCertified() {
			return nil, fmt.Errorf("invalid min_energy_rating %q", input.MinEnergyRating)
		}
		input.MinEnergyRating = rating
	}

	spec := t.state.ActiveFilters().WithScalars(input)
	result, err := t.listings.ApplyFilters(ctx, spec)
	if err != nil {
		return nil, err
	}
	if err := t.state.SetActiveFilters(ctx, spec); err != nil {
		return nil, err
	}
	return result, nil
}

type ApplySmartFilterTool struct {
	listings Listings
	state    output.FilterStatePort
}

func NewApplySmartFilterTool(listings Listings, state output.FilterStatePort) *ApplySmartFilterTool {
	return &ApplySmartFilterTool{listings: listings, state: state}
}

func (t *ApplySmartFilterTool) Name() entity.ToolName { return entity.ToolApplySmartFilter }
func (t *ApplySmartFilterTool) Description() string {
	return "Filter listings by words in their title and full description (e.g. luminoso, exterior, terraza). A listing stays visible if it contains at least one keyword and none of the exclude keywords. Loads missing descriptions first, which may take a few seconds."
}
func (t *ApplySmartFilterTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"label":            prop("string", "Short name for the filter shown to the user"),
		"keywords":         stringArray("Keywords of which at least one must appear (case-insensitive)"),
		"exclude_keywords": stringArray("Keywords that hide a listing when present"),
	}, "label")
}

func (t *ApplySmartFilterTool) Execute(ctx context.Context, args string) (any, error) {
	var input entity.SmartFilter
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.IsEmpty() {
		return nil, fmt.Errorf("keywords or exclude_keywords is required")
	}

	spec := t.state.ActiveFilters()
	spec.SmartFilter = &input
	result, err := t.listings.ApplyFilters(ctx, spec)
	if err != nil {
		return nil, err
	}
	if err := t.state.SetActiveFilters(ctx, spec); err != nil {
		return nil, err
	}
	return map[string]any{
		"shown":  result.Shown,
		"hidden": result.Hidden,
		"label":  input.Label,
	}, nil
}

type HighlightListingsTool struct {
	listings Listings
}

func NewHighlightListingsTool(listings Listings) *HighlightListingsTool {
	return &HighlightListingsTool{listings: listings}
}

func (t *HighlightListingsTool) Name() entity.ToolName { return entity.ToolHighlightListings }
func (t *HighlightListingsTool) Description() string {
	return "Visually highlight specific listings to draw the user's attention. Clears previous highlights."
}
func (t *HighlightListingsTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"listing_ids": stringArray("IDs of listings to highlight"),
		"color":       prop("string", "CSS color for the highlight (default green)"),
	}, "listing_ids")
}

func (t *HighlightListingsTool) Execute(ctx context.Context, args string) (any, error) {
	var input struct {
		ListingIDs []string `json:"listing_ids"`
		Color      string   `json:"color"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	n, err := t.listings.Highlight(ctx, input.ListingIDs, input.Color)
	if err != nil {
		return nil, err
	}
	return map[string]int{"highlighted": n}, nil
}

type ShowAllListingsTool struct {
	listings Listings
	state    output.FilterStatePort
}

func NewShowAllListingsTool(listings Listings, state output.FilterStatePort) *ShowAllListingsTool {
	return &ShowAllListingsTool{listings: listings, state: state}
}

func (t *ShowAllListingsTool) Name() entity.ToolName { return entity.ToolShowAllListings }
func (t *ShowAllListingsTool) Description() string {
	return "Remove every filter and highlight and show all listings again."
}
func (t *ShowAllListingsTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{})
}

func (t *ShowAllListingsTool) Execute(ctx context.Context, _ string) (any, error) {
	n, err := t.listings.ShowAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := t.state.SetActiveFilters(ctx, entity.FilterSpec{}); err != nil {
		return nil, err
	}
	return map[string]int{"restored": n}, nil
}
