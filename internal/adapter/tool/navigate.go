package tool

import (
	"context"
	"fmt"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

type OpenListingTool struct {
	page output.PagePort
	urls output.SiteURLs
}

func NewOpenListingTool(page output.PagePort, urls output.SiteURLs) *OpenListingTool {
	return &OpenListingTool{page: page, urls: urls}
}

func (t *OpenListingTool) Name() entity.ToolName { return entity.ToolOpenListing }
func (t *OpenListingTool) Description() string {
	return "Open the detail page of a listing in a new browser tab. The current page and conversation stay as they are."
}
func (t *OpenListingTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"listing_id": prop("string", "The ID of the listing to open"),
	}, "listing_id")
}

func (t *OpenListingTool) Execute(ctx context.Context, args string) (any, error) {
	var input struct {
		ListingID string `json:"listing_id"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.ListingID == "" {
		return nil, fmt.Errorf("listing_id parameter is required")
	}

	url := t.urls.DetailURL(input.ListingID)
	if err := t.page.OpenTab(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return map[string]string{"opened": input.ListingID, "url": url}, nil
}

type GoToPageTool struct {
	page     output.PagePort
	listings Listings
	urls     output.SiteURLs
	guard    output.NavigationGuard
}

func NewGoToPageTool(page output.PagePort, listings Listings, urls output.SiteURLs, guard output.NavigationGuard) *GoToPageTool {
	return &GoToPageTool{page: page, listings: listings, urls: urls, guard: guard}
}

func (t *GoToPageTool) Name() entity.ToolName { return entity.ToolGoToPage }
func (t *GoToPageTool) Description() string {
	return "Navigate to another page of the search results. The conversation continues automatically once the new page loads; do not call other tools after this one."
}
func (t *GoToPageTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"page": prop("integer", "Page number to go to (1-based)"),
	}, "page")
}

func (t *GoToPageTool) Execute(ctx context.Context, args string) (any, error) {
	var input struct {
		Page int `json:"page"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}

	pagination, err := t.listings.Pagination(ctx)
	if err != nil {
		return nil, err
	}
	if input.Page < 1 || (pagination.Total > 0 && input.Page > pagination.Total) {
		return entity.ErrorResult{Error: fmt.Sprintf("page %d out of range (1-%d)", input.Page, max(pagination.Total, 1))}, nil
	}
	if input.Page == pagination.Current {
		return entity.ErrorResult{Error: fmt.Sprintf("already on page %d", input.Page)}, nil
	}

	url, ok := pagination.LinkFor(input.Page)
	if !ok {
		if url, err = t.urls.PageURL(t.page.CurrentURL(), input.Page); err != nil {
			return nil, err
		}
	}

	if err := navigate(ctx, t.page, t.guard, url); err != nil {
		return nil, err
	}
	return entity.NavigationOutcome{Navigating: true, URL: url, Page: input.Page}, nil
}

type ApplyNativeFiltersTool struct {
	page  output.PagePort
	urls  output.SiteURLs
	guard output.NavigationGuard
}

func NewApplyNativeFiltersTool(page output.PagePort, urls output.SiteURLs, guard output.NavigationGuard) *ApplyNativeFiltersTool {
	return &ApplyNativeFiltersTool{page: page, urls: urls, guard: guard}
}

func (t *ApplyNativeFiltersTool) Name() entity.ToolName { return entity.ToolApplyNativeFilters }
func (t *ApplyNativeFiltersTool) Description() string {
	return "Apply the site's own search filters, which affect every results page, by reloading the search with a new URL. Use it when the user wants criteria applied across all pages. The conversation continues once the new page loads."
}
func (t *ApplyNativeFiltersTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"min_price":        prop("integer", "Minimum monthly price in EUR"),
		"max_price":        prop("integer", "Maximum monthly price in EUR"),
		"min_size":         prop("integer", "Minimum size in m²"),
		"max_size":         prop("integer", "Maximum size in m²"),
		"min_bedrooms":     prop("integer", "Minimum bedrooms (1-4; 4 means four or more)"),
		"elevator":         prop("boolean", "Only with elevator"),
		"terrace":          prop("boolean", "Only with terrace"),
		"air_conditioning": prop("boolean", "Only with air conditioning"),
		"parking":          prop("boolean", "Only with parking space"),
		"furnished":        prop("boolean", "Only furnished"),
		"pets_allowed":     prop("boolean", "Only where pets are allowed"),
	})
}

func (t *ApplyNativeFiltersTool) Execute(ctx context.Context, args string) (any, error) {
	var input entity.NativeFilters
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.IsEmpty() {
		return nil, fmt.Errorf("at least one filter is required")
	}

	url, err := t.urls.FilteredSearchURL(t.page.CurrentURL(), input)
	if err != nil {
		return nil, err
	}
	if err := navigate(ctx, t.page, t.guard, url); err != nil {
		return nil, err
	}

	return entity.NavigationOutcome{Navigating: true, URL: url, Filters: input.Fields()}, nil
}

// navigate persists the conversation for the destination before leaving and
// withdraws the resume marker when the browser does not leave.
func navigate(ctx context.Context, page output.PagePort, guard output.NavigationGuard, url string) error {
	if err := guard.PrepareNavigation(ctx, url, ""); err != nil {
		return fmt.Errorf("failed to prepare navigation: %w", err)
	}
	if err := page.Navigate(ctx, url); err != nil {
		if cerr := guard.CancelNavigation(context.WithoutCancel(ctx), url); cerr != nil {
			return fmt.Errorf("navigation failed: %w (marker kept: %v)", err, cerr)
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}
