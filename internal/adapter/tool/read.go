package tool

import (
	"context"
	"fmt"

	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/usecase/detail"
)

type GetListingsTool struct {
	listings Listings
}

func NewGetListingsTool(listings Listings) *GetListingsTool {
	return &GetListingsTool{listings: listings}
}

func (t *GetListingsTool) Name() entity.ToolName { return entity.ToolGetListings }
func (t *GetListingsTool) Description() string {
	return "Get every listing on the current results page with its data: price, size, rooms, price per m², energy rating, owner type, photos, red flags, price changes and visibility."
}
func (t *GetListingsTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{})
}

func (t *GetListingsTool) Execute(ctx context.Context, _ string) (any, error) {
	return t.listings.Listings(ctx)
}

type GetPageSummaryTool struct {
	listings Listings
}

func NewGetPageSummaryTool(listings Listings) *GetPageSummaryTool {
	return &GetPageSummaryTool{listings: listings}
}

func (t *GetPageSummaryTool) Name() entity.ToolName { return entity.ToolGetPageSummary }
func (t *GetPageSummaryTool) Description() string {
	return "Get aggregate statistics of the page: totals, visible and hidden counts, price and size ranges, counts by owner type and by energy rating."
}
func (t *GetPageSummaryTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{})
}

func (t *GetPageSummaryTool) Execute(ctx context.Context, _ string) (any, error) {
	return t.listings.Summary(ctx)
}

type GetPaginationInfoTool struct {
	listings Listings
}

func NewGetPaginationInfoTool(listings Listings) *GetPaginationInfoTool {
	return &GetPaginationInfoTool{listings: listings}
}

func (t *GetPaginationInfoTool) Name() entity.ToolName { return entity.ToolGetPaginationInfo }
func (t *GetPaginationInfoTool) Description() string {
	return "Get the current results page number, the total number of pages and whether previous/next pages exist."
}
func (t *GetPaginationInfoTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{})
}

func (t *GetPaginationInfoTool) Execute(ctx context.Context, _ string) (any, error) {
	return t.listings.Pagination(ctx)
}

type GetListingDetailsTool struct {
	details Details
}

func NewGetListingDetailsTool(details Details) *GetListingDetailsTool {
	return &GetListingDetailsTool{details: details}
}

func (t *GetListingDetailsTool) Name() entity.ToolName { return entity.ToolGetListingDetails }
func (t *GetListingDetailsTool) Description() string {
	return "Fetch the detail page of one listing: energy certificate, full description, advertiser name and type, photo count. Results are cached."
}
func (t *GetListingDetailsTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"listing_id": prop("string", "The ID of the listing"),
	}, "listing_id")
}

func (t *GetListingDetailsTool) Execute(ctx context.Context, args string) (any, error) {
	var input struct {
		ListingID string `json:"listing_id"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.ListingID == "" {
		return nil, fmt.Errorf("listing_id parameter is required")
	}
	return t.details.Get(ctx, input.ListingID)
}

type GetListingsDetailsTool struct {
	details Details
}

func NewGetListingsDetailsTool(details Details) *GetListingsDetailsTool {
	return &GetListingsDetailsTool{details: details}
}

func (t *GetListingsDetailsTool) Name() entity.ToolName { return entity.ToolGetListingsDetails }
func (t *GetListingsDetailsTool) Description() string {
	return fmt.Sprintf("Fetch detail pages for several listings at once (at most %d IDs). Cached listings are returned immediately; the rest are fetched in small batches.", detail.MaxBulkIDs)
}
func (t *GetListingsDetailsTool) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"listing_ids": stringArray("IDs of the listings to fetch"),
	}, "listing_ids")
}

func (t *GetListingsDetailsTool) Execute(ctx context.Context, args string) (any, error) {
	var input struct {
		ListingIDs []string `json:"listing_ids"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if len(input.ListingIDs) == 0 {
		return nil, fmt.Errorf("listing_ids parameter is required")
	}

	results, err := t.details.GetMany(ctx, input.ListingIDs)
	if err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	return map[string]any{
		"results": results,
		"fetched": len(results) - failed,
		"failed":  failed,
	}, nil
}
