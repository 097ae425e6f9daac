package enrich

import (
	"context"
	"fmt"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/usecase/detail"
	"listing-assistant/internal/usecase/filter"
)

type Scraper interface {
	Scrape(ctx context.Context) ([]filter.Item, error)
}

type BulkFetcher interface {
	FetchAll(ctx context.Context, ids []string) ([]detail.Result, error)
}

// BadgeEnricher decorates every card with its energy rating, fetching detail
// pages for cards that do not show one.
type BadgeEnricher struct {
	page    output.PagePort
	scraper Scraper
	details BulkFetcher
	logger  output.LoggerPort
}

func NewBadgeEnricher(page output.PagePort, scraper Scraper, details BulkFetcher, logger output.LoggerPort) *BadgeEnricher {
	return &BadgeEnricher{
		page:    page,
		scraper: scraper,
		details: details,
		logger:  logger,
	}
}

// Run returns the number of badges set. It is meant to be started in its own
// goroutine after a page load; cancelling ctx stops it between batches.
func (e *BadgeEnricher) Run(ctx context.Context) (int, error) {
	items, err := e.scraper.Scrape(ctx)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]output.ListingElement, len(items))
	var missing []string
	badged := 0

	for _, it := range items {
		if it.Record.ID == "" {
			continue
		}
		byID[it.Record.ID] = it.Element
		if it.Record.EnergyRating != "" {
			if err := e.page.SetBadge(ctx, it.Element, it.Record.EnergyRating); err != nil {
				return badged, fmt.Errorf("failed to set badge: %w", err)
			}
			badged++
			continue
		}
		missing = append(missing, it.Record.ID)
	}

	results, err := e.details.FetchAll(ctx, missing)
	for _, r := range results {
		if r.Detail == nil {
			continue
		}
		rating := r.Detail.EffectiveRating()
		if rating == "" {
			rating = entity.EnergyNotIndicated
		}
		if err := e.page.SetBadge(ctx, byID[r.ID], rating); err != nil {
			return badged, fmt.Errorf("failed to set badge: %w", err)
		}
		badged++
	}
	if err != nil {
		return badged, err
	}

	e.logger.Info("energy badges applied", "badged", badged, "fetched", len(missing))
	return badged, nil
}
