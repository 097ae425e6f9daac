package listings

import (
	"context"
	"fmt"
	"math"
	"slices"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/usecase/filter"
)

const DefaultHighlightColor = "#4CAF50"

type DetailCache interface {
	CachedDetail(ctx context.Context, id string) (*entity.DetailRecord, bool, error)
}

type PriceTracker interface {
	TrackPrice(ctx context.Context, id string, price float64) (*entity.PriceChange, error)
}

type DescriptionLoader interface {
	EnsureDescriptionsLoaded(ctx context.Context, listings []entity.ListingRecord) (map[string]*entity.DetailRecord, error)
}

// Service reads and manipulates the listing cards of the current results page.
type Service struct {
	page   output.PagePort
	engine *filter.Engine
	cache  DetailCache
	prices PriceTracker
	loader DescriptionLoader
	logger output.LoggerPort
}

func NewService(
	page output.PagePort,
	engine *filter.Engine,
	cache DetailCache,
	prices PriceTracker,
	loader DescriptionLoader,
	logger output.LoggerPort,
) *Service {
	return &Service{
		page:   page,
		engine: engine,
		cache:  cache,
		prices: prices,
		loader: loader,
		logger: logger,
	}
}

// Scrape extracts every card, merges cached detail data and annotates price
// changes and red flags.
func (s *Service) Scrape(ctx context.Context) ([]filter.Item, error) {
	elements, err := s.page.QueryListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}

	items := make([]filter.Item, 0, len(elements))
	for _, el := range elements {
		rec, err := s.page.ExtractFields(ctx, el)
		if err != nil {
			s.logger.Warn("failed to extract listing", "index", el.Index(), "error", err)
			continue
		}

		if rec.ID != "" {
			if d, ok, err := s.cache.CachedDetail(ctx, rec.ID); err != nil {
				s.logger.Warn("detail cache read failed", "id", rec.ID, "error", err)
			} else if ok {
				rec = rec.Merge(d)
			}

			change, err := s.prices.TrackPrice(ctx, rec.ID, rec.Price)
			if err != nil {
				s.logger.Warn("price tracking failed", "id", rec.ID, "error", err)
			}
			rec.PriceChange = change
		}

		if rec.Price > 0 && rec.SizeSqm > 0 {
			rec.PricePerSqm = math.Round(rec.Price/float64(rec.SizeSqm)*100) / 100
		}

		items = append(items, filter.Item{Element: el, Record: rec})
	}

	annotateRedFlags(items)
	return items, nil
}

func (s *Service) Listings(ctx context.Context) ([]entity.ListingRecord, error) {
	items, err := s.Scrape(ctx)
	if err != nil {
		return nil, err
	}
	return records(items), nil
}

// ApplyFilters evaluates spec against every card. When a smart filter is set
// the descriptions are loaded first so keyword matching sees the full ad.
func (s *Service) ApplyFilters(ctx context.Context, spec entity.FilterSpec) (entity.FilterResult, error) {
	items, err := s.Scrape(ctx)
	if err != nil {
		return entity.FilterResult{}, err
	}

	if !spec.SmartFilter.IsEmpty() {
		details, err := s.loader.EnsureDescriptionsLoaded(ctx, records(items))
		if err != nil {
			s.logger.Warn("some descriptions could not be loaded", "error", err)
		}
		for i := range items {
			if d, ok := details[items[i].Record.ID]; ok {
				items[i].Record = items[i].Record.Merge(d)
			}
		}
	}

	return s.engine.Apply(ctx, items, spec)
}

// Highlight clears every previous highlight and outlines the given ids.
func (s *Service) Highlight(ctx context.Context, ids []string, color string) (int, error) {
	if color == "" {
		color = DefaultHighlightColor
	}

	items, err := s.Scrape(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, it := range items {
		c := ""
		if slices.Contains(ids, it.Record.ID) {
			c = color
			count++
		}
		if err := s.page.SetHighlight(ctx, it.Element, c); err != nil {
			return count, fmt.Errorf("failed to highlight listing %s: %w", it.Record.ID, err)
		}
	}
	return count, nil
}

// ShowAll makes every card visible and clears highlights.
func (s *Service) ShowAll(ctx context.Context) (int, error) {
	elements, err := s.page.QueryListings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query listings: %w", err)
	}
	for _, el := range elements {
		if err := s.page.SetVisibility(ctx, el, true); err != nil {
			return 0, fmt.Errorf("failed to show listing: %w", err)
		}
		if err := s.page.SetHighlight(ctx, el, ""); err != nil {
			return 0, fmt.Errorf("failed to clear highlight: %w", err)
		}
	}
	return len(elements), nil
}

func (s *Service) Pagination(ctx context.Context) (entity.PaginationState, error) {
	p, err := s.page.PaginationState(ctx)
	if err != nil {
		return p, fmt.Errorf("failed to read pagination: %w", err)
	}
	return p, nil
}

func (s *Service) Summary(ctx context.Context) (entity.PageSummary, error) {
	items, err := s.Scrape(ctx)
	if err != nil {
		return entity.PageSummary{}, err
	}
	return Summarize(records(items)), nil
}

func records(items []filter.Item) []entity.ListingRecord {
	out := make([]entity.ListingRecord, len(items))
	for i, it := range items {
		out[i] = it.Record
	}
	return out
}
