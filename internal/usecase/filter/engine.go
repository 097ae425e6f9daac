package filter

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

// OwnerAll disables the owner predicate.
const OwnerAll entity.OwnerType = "all"

// Item pairs a card on the page with the record extracted from it.
type Item struct {
	Element output.ListingElement
	Record  entity.ListingRecord
}

// Evaluate reports whether the listing stays visible under spec. It is pure:
// the same record and spec always give the same answer.
func Evaluate(l entity.ListingRecord, spec entity.FilterSpec) bool {
	if len(spec.ListingIDs) > 0 {
		return slices.Contains(spec.ListingIDs, l.ID)
	}

	if !spec.SmartFilter.IsEmpty() && !MatchesSmartFilter(l, spec.SmartFilter) {
		return false
	}

	if spec.OwnerType != "" && spec.OwnerType != OwnerAll {
		if l.OwnerType != spec.OwnerType && l.OwnerType != entity.OwnerUnknown && l.OwnerType != "" {
			return false
		}
	}

	if spec.MaxPrice > 0 && l.Price > spec.MaxPrice {
		return false
	}

	// Unknown size and rooms count as zero.
	if spec.MinSize > 0 && l.SizeSqm < spec.MinSize {
		return false
	}
	if spec.MinRooms > 0 && l.Rooms < spec.MinRooms {
		return false
	}

	if spec.MinEnergyRating.IsCertified() && l.EnergyRating.WorseThan(spec.MinEnergyRating) {
		return false
	}

	if spec.RequireEnergyCert && !l.EnergyRating.IsCertified() {
		return false
	}

	return true
}

// MatchesSmartFilter does case-insensitive substring matching over title and
// description. Any exclude keyword hides the listing; include keywords are OR-ed.
func MatchesSmartFilter(l entity.ListingRecord, sf *entity.SmartFilter) bool {
	if sf.IsEmpty() {
		return true
	}

	haystack := strings.ToLower(l.Title + " " + l.Description)

	for _, kw := range sf.ExcludeKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			return false
		}
	}

	if len(sf.Keywords) == 0 {
		return true
	}
	for _, kw := range sf.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

type Engine struct {
	page   output.PagePort
	logger output.LoggerPort
}

func NewEngine(page output.PagePort, logger output.LoggerPort) *Engine {
	return &Engine{
		page:   page,
		logger: logger,
	}
}

// Apply sets the visibility of every item and returns the partition counts.
// Items are updated in place so callers see the new Visible flag.
func (e *Engine) Apply(ctx context.Context, items []Item, spec entity.FilterSpec) (entity.FilterResult, error) {
	var result entity.FilterResult

	for i := range items {
		visible := Evaluate(items[i].Record, spec)
		if err := e.page.SetVisibility(ctx, items[i].Element, visible); err != nil {
			return result, fmt.Errorf("failed to set visibility of listing %s: %w", items[i].Record.ID, err)
		}
		items[i].Record.Visible = visible
		if visible {
			result.Shown++
		} else {
			result.Hidden++
		}
	}

	e.logger.Debug("filters applied",
		"shown", result.Shown,
		"hidden", result.Hidden,
	)

	return result, nil
}
