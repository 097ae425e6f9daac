package listings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/infrastructure/storage"
	"listing-assistant/internal/testutil"
	"listing-assistant/internal/usecase/detail"
	"listing-assistant/internal/usecase/filter"
	"listing-assistant/internal/usecase/session"
)

type fixture struct {
	page    *testutil.FakePage
	fetcher *testutil.FakeFetcher
	store   *session.Store
	svc     *Service
}

func newFixture(listings ...entity.ListingRecord) *fixture {
	page := testutil.NewFakePage("https://www.idealista.com/alquiler-viviendas/madrid/", listings...)
	fetcher := testutil.NewFakeFetcher()
	store := session.NewStore(storage.NewMemoryStore(), testutil.NopLogger{})
	details := detail.NewService(fetcher, store, testutil.NopLogger{}, detail.Config{BatchSize: 3})
	svc := NewService(page, filter.NewEngine(page, testutil.NopLogger{}), store, store, details, testutil.NopLogger{})
	return &fixture{page: page, fetcher: fetcher, store: store, svc: svc}
}

func TestScrape_MergesCachedDetails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(entity.ListingRecord{ID: "1", Price: 1000, SizeSqm: 50, PhotoCount: 10, OwnerType: entity.OwnerUnknown})
	require.NoError(t, f.store.CacheDetail(ctx, &entity.DetailRecord{
		ID:                "1",
		EnergyConsumption: "B",
		EnergyEmissions:   "D",
		AdvertiserType:    entity.OwnerIndividual,
		Description:       "Luminoso",
	}))

	got, err := f.svc.Listings(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, entity.EnergyRating("D"), got[0].EnergyRating)
	assert.Equal(t, entity.OwnerIndividual, got[0].OwnerType)
	assert.Equal(t, 20.0, got[0].PricePerSqm)
	assert.True(t, got[0].Visible)
}

func TestScrape_TracksPriceChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(entity.ListingRecord{ID: "1", Price: 1000, SizeSqm: 50, PhotoCount: 10})

	_, err := f.svc.Listings(ctx)
	require.NoError(t, err)

	f.page.Listings[0].Price = 900
	got, err := f.svc.Listings(ctx)
	require.NoError(t, err)

	require.NotNil(t, got[0].PriceChange)
	assert.Equal(t, -100.0, got[0].PriceChange.Delta)
}

func TestScrape_RedFlags(t *testing.T) {
	f := newFixture(
		entity.ListingRecord{ID: "1", Price: 1000, SizeSqm: 50, PhotoCount: 12},
		entity.ListingRecord{ID: "2", Price: 1100, SizeSqm: 50, PhotoCount: 12},
		entity.ListingRecord{ID: "3", Price: 1050, SizeSqm: 50, PhotoCount: 12},
		entity.ListingRecord{ID: "4", Price: 400, SizeSqm: 50, PhotoCount: 2, EnergyRating: entity.EnergyNotIndicated},
		entity.ListingRecord{ID: "5", Price: 700, PhotoCount: 8},
	)

	got, err := f.svc.Listings(context.Background())
	require.NoError(t, err)

	assert.Empty(t, got[0].RedFlags)
	assert.ElementsMatch(t, []string{FlagFewPhotos, FlagSuspiciouslyLow, FlagMissingEnergyCert}, got[3].RedFlags)
	assert.Equal(t, []string{FlagMissingSize}, got[4].RedFlags)
}

func TestApplyFilters_SmartFilterLoadsDescriptions(t *testing.T) {
	f := newFixture(
		entity.ListingRecord{ID: "1", Title: "Piso en Lavapiés"},
		entity.ListingRecord{ID: "2", Title: "Ático en Malasaña"},
	)
	f.fetcher.Details["1"] = &entity.DetailRecord{Description: "Piso muy luminoso con balcón"}
	f.fetcher.Details["2"] = &entity.DetailRecord{Description: "Interior tranquilo"}

	result, err := f.svc.ApplyFilters(context.Background(), entity.FilterSpec{
		SmartFilter: &entity.SmartFilter{Label: "luminosos", Keywords: []string{"luminoso"}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.FilterResult{Shown: 1, Hidden: 1}, result)
	assert.Equal(t, []string{"1"}, f.page.VisibleIDs())
}

func TestHighlightAndShowAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(
		entity.ListingRecord{ID: "1", Price: 500},
		entity.ListingRecord{ID: "2", Price: 2000},
		entity.ListingRecord{ID: "3", Price: 800},
	)

	n, err := f.svc.Highlight(ctx, []string{"1", "3"}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, DefaultHighlightColor, f.page.Highlights[0])

	n, err = f.svc.Highlight(ctx, []string{"2"}, "red")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[int]string{1: "red"}, f.page.Highlights)

	_, err = f.svc.ApplyFilters(ctx, entity.FilterSpec{MaxPrice: 1000})
	require.NoError(t, err)
	assert.Len(t, f.page.VisibleIDs(), 2)

	restored, err := f.svc.ShowAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, restored)
	assert.Len(t, f.page.VisibleIDs(), 3)
	assert.Empty(t, f.page.Highlights)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]entity.ListingRecord{
		{Price: 800, SizeSqm: 40, OwnerType: entity.OwnerAgency, EnergyRating: "E", Visible: true},
		{Price: 1200, SizeSqm: 80, OwnerType: entity.OwnerIndividual, Visible: true, RedFlags: []string{FlagFewPhotos}},
		{OwnerType: ""},
	})

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Visible)
	assert.Equal(t, 1, s.Hidden)
	assert.Equal(t, &entity.Range{Min: 800, Max: 1200, Avg: 1000}, s.PriceRange)
	assert.Equal(t, 60.0, s.SizeRange.Avg)
	assert.Equal(t, 1, s.ByOwnerType["unknown"])
	assert.Equal(t, map[string]int{"E": 1}, s.ByEnergyRating)
	assert.Equal(t, 1, s.WithRedFlags)
}
