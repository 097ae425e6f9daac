package enrich

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/infrastructure/storage"
	"listing-assistant/internal/testutil"
	"listing-assistant/internal/usecase/detail"
	"listing-assistant/internal/usecase/filter"
	"listing-assistant/internal/usecase/listings"
	"listing-assistant/internal/usecase/session"
)

func TestBadgeEnricher_Run(t *testing.T) {
	page := testutil.NewFakePage("https://www.idealista.com/",
		entity.ListingRecord{ID: "1", EnergyRating: "C"},
		entity.ListingRecord{ID: "2"},
		entity.ListingRecord{ID: "3"},
		entity.ListingRecord{ID: "4"},
	)
	fetcher := testutil.NewFakeFetcher()
	fetcher.Details["2"] = &entity.DetailRecord{EnergyConsumption: "E", EnergyEmissions: "F"}
	fetcher.Details["3"] = &entity.DetailRecord{EnergyStatus: entity.EnergyExempt}

	store := session.NewStore(storage.NewMemoryStore(), testutil.NopLogger{})
	details := detail.NewService(fetcher, store, testutil.NopLogger{}, detail.Config{BatchSize: 3})
	scraper := listings.NewService(page, filter.NewEngine(page, testutil.NopLogger{}), store, store, details, testutil.NopLogger{})

	n, err := NewBadgeEnricher(page, scraper, details, testutil.NopLogger{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t, map[int]entity.EnergyRating{
		0: "C",
		1: "F",
		2: entity.EnergyExempt,
	}, page.Badges)
	assert.ElementsMatch(t, []string{"2", "3", "4"}, fetcher.Calls())
}

type recordingBulk struct {
	calls [][]string
}

func (r *recordingBulk) FetchAll(_ context.Context, ids []string) ([]detail.Result, error) {
	r.calls = append(r.calls, ids)
	out := make([]detail.Result, len(ids))
	for i, id := range ids {
		out[i] = detail.Result{ID: id, Detail: &entity.DetailRecord{ID: id, EnergyConsumption: "B"}}
	}
	return out, nil
}

func TestBadgeEnricher_FetchesAllMissingInOneThrottledRun(t *testing.T) {
	cards := make([]entity.ListingRecord, 35)
	for i := range cards {
		cards[i] = entity.ListingRecord{ID: fmt.Sprintf("%d", i)}
	}
	page := testutil.NewFakePage("https://www.idealista.com/", cards...)
	store := session.NewStore(storage.NewMemoryStore(), testutil.NopLogger{})
	bulk := &recordingBulk{}
	scraper := listings.NewService(page, filter.NewEngine(page, testutil.NopLogger{}), store, store, nil, testutil.NopLogger{})

	n, err := NewBadgeEnricher(page, scraper, bulk, testutil.NopLogger{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 35, n)
	require.Len(t, bulk.calls, 1)
	assert.Len(t, bulk.calls[0], 35)
}
