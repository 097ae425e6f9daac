package detail

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-assistant/internal/domain/entity"
	"listing-assistant/internal/infrastructure/storage"
	"listing-assistant/internal/testutil"
	"listing-assistant/internal/usecase/session"
)

type recordingSleep struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
	return nil
}

func newTestService(fetcher *testutil.FakeFetcher) (*Service, *session.Store, *recordingSleep) {
	store := session.NewStore(storage.NewMemoryStore(), testutil.NopLogger{})
	svc := NewService(fetcher, store, testutil.NopLogger{}, Config{BatchSize: 3, BatchDelay: 1500 * time.Millisecond})
	rs := &recordingSleep{}
	svc.sleep = rs.sleep
	return svc, store, rs
}

func fetcherWith(n int) *testutil.FakeFetcher {
	f := testutil.NewFakeFetcher()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%d", i)
		f.Details[id] = &entity.DetailRecord{ID: id, EnergyConsumption: "D", Description: "Piso " + id}
	}
	return f
}

func TestGet_CacheFirst(t *testing.T) {
	ctx := context.Background()
	f := fetcherWith(1)
	svc, _, _ := newTestService(f)

	first, err := svc.Get(ctx, "0")
	require.NoError(t, err)
	second, err := svc.Get(ctx, "0")
	require.NoError(t, err)

	assert.Equal(t, []string{"0"}, f.Calls())
	assert.Equal(t, first.Description, second.Description)
}

func TestGet_TruncatesDescription(t *testing.T) {
	f := testutil.NewFakeFetcher()
	f.Details["9"] = &entity.DetailRecord{Description: strings.Repeat("á", 800)}
	svc, _, _ := newTestService(f)

	d, err := svc.Get(context.Background(), "9")
	require.NoError(t, err)
	assert.Len(t, []rune(d.Description), 500)
	assert.Equal(t, "9", d.ID)
}

func TestGetMany_BatchesWithDelay(t *testing.T) {
	f := fetcherWith(7)
	f.Delay = 10 * time.Millisecond
	svc, _, rs := newTestService(f)

	ids := []string{"0", "1", "2", "3", "4", "5", "6", "3"}
	results, err := svc.GetMany(context.Background(), ids)
	require.NoError(t, err)

	require.Len(t, results, 7)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("%d", i), r.ID)
		assert.NotNil(t, r.Detail)
	}
	assert.LessOrEqual(t, f.PeakConcurrency(), 3)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond, 1500 * time.Millisecond}, rs.calls)
}

func TestGetMany_ServesCacheAndIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	f := fetcherWith(2)
	svc, store, rs := newTestService(f)
	require.NoError(t, store.CacheDetail(ctx, &entity.DetailRecord{ID: "cached", EnergyRating: "A"}))

	results, err := svc.GetMany(ctx, []string{"cached", "0", "missing", "1"})
	require.NoError(t, err)

	assert.True(t, results[0].Cached)
	assert.NotNil(t, results[1].Detail)
	assert.Contains(t, results[2].Error, "missing")
	assert.Nil(t, results[2].Detail)
	assert.NotNil(t, results[3].Detail)
	assert.Empty(t, rs.calls, "three misses fit in one batch")

	_, ok, err := store.CachedDetail(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetMany_CapsIDs(t *testing.T) {
	f := fetcherWith(40)
	svc, _, _ := newTestService(f)

	ids := make([]string, 40)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i)
	}
	results, err := svc.GetMany(context.Background(), ids)
	require.NoError(t, err)

	assert.Len(t, results, MaxBulkIDs)
	assert.Len(t, f.Calls(), MaxBulkIDs)
}

func TestEnsureDescriptionsLoaded(t *testing.T) {
	f := fetcherWith(3)
	svc, _, _ := newTestService(f)

	listings := []entity.ListingRecord{
		{ID: "0"},
		{ID: "1", Description: "ya cargada"},
		{ID: "2"},
	}
	got, err := svc.EnsureDescriptionsLoaded(context.Background(), listings)
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"0", "2"}, f.Calls())
}

func TestEnsureDescriptionsLoaded_ThrottlesAcrossWholeSet(t *testing.T) {
	f := fetcherWith(35)
	svc, _, rs := newTestService(f)

	listings := make([]entity.ListingRecord, 35)
	for i := range listings {
		listings[i] = entity.ListingRecord{ID: fmt.Sprintf("%d", i)}
	}
	got, err := svc.EnsureDescriptionsLoaded(context.Background(), listings)
	require.NoError(t, err)

	assert.Len(t, got, 35)
	assert.Len(t, f.Calls(), 35)
	// 35 misses in batches of 3 give 12 batches and a pause before each but the first.
	require.Len(t, rs.calls, 11)
	for _, d := range rs.calls {
		assert.Equal(t, 1500*time.Millisecond, d)
	}
}

func TestFetchAll_IsNotCapped(t *testing.T) {
	f := fetcherWith(40)
	svc, _, _ := newTestService(f)

	ids := make([]string, 40)
	for i := range ids {
		ids[i] = fmt.Sprintf("%d", i)
	}
	results, err := svc.FetchAll(context.Background(), ids)
	require.NoError(t, err)

	assert.Len(t, results, 40)
}
