package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

var _ output.DetailFetcher = (*FakeFetcher)(nil)

// FakeFetcher serves detail records from a map and tracks peak concurrency.
type FakeFetcher struct {
	Details map[string]*entity.DetailRecord
	Delay   time.Duration

	mu       sync.Mutex
	calls    []string
	inFlight int
	peak     int
}

func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{Details: make(map[string]*entity.DetailRecord)}
}

func (f *FakeFetcher) FetchListingDetail(ctx context.Context, id string) (*entity.DetailRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d, ok := f.Details[id]
	if !ok {
		return nil, fmt.Errorf("listing %s not found", id)
	}
	cp := *d
	return &cp, nil
}

func (f *FakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeFetcher) PeakConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}
