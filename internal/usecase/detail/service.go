package detail

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

const (
	DefaultBatchSize  = 3
	DefaultBatchDelay = 1500 * time.Millisecond
	MaxBulkIDs        = 30
	descriptionLimit  = 500
)

// Cache is the part of the persistence adapter the service needs.
type Cache interface {
	CachedDetail(ctx context.Context, id string) (*entity.DetailRecord, bool, error)
	CacheDetail(ctx context.Context, d *entity.DetailRecord) error
}

// Result is one entry of a bulk fetch. Exactly one of Detail and Error is set.
type Result struct {
	ID     string               `json:"id"`
	Detail *entity.DetailRecord `json:"detail,omitempty"`
	Error  string               `json:"error,omitempty"`
	Cached bool                 `json:"cached,omitempty"`
}

type Config struct {
	BatchSize  int
	BatchDelay time.Duration
}

type Service struct {
	fetcher output.DetailFetcher
	cache   Cache
	logger  output.LoggerPort
	config  Config
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewService(fetcher output.DetailFetcher, cache Cache, logger output.LoggerPort, config Config) *Service {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.BatchDelay < 0 {
		config.BatchDelay = DefaultBatchDelay
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
		config:  config,
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the detail record for id, hitting the network only on a cache miss.
func (s *Service) Get(ctx context.Context, id string) (*entity.DetailRecord, error) {
	if d, ok, err := s.cache.CachedDetail(ctx, id); err != nil {
		s.logger.Warn("detail cache read failed", "id", id, "error", err)
	} else if ok {
		return d, nil
	}

	d, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.CacheDetail(ctx, d); err != nil {
		s.logger.Warn("detail cache write failed", "id", id, "error", err)
	}
	return d, nil
}

func (s *Service) fetch(ctx context.Context, id string) (*entity.DetailRecord, error) {
	d, err := s.fetcher.FetchListingDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing %s: %w", id, err)
	}
	d.ID = id
	if r := []rune(d.Description); len(r) > descriptionLimit {
		d.Description = string(r[:descriptionLimit])
	}
	return d, nil
}

// GetMany fetches up to MaxBulkIDs records; extra ids are dropped.
func (s *Service) GetMany(ctx context.Context, ids []string) ([]Result, error) {
	ids = dedupe(ids)
	if len(ids) > MaxBulkIDs {
		s.logger.Info("bulk detail request truncated", "requested", len(ids), "limit", MaxBulkIDs)
		ids = ids[:MaxBulkIDs]
	}
	return s.FetchAll(ctx, ids)
}

// FetchAll fetches every id. Cached ids are served directly; misses are
// fetched in sequential batches, concurrently inside a batch, with a pause
// between batches. A failed id does not fail the others.
func (s *Service) FetchAll(ctx context.Context, ids []string) ([]Result, error) {
	ids = dedupe(ids)

	results := make([]Result, len(ids))
	var misses []int
	for i, id := range ids {
		results[i].ID = id
		d, ok, err := s.cache.CachedDetail(ctx, id)
		if err != nil {
			s.logger.Warn("detail cache read failed", "id", id, "error", err)
		}
		if ok {
			results[i].Detail = d
			results[i].Cached = true
			continue
		}
		misses = append(misses, i)
	}

	for start := 0; start < len(misses); start += s.config.BatchSize {
		if start > 0 {
			if err := s.sleep(ctx, s.config.BatchDelay); err != nil {
				return results, err
			}
		}

		end := min(start+s.config.BatchSize, len(misses))
		if err := s.fetchBatch(ctx, ids, misses[start:end], results); err != nil {
			return results, err
		}
	}

	s.logger.Debug("bulk detail fetch completed",
		"requested", len(ids),
		"fetched", len(misses),
	)

	return results, nil
}

func (s *Service) fetchBatch(ctx context.Context, ids []string, batch []int, results []Result) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.BatchSize)

	for _, idx := range batch {
		idx := idx
		g.Go(func() error {
			d, err := s.fetch(gctx, ids[idx])
			if err != nil {
				results[idx].Error = err.Error()
				return nil
			}
			results[idx].Detail = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, idx := range batch {
		if results[idx].Detail == nil {
			continue
		}
		if err := s.cache.CacheDetail(ctx, results[idx].Detail); err != nil {
			s.logger.Warn("detail cache write failed", "id", ids[idx], "error", err)
		}
	}
	return nil
}

// EnsureDescriptionsLoaded fetches details for listings that have no
// description yet, so text predicates see the full ad.
func (s *Service) EnsureDescriptionsLoaded(ctx context.Context, listings []entity.ListingRecord) (map[string]*entity.DetailRecord, error) {
	var missing []string
	for _, l := range listings {
		if l.Description == "" && l.ID != "" {
			missing = append(missing, l.ID)
		}
	}

	out := make(map[string]*entity.DetailRecord, len(missing))
	if len(missing) == 0 {
		return out, nil
	}

	results, err := s.FetchAll(ctx, missing)
	for _, r := range results {
		if r.Detail != nil {
			out[r.ID] = r.Detail
		}
	}
	return out, err
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
