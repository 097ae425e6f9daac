package idealista

import (
	"context"
	"errors"
	"fmt"
	"time"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/domain/entity"
)

// HTMLFetcher is satisfied by both the browser page and HTTPFetcher.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

var DefaultRetry = RetryConfig{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}

// DetailClient fetches and parses listing detail pages.
type DetailClient struct {
	fetcher HTMLFetcher
	urls    *URLBuilder
	retry   RetryConfig
	logger  output.LoggerPort
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewDetailClient(fetcher HTMLFetcher, urls *URLBuilder, retry RetryConfig, logger output.LoggerPort) *DetailClient {
	if retry.MaxAttempts < 1 {
		retry = DefaultRetry
	}
	return &DetailClient{
		fetcher: fetcher,
		urls:    urls,
		retry:   retry,
		logger:  logger,
		sleep:   sleepContext,
	}
}

func (c *DetailClient) FetchListingDetail(ctx context.Context, id string) (*entity.DetailRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("empty listing id")
	}
	url := c.urls.DetailURL(id)

	var page string
	err := c.do(ctx, "fetch "+url, func() error {
		var err error
		page, err = c.fetcher.FetchHTML(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	detail, err := ParseDetailPage(page, id)
	if err != nil {
		return nil, fmt.Errorf("parse detail %s: %w", id, err)
	}
	return detail, nil
}

// do runs fn with exponential back-off. Only transient failures are retried.
func (c *DetailClient) do(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	delay := c.retry.BaseDelay

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == c.retry.MaxAttempts {
			break
		}

		c.logger.Warn("retrying",
			"operation", op,
			"attempt", attempt,
			"max_attempts", c.retry.MaxAttempts,
			"delay", delay.String(),
			"error", lastErr.Error(),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}

	return fmt.Errorf("%s: %w", op, lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
