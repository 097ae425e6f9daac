package output

import (
	"context"

	"listing-assistant/internal/domain/entity"
)

type DetailFetcher interface {
	FetchListingDetail(ctx context.Context, id string) (*entity.DetailRecord, error)
}
