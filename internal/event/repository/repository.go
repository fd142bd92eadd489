package repository

import (
	"context"
	"time"

	"f3-catalog/backend/internal/event/domain"
)

// Repository persists series and instances.
type Repository interface {
	// GetSeries returns a domainerr not-found error when the series does not exist.
	GetSeries(ctx context.Context, id int64) (*domain.Series, error)
	// SaveSeries applies and clears the series' pending change records; a created series gets its id.
	SaveSeries(ctx context.Context, s *domain.Series) error
	GetInstance(ctx context.Context, id int64) (*domain.Instance, error)
	SaveInstance(ctx context.Context, i *domain.Instance) error
	// ReplaceFutureInstances deletes the series' generated instances dated on or after from and inserts
	// drafts in their place, in one transaction. It returns the number of inserted instances.
	ReplaceFutureInstances(ctx context.Context, seriesID int64, from time.Time, drafts []domain.InstanceDraft) (int, error)
	// DeactivateFutureInstances deactivates the series' active instances dated on or after from.
	DeactivateFutureInstances(ctx context.Context, seriesID int64, from time.Time) (int, error)
	// ListSeriesInstances returns the series' instances (active and inactive) in date order.
	ListSeriesInstances(ctx context.Context, seriesID int64) ([]*domain.Instance, error)
}
