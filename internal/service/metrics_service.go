package service

import (
	"context"

	"go.uber.org/zap"

	"evcharge/internal/models"
	"evcharge/internal/repository"
)

// MetricsStore aggregates station numbers from persistence.
type MetricsStore interface {
	Metrics(ctx context.Context, filter repository.MetricsFilter) (*models.Metrics, error)
}

// MetricsCache stores metric snapshots keyed by filter. A cache miss returns
// (nil, nil).
type MetricsCache interface {
	Get(ctx context.Context, key string) (*models.Metrics, error)
	Set(ctx context.Context, key string, metrics *models.Metrics) error
}

// MetricsService serves fleet metrics, fronted by an optional cache.
type MetricsService struct {
	store  MetricsStore
	cache  MetricsCache
	logger *zap.Logger
}

// NewMetricsService builds MetricsService. cache may be nil.
func NewMetricsService(store MetricsStore, cache MetricsCache, logger *zap.Logger) *MetricsService {
	return &MetricsService{store: store, cache: cache, logger: logger}
}

// Get returns aggregated metrics for the filtered station set. Cache failures
// fall through to the store; a stale cache is preferable to a failed request.
func (s *MetricsService) Get(ctx context.Context, filter repository.MetricsFilter) (*models.Metrics, error) {
	key := cacheKey(filter)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("metrics cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	metrics, err := s.store.Metrics(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, metrics); err != nil {
			s.logger.Warn("metrics cache write failed", zap.Error(err))
		}
	}
	return metrics, nil
}

func cacheKey(filter repository.MetricsFilter) string {
	key := "status=" + filter.Status + "|location=" + filter.Location
	if filter.From != nil {
		key += "|from=" + filter.From.Format("2006-01-02")
	}
	if filter.To != nil {
		key += "|to=" + filter.To.Format("2006-01-02")
	}
	return key
}
