package service

import (
	"context"
	"fmt"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

const statsCacheKey = "dashboard:stats"

// StatsStore provides the read-side aggregates for the dashboard.
type StatsStore interface {
	CountItems(ctx context.Context) (int, error)
	SumTotalQuantity(ctx context.Context) (int, error)
	CategoryQuantities(ctx context.Context) ([]models.CategoryStats, error)
	TopSeller(ctx context.Context) (*models.TopSeller, error)
	HighestOrderAmount(ctx context.Context) (int64, error)
	TotalOrderAmount(ctx context.Context) (int64, error)
}

// StatsCache is a best-effort cache; any error falls through to the
// database.
type StatsCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// DashboardService computes dashboard statistics. Pure read/derive:
// every statistic is recomputed from the full data set, independently,
// on each (uncached) call.
type DashboardService struct {
	store  StatsStore
	cache  StatsCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardService creates a new dashboard aggregator. cache may be
// nil to disable caching entirely.
func NewDashboardService(store StatsStore, cache StatsCache, ttl time.Duration) *DashboardService {
	return &DashboardService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

// Stats returns the dashboard payload, serving a recent copy from the
// cache when one exists.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	ctx, span := util.StartSpan(ctx, "DashboardService.Stats")
	defer span.End()

	if s.cache != nil {
		var cached models.DashboardStats
		hit, err := s.cache.GetJSON(ctx, statsCacheKey, &cached)
		if err != nil {
			s.logger.Warn("Stats cache read failed", zap.Error(err))
		} else if hit {
			util.DashboardCacheHits.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		util.DashboardCacheHits.WithLabelValues("miss").Inc()
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, stats, s.ttl); err != nil {
			s.logger.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate drops the cached payload so the next Stats call
// recomputes. Called after stock- or order-changing operations; a
// failed invalidation only means the stale copy lives out its TTL.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("Stats cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) compute(ctx context.Context) (*models.DashboardStats, error) {
	totalItems, err := s.store.CountItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	totalQuantity, err := s.store.SumTotalQuantity(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum quantities: %w", err)
	}

	categories, err := s.store.CategoryQuantities(ctx)
	if err != nil {
		return nil, fmt.Errorf("category quantities: %w", err)
	}

	topSeller, err := s.store.TopSeller(ctx)
	if err != nil {
		return nil, fmt.Errorf("top seller: %w", err)
	}

	highest, err := s.store.HighestOrderAmount(ctx)
	if err != nil {
		return nil, fmt.Errorf("highest order amount: %w", err)
	}

	total, err := s.store.TotalOrderAmount(ctx)
	if err != nil {
		return nil, fmt.Errorf("total order amount: %w", err)
	}

	if categories == nil {
		categories = []models.CategoryStats{}
	}

	return &models.DashboardStats{
		TotalItems:           totalItems,
		TotalQuantity:        totalQuantity,
		CategoryWiseQuantity: categories,
		HighestSellItem:      topSeller,
		HighestOrderAmount:   highest,
		TotalOrderAmount:     total,
	}, nil
}
