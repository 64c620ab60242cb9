package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStatsStore serves canned aggregates and counts compute calls.
type fakeStatsStore struct {
	stats    models.DashboardStats
	computes int
	err      error
}

func (f *fakeStatsStore) CountItems(ctx context.Context) (int, error) {
	f.computes++
	return f.stats.TotalItems, f.err
}

func (f *fakeStatsStore) SumTotalQuantity(ctx context.Context) (int, error) {
	return f.stats.TotalQuantity, f.err
}

func (f *fakeStatsStore) CategoryQuantities(ctx context.Context) ([]models.CategoryStats, error) {
	return f.stats.CategoryWiseQuantity, f.err
}

func (f *fakeStatsStore) TopSeller(ctx context.Context) (*models.TopSeller, error) {
	return f.stats.HighestSellItem, f.err
}

func (f *fakeStatsStore) HighestOrderAmount(ctx context.Context) (int64, error) {
	return f.stats.HighestOrderAmount, f.err
}

func (f *fakeStatsStore) TotalOrderAmount(ctx context.Context) (int64, error) {
	return f.stats.TotalOrderAmount, f.err
}

// fakeCache is a map-backed StatsCache.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func cannedStats() models.DashboardStats {
	return models.DashboardStats{
		TotalItems:    3,
		TotalQuantity: 120,
		CategoryWiseQuantity: []models.CategoryStats{
			{Category: models.CategoryTiles, TotalQuantity: 80},
			{Category: models.CategoryBathTub, TotalQuantity: 30},
			{Category: models.CategoryWashBasin, TotalQuantity: 10},
		},
		HighestSellItem:    &models.TopSeller{Name: "Glossy White", TotalSold: 42},
		HighestOrderAmount: 250000,
		TotalOrderAmount:   975000,
	}
}

func TestStatsComputesOnMiss(t *testing.T) {
	store := &fakeStatsStore{stats: cannedStats()}
	svc := NewDashboardService(store, newFakeCache(), time.Minute)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 120, stats.TotalQuantity)
	require.NotNil(t, stats.HighestSellItem)
	assert.Equal(t, "Glossy White", stats.HighestSellItem.Name)
	assert.Equal(t, 1, store.computes)
}

func TestStatsServedFromCache(t *testing.T) {
	store := &fakeStatsStore{stats: cannedStats()}
	svc := NewDashboardService(store, newFakeCache(), time.Minute)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, stats.TotalQuantity)
	// The second call never touched the store.
	assert.Equal(t, 1, store.computes)
}

func TestStatsInvalidateForcesRecompute(t *testing.T) {
	store := &fakeStatsStore{stats: cannedStats()}
	svc := NewDashboardService(store, newFakeCache(), time.Minute)

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, store.computes)

	svc.Invalidate(context.Background())

	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	// The cached copy was dropped, so the store was hit again.
	assert.Equal(t, 2, store.computes)
}

func TestStatsCacheErrorFallsThrough(t *testing.T) {
	store := &fakeStatsStore{stats: cannedStats()}
	cache := newFakeCache()
	cache.getErr = fmt.Errorf("connection refused")
	svc := NewDashboardService(store, cache, time.Minute)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 1, store.computes)
}

func TestStatsNilCache(t *testing.T) {
	store := &fakeStatsStore{stats: cannedStats()}
	svc := NewDashboardService(store, nil, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := svc.Stats(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, store.computes)
}

func TestStatsCategorySumMatchesTotal(t *testing.T) {
	store := &fakeStatsStore{stats: cannedStats()}
	svc := NewDashboardService(store, nil, time.Minute)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	sum := 0
	for _, c := range stats.CategoryWiseQuantity {
		sum += c.TotalQuantity
	}
	assert.Equal(t, stats.TotalQuantity, sum)
}

func TestStatsStoreErrorPropagates(t *testing.T) {
	store := &fakeStatsStore{err: fmt.Errorf("db down")}
	svc := NewDashboardService(store, nil, time.Minute)

	_, err := svc.Stats(context.Background())
	assert.Error(t, err)
}

func TestStatsEmptyDatabase(t *testing.T) {
	store := &fakeStatsStore{}
	svc := NewDashboardService(store, nil, time.Minute)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Zero(t, stats.TotalItems)
	assert.Nil(t, stats.HighestSellItem)
	assert.NotNil(t, stats.CategoryWiseQuantity)
	assert.Empty(t, stats.CategoryWiseQuantity)
}
