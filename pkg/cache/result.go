package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// RouteCache специализированный кэш для результатов роутинга
type RouteCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedRouteResult кэшированный результат запуска
type CachedRouteResult struct {
	Iterations      int                       `json:"iterations"`
	Conflicts       int                       `json:"conflicts"`
	TotalWireUse    int                       `json:"total_wire_use"`
	WireReuse       float32                   `json:"wire_reuse"`
	LongestPathCost float32                   `json:"longest_path_cost"`
	Routing         []*fabric.RoutingExpanded `json:"routing"`
	ComputedAt      time.Time                 `json:"computed_at"`
}

// NewRouteCache создаёт кэш для результатов роутинга
func NewRouteCache(cache Cache, defaultTTL time.Duration) *RouteCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &RouteCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный результат
func (rc *RouteCache) Get(ctx context.Context, key string) (*CachedRouteResult, bool, error) {
	data, err := rc.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedRouteResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Повреждённая запись, забываем её
		rc.cache.Delete(ctx, key)
		return nil, false, nil
	}
	return &result, true, nil
}

// Put сохраняет результат
func (rc *RouteCache) Put(ctx context.Context, key string, result *CachedRouteResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return rc.cache.Set(ctx, key, data, rc.defaultTTL)
}
