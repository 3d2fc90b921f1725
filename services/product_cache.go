package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ravinder1302/ARS-Kart/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"
	defaultCacheTTL        = 5 * time.Minute
)

// productCache is a read-through cache for the catalog. A nil receiver
// disables caching entirely, so the service works without Redis.
// List entries are keyed by a version counter; any catalog write bumps the
// version, which invalidates every cached list at once.
type productCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func newProductCache(client *redis.Client) *productCache {
	if client == nil {
		return nil
	}
	return &productCache{redis: client, ttl: defaultCacheTTL}
}

func (pc *productCache) version(ctx context.Context) int64 {
	val, err := pc.redis.Get(ctx, cacheVersionKey).Result()
	if err == redis.Nil {
		// First use; seed the counter.
		if err := pc.redis.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0
		}
		return 1
	}
	if err != nil {
		return 0
	}
	v, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (pc *productCache) listKey(version int64, page, limit int, category, search string) string {
	return fmt.Sprintf("%s%d:page:%d:limit:%d:cat:%s:q:%s", productListCachePrefix, version, page, limit, category, search)
}

func (pc *productCache) GetList(ctx context.Context, page, limit int, category, search string) (*ProductListResponse, bool) {
	if pc == nil {
		return nil, false
	}
	version := pc.version(ctx)
	if version == 0 {
		return nil, false
	}

	data, err := pc.redis.Get(ctx, pc.listKey(version, page, limit, category, search)).Result()
	if err != nil {
		return nil, false
	}

	var response ProductListResponse
	if err := json.Unmarshal([]byte(data), &response); err != nil {
		zap.L().Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return &response, true
}

// GetProduct returns the cached detail record for id, if present.
func (pc *productCache) GetProduct(ctx context.Context, id string) (*models.Product, bool) {
	if pc == nil {
		return nil, false
	}
	data, err := pc.redis.Get(ctx, productCachePrefix+id).Result()
	if err != nil {
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		zap.L().Warn("Failed to unmarshal cached product", zap.String("product_id", id), zap.Error(err))
		return nil, false
	}
	return &product, true
}

// SetProductAsync caches a product detail record without blocking the request.
func (pc *productCache) SetProductAsync(id string, product *models.Product) {
	if pc == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		data, err := json.Marshal(product)
		if err != nil {
			return
		}
		if err := pc.redis.Set(ctx, productCachePrefix+id, data, pc.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product", zap.String("product_id", id), zap.Error(err))
		}
	}()
}

// SetListAsync caches a product list without blocking the request.
func (pc *productCache) SetListAsync(page, limit int, category, search string, response *ProductListResponse) {
	if pc == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version := pc.version(ctx)
		if version == 0 {
			return
		}
		data, err := json.Marshal(response)
		if err != nil {
			return
		}
		if err := pc.redis.Set(ctx, pc.listKey(version, page, limit, category, search), data, pc.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// Invalidate bumps the list version and drops the detail entry for id.
func (pc *productCache) Invalidate(ctx context.Context, id string) {
	if pc == nil {
		return
	}
	if err := pc.redis.Incr(ctx, cacheVersionKey).Err(); err != nil {
		zap.L().Warn("Failed to bump product cache version", zap.Error(err))
	}
	if id != "" {
		if err := pc.redis.Del(ctx, productCachePrefix+id).Err(); err != nil {
			zap.L().Warn("Failed to drop cached product", zap.Error(err))
		}
	}
}
