package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// ProductCache stores catalog snapshots by key
type ProductCache interface {
	// Get returns the cached product, or nil on a miss
	Get(ctx context.Context, key string) (*catalog.Product, error)
	Set(ctx context.Context, key string, product *catalog.Product, ttl time.Duration) error
}

// RedisProductCache implements ProductCache using Redis
type RedisProductCache struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisProductCache creates a cache on a shared Redis client.
// The caller retains ownership of the client.
func NewRedisProductCache(client redis.UniversalClient, logger *zap.Logger) *RedisProductCache {
	return &RedisProductCache{client: client, logger: logger}
}

// Get retrieves a product from cache
func (c *RedisProductCache) Get(ctx context.Context, key string) (*catalog.Product, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product from cache: %w", err)
	}

	var product catalog.Product
	if err := json.Unmarshal(data, &product); err != nil {
		c.logger.Warn("Dropping corrupted product cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, nil
	}
	return &product, nil
}

// Set stores a product in cache
func (c *RedisProductCache) Set(ctx context.Context, key string, product *catalog.Product, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set product in cache: %w", err)
	}
	return nil
}

type cachedProduct struct {
	product   catalog.Product
	expiresAt time.Time
}

// InMemoryProductCache implements ProductCache in process memory
type InMemoryProductCache struct {
	mu      sync.RWMutex
	entries map[string]cachedProduct
	now     func() time.Time
}

// NewInMemoryProductCache creates an empty in-memory product cache
func NewInMemoryProductCache() *InMemoryProductCache {
	return &InMemoryProductCache{
		entries: make(map[string]cachedProduct),
		now:     time.Now,
	}
}

// Get returns a copy of the cached product
func (c *InMemoryProductCache) Get(_ context.Context, key string) (*catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, nil
	}
	product := e.product
	return &product, nil
}

// Set stores a copy of product
func (c *InMemoryProductCache) Set(_ context.Context, key string, product *catalog.Product, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cachedProduct{product: *product, expiresAt: c.now().Add(ttl)}
	return nil
}

// CachedProductReader is a read-through cache in front of the catalog.
// Cache failures are logged and the catalog is read directly.
type CachedProductReader struct {
	next   catalog.ProductReader
	cache  ProductCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProductReader wraps next with cache. A non-positive ttl returns next unwrapped.
func NewCachedProductReader(next catalog.ProductReader, cache ProductCache, ttl time.Duration, logger *zap.Logger) catalog.ProductReader {
	if ttl <= 0 || cache == nil {
		return next
	}
	return &CachedProductReader{next: next, cache: cache, ttl: ttl, logger: logger}
}

// FindByID finds a product by its ID
func (r *CachedProductReader) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.read(ctx, "product:id:"+id.String(), func() (*catalog.Product, error) {
		return r.next.FindByID(ctx, id)
	})
}

// FindBySKU finds a product by SKU
func (r *CachedProductReader) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return r.read(ctx, "product:sku:"+strings.TrimSpace(sku), func() (*catalog.Product, error) {
		return r.next.FindBySKU(ctx, sku)
	})
}

func (r *CachedProductReader) read(ctx context.Context, key string, load func() (*catalog.Product, error)) (*catalog.Product, error) {
	cached, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Product cache read failed", zap.String("key", key), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	product, err := load()
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, product, r.ttl); err != nil {
		r.logger.Warn("Product cache write failed", zap.String("key", key), zap.Error(err))
	}
	return product, nil
}

// Ensure CachedProductReader implements ProductReader
var _ catalog.ProductReader = (*CachedProductReader)(nil)
