package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KH-Co/Bari-Foods/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client), mr
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Wild Honey", Price: decimal.RequireFromString("349.00"), Weight: "500 g"},
		{ID: 2, Name: "Turmeric Powder", Price: decimal.RequireFromString("89.00"), Weight: "200 g"},
	}
}

func TestGetProducts_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	data, _ := json.Marshal(sampleProducts())
	mr.Set(cacheKey("products"), string(data))

	result, err := cache.GetProducts(ctx, "products")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "Wild Honey", result[0].Name)
	assert.True(t, result[0].Price.Equal(decimal.RequireFromString("349.00")))
}

func TestGetProducts_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	result, err := cache.GetProducts(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGetProducts_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)

	data, err := json.Marshal(sampleProducts())
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey("products"), string(data[0:10])))

	_, cacheErr := cache.GetProducts(context.Background(), "products")
	require.ErrorContains(t, cacheErr, "unmarshal products failed")
}

func TestSetProducts_StoresWithTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.SetProducts(ctx, "products", sampleProducts()))

	stored, err := mr.Get(cacheKey("products"))
	require.NoError(t, err)
	var products []domain.Product
	require.NoError(t, json.Unmarshal([]byte(stored), &products))
	assert.Len(t, products, 2)

	ttl := mr.TTL(cacheKey("products"))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestDelete_RemovesKey(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.SetProducts(ctx, "products", sampleProducts()))
	assert.True(t, mr.Exists(cacheKey("products")))

	require.NoError(t, cache.Delete(ctx, "products"))
	assert.False(t, mr.Exists(cacheKey("products")))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _ := setupTestRedis(t)

	assert.NoError(t, cache.Delete(context.Background(), "nonexistent"))
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "catalog:products", cacheKey("products"))
}
