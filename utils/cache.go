package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"easyticket/config"

	"github.com/redis/go-redis/v9"
)

var cacheClient *redis.Client

// CatalogKey is the cache key for an event's ticket-type listing.
func CatalogKey(eventID uint) string {
	return fmt.Sprintf("catalog:event:%d:ticket-types", eventID)
}

// ConnectCache dials redis if REDIS_ADDR is set. Without it every cache call
// is a no-op and reads fall through to the database.
func ConnectCache() {
	addr := config.Config("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, catalog cache disabled")
		return
	}
	cacheClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Config("REDIS_PASSWORD"),
	})
	if err := cacheClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unreachable, catalog cache disabled: %v", err)
		cacheClient = nil
	}
}

// CacheGet unmarshals a cached value into dest, reporting whether it was hit.
func CacheGet(ctx context.Context, key string, dest any) bool {
	if cacheClient == nil {
		return false
	}
	raw, err := cacheClient.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// CacheSet stores a value with a TTL. Failures are logged, never fatal.
func CacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if cacheClient == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := cacheClient.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

// CacheInvalidate drops keys after a catalog write.
func CacheInvalidate(ctx context.Context, keys ...string) {
	if cacheClient == nil || len(keys) == 0 {
		return
	}
	if err := cacheClient.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache invalidate: %v", err)
	}
}
