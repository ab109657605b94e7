package database

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"api/config"
	"api/metrics"

	"github.com/redis/go-redis/v9"
)

var Cache *redis.Client

// InitCache initializes the redis client used for short-lived listing caches.
// The API stays functional without redis; cache helpers degrade to misses.
func InitCache() {
	Cache = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddress,
		Password: config.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Cache.Ping(ctx).Err(); err != nil {
		log.Println("Redis unavailable, listing cache disabled: ", err)
		Cache = nil
	}
}

// CacheGetJSON fetches a cached JSON value into dest, returning false on a miss
func CacheGetJSON(ctx context.Context, key string, dest interface{}) bool {
	if Cache == nil {
		return false
	}

	payload, err := Cache.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheMisses.Inc()
		return false
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		metrics.CacheMisses.Inc()
		return false
	}

	metrics.CacheHits.Inc()
	return true
}

// CacheSetJSON stores a JSON value with a TTL, ignoring cache failures
func CacheSetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if Cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := Cache.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Println("Failed to write listing cache: ", err)
	}
}

// CacheInvalidate drops a cached key, ignoring cache failures
func CacheInvalidate(ctx context.Context, key string) {
	if Cache == nil {
		return
	}
	if err := Cache.Del(ctx, key).Err(); err != nil {
		log.Println("Failed to invalidate listing cache: ", err)
	}
}
