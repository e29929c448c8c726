package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"djrating/internal/microservices/http-api/models"

	"github.com/redis/go-redis/v9"
)

// RatingCache holds read-through snapshots of DJ records, including their
// derived rating fields. A nil client turns every call into a no-op miss.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	return &RatingCache{client: client, ttl: ttl}
}

// NewRedisClient connects and pings; callers fall back to a nil client on error.
func NewRedisClient(ctx context.Context, redisURL, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func djCacheKey(djID int64) string {
	return fmt.Sprintf("dj:%d:snapshot", djID)
}

// Snapshots live in a hash of {v: aggregate version, data: json}. A write
// only lands when its version is newer than the stored one.
var setIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'v')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'data', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// Get returns the cached DJ, or nil on a miss.
func (c *RatingCache) Get(ctx context.Context, djID int64) (*models.DJ, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	raw, err := c.client.HGet(ctx, djCacheKey(djID), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dj models.DJ
	if err := json.Unmarshal(raw, &dj); err != nil {
		// corrupt entry, drop it and report a miss
		_ = c.client.Del(ctx, djCacheKey(djID)).Err()
		return nil, nil
	}
	return &dj, nil
}

// Set stores dj unless the cache already holds the same or a newer
// AggregateVersion.
func (c *RatingCache) Set(ctx context.Context, dj *models.DJ) error {
	if c == nil || c.client == nil || dj == nil {
		return nil
	}
	payload, err := json.Marshal(dj)
	if err != nil {
		return err
	}
	return setIfNewer.Run(ctx, c.client,
		[]string{djCacheKey(dj.ID)},
		dj.AggregateVersion, payload, c.ttl.Milliseconds(),
	).Err()
}
