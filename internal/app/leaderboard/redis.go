package leaderboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"server-tonix-app/internal/model"
)

const cacheKey = "tonix:leaderboard"

type RedisCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, key: cacheKey, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) ([]model.LeaderboardEntry, bool, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}
	var entries []model.LeaderboardEntry
	if err = json.Unmarshal(data, &entries); err != nil {
		return nil, false, errors.Wrap(err, "decode cached leaderboard")
	}
	return entries, true, nil
}

func (c *RedisCache) Set(ctx context.Context, entries []model.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "encode leaderboard")
	}
	return errors.Wrap(c.rdb.Set(ctx, c.key, data, c.ttl).Err(), "redis set")
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return errors.Wrap(c.rdb.Del(ctx, c.key).Err(), "redis del")
}
