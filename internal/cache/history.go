package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HistoryCache holds raw survey_history bodies per WordPress user.
type HistoryCache interface {
	Get(ctx context.Context, userID int64) ([]byte, bool, error)
	Set(ctx context.Context, userID int64, body []byte) error
	Invalidate(ctx context.Context, userID int64) error
	Ping(ctx context.Context) error
}

type redisHistoryCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisHistoryCache(client redis.UniversalClient, ttl time.Duration) HistoryCache {
	return &redisHistoryCache{client: client, ttl: ttl}
}

func HistoryKey(userID int64) string {
	return fmt.Sprintf("survey:history:%d", userID)
}

func (c *redisHistoryCache) Get(ctx context.Context, userID int64) ([]byte, bool, error) {
	body, err := c.client.Get(ctx, HistoryKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get history cache: %w", err)
	}
	return body, true, nil
}

func (c *redisHistoryCache) Set(ctx context.Context, userID int64, body []byte) error {
	if err := c.client.Set(ctx, HistoryKey(userID), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("set history cache: %w", err)
	}
	return nil
}

func (c *redisHistoryCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, HistoryKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate history cache: %w", err)
	}
	return nil
}

func (c *redisHistoryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Noop is used when Redis is not configured. Every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, int64) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, int64, []byte) error          { return nil }
func (Noop) Invalidate(context.Context, int64) error           { return nil }
func (Noop) Ping(context.Context) error                        { return nil }
