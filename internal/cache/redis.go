package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "proofguard/pkg/domain-errors"
	"proofguard/pkg/sentinel"
)

// Redis is the cluster-wide Cache implementation. A missing key surfaces as
// sentinel.ErrNotFound; every other failure is a collaborator error the
// caller must treat as a hard failure.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (c *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "cache get failed")
	}
	return val, nil
}

func (c *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "cache set failed")
	}
	return nil
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "cache delete failed")
	}
	return nil
}
