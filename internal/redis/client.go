package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const tokenKeyPrefix = "auth:token:"

// Client wraps the Redis connection used as the issued-token store. Keys
// expire with the same TTL as the JWT itself, so Redis lifetime and token
// lifetime can never drift apart.
type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) SaveToken(tokenID string, ttl time.Duration) error {
	ctx := context.Background()
	return c.rdb.Set(ctx, tokenKeyPrefix+tokenID, time.Now().Unix(), ttl).Err()
}

func (c *Client) TokenExists(tokenID string) (bool, error) {
	ctx := context.Background()
	n, err := c.rdb.Exists(ctx, tokenKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}

func (c *Client) RevokeToken(tokenID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, tokenKeyPrefix+tokenID).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
