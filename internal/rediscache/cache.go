// Package rediscache is a shared alternative to the SQLite payload cache,
// holding raw backend bodies in Redis with a TTL per kind.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/c-tram/cycle-splits/internal/model"
)

// TTL constants
const (
	PayloadTTL  = 6 * time.Hour
	BaselineTTL = 24 * time.Hour
)

// Cache stores payload and baseline bodies in Redis.
type Cache struct {
	client *redis.Client
}

// New wraps an existing client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Open connects to the Redis instance at url (redis://host:port/db) and
// checks it answers.
func Open(ctx context.Context, url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client), nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}

func payloadKey(sel model.Selection) string {
	return fmt.Sprintf("splits:payload:%s:%s:%d", sel.Team, sel.PlayerID, sel.Season)
}

func baselineKey(season int) string {
	return fmt.Sprintf("splits:baseline:%d", season)
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

// GetPayload returns the cached macro-split body for sel.
func (c *Cache) GetPayload(ctx context.Context, sel model.Selection) ([]byte, bool, error) {
	return c.get(ctx, payloadKey(sel))
}

// PutPayload stores the macro-split body for sel for PayloadTTL.
func (c *Cache) PutPayload(ctx context.Context, sel model.Selection, body []byte) error {
	return c.client.Set(ctx, payloadKey(sel), body, PayloadTTL).Err()
}

// DeletePayload evicts sel's body and reports whether one was cached.
func (c *Cache) DeletePayload(ctx context.Context, sel model.Selection) (bool, error) {
	n, err := c.client.Del(ctx, payloadKey(sel)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

// GetBaseline returns the cached baseline body for season.
func (c *Cache) GetBaseline(ctx context.Context, season int) ([]byte, bool, error) {
	return c.get(ctx, baselineKey(season))
}

// PutBaseline stores the baseline body for season for BaselineTTL.
func (c *Cache) PutBaseline(ctx context.Context, season int, body []byte) error {
	return c.client.Set(ctx, baselineKey(season), body, BaselineTTL).Err()
}
