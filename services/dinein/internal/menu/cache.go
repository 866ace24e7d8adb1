package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
)

const (
	DefaultCacheTTL = 5 * time.Minute

	availableKey  = "dinein:menu:available"
	itemKeyPrefix = "dinein:menu:item:"
)

// NewRedisClient connects to the cache at addr and checks it answers.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cannot connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Cache is a read-through Redis cache in front of another lookup. Redis
// failures are logged and served from the inner lookup.
type Cache struct {
	inner  dining.MenuLookup
	redis  *redis.Client
	ttl    time.Duration
	logger apt.Logger
}

func NewCache(inner dining.MenuLookup, client *redis.Client, ttl time.Duration, logger apt.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Cache{
		inner:  inner,
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

func itemKey(id uuid.UUID) string {
	return itemKeyPrefix + id.String()
}

func (c *Cache) Find(ctx context.Context, id uuid.UUID) (*dining.MenuItem, error) {
	var cached dining.MenuItem
	if c.get(ctx, itemKey(id), &cached) {
		return &cached, nil
	}

	item, err := c.inner.Find(ctx, id)
	if err != nil || item == nil {
		return item, err
	}

	c.set(ctx, itemKey(id), item)
	return item, nil
}

func (c *Cache) FindAll(ctx context.Context, ids []uuid.UUID) ([]dining.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = itemKey(id)
	}

	var found []dining.MenuItem
	missing := ids

	values, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Info("menu cache read failed, falling back", "error", err)
	} else {
		missing = nil
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var item dining.MenuItem
			if err := json.Unmarshal([]byte(raw), &item); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			found = append(found, item)
		}
	}

	if len(missing) == 0 {
		return found, nil
	}

	fetched, err := c.inner.FindAll(ctx, missing)
	if err != nil {
		return nil, err
	}
	for i := range fetched {
		c.set(ctx, itemKey(fetched[i].ID), fetched[i])
	}
	return append(found, fetched...), nil
}

func (c *Cache) ListAvailable(ctx context.Context) ([]dining.MenuItem, error) {
	var cached []dining.MenuItem
	if c.get(ctx, availableKey, &cached) {
		return cached, nil
	}

	items, err := c.inner.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	c.set(ctx, availableKey, items)
	return items, nil
}

// Invalidate drops every cached entry for ids and the available listing.
func (c *Cache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	keys := []string{availableKey}
	for _, id := range ids {
		keys = append(keys, itemKey(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cannot invalidate menu cache: %w", err)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Info("menu cache read failed, falling back", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		c.logger.Info("discarding unreadable menu cache entry", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Info("menu cache write failed", "key", key, "error", err)
	}
}

// InvalidatingWriter drops the cached copy of every entry written through it.
type InvalidatingWriter struct {
	Writer dining.MenuWriter
	Cache  *Cache
}

func (w InvalidatingWriter) UpsertMenuItem(ctx context.Context, item dining.MenuItem) error {
	if err := w.Writer.UpsertMenuItem(ctx, item); err != nil {
		return err
	}
	if err := w.Cache.Invalidate(ctx, item.ID); err != nil {
		w.Cache.logger.Info("menu cache invalidation failed", "menu_item_id", item.ID.String(), "error", err)
	}
	return nil
}
