package cache

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/metrics"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "vlinks:link:"

// LinkSource источник ссылок за кэшем
type LinkSource interface {
	ResolveLink(ctx context.Context, videoSlug, label string) (*domain.Link, error)
}

// LinkCache read-through кэш разрешения (slug, label) в ссылку.
// Ошибки Redis не влияют на результат: запрос уходит в хранилище.
type LinkCache struct {
	client *redis.Client
	source LinkSource
	ttl    time.Duration
	log    *zap.Logger
}

func NewLinkCache(client *redis.Client, source LinkSource, ttl time.Duration, log *zap.Logger) *LinkCache {
	return &LinkCache{
		client: client,
		source: source,
		ttl:    ttl,
		log:    log,
	}
}

func linkKey(videoSlug, label string) string {
	return keyPrefix + videoSlug + ":" + label
}

func (c *LinkCache) ResolveLink(ctx context.Context, videoSlug, label string) (*domain.Link, error) {
	key := linkKey(videoSlug, label)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var link domain.Link
		if err := json.Unmarshal(data, &link); err == nil {
			metrics.LinkCacheHits.Inc()
			return &link, nil
		}
		c.log.Warn("corrupt link cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("link cache read failed", zap.String("key", key), zap.Error(err))
	}
	metrics.LinkCacheMisses.Inc()

	link, err := c.source.ResolveLink(ctx, videoSlug, label)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(link); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("link cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return link, nil
}

// InvalidateLink удаляет одну запись
func (c *LinkCache) InvalidateLink(ctx context.Context, videoSlug, label string) {
	if err := c.client.Del(ctx, linkKey(videoSlug, label)).Err(); err != nil {
		c.log.Warn("link cache invalidation failed",
			zap.String("video_slug", videoSlug),
			zap.String("label", label),
			zap.Error(err))
	}
}

// InvalidateVideo удаляет все записи видео
func (c *LinkCache) InvalidateVideo(ctx context.Context, videoSlug string) {
	if err := c.deleteMatching(ctx, linkKey(videoSlug, "*")); err != nil {
		c.log.Warn("link cache invalidation failed", zap.String("video_slug", videoSlug), zap.Error(err))
	}
}

func (c *LinkCache) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping проверяет соединение с Redis
func (c *LinkCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
