package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Coordinator groups cached list payloads under organization-scoped tags so
// the write path can drop every cached variant with a single invalidation,
// regardless of which parameter combination produced each entry.
type Coordinator interface {
	// Tag derives the invalidation tag for a resource kind within an
	// organization. Same inputs always yield the same tag, so readers and
	// writers agree without coordination.
	Tag(kind, organizationID string, extra ...string) string
	// Key derives the storage key for one parameter combination under a tag.
	Key(tag string, parts ...string) string
	Fetch(ctx context.Context, key string, target interface{}) (bool, error)
	Store(ctx context.Context, tag, key string, payload interface{}) error
	// Invalidate drops every entry registered under the tag. Best-effort
	// eventual: readers already in flight may still observe stale data, the
	// next read after invalidation will not.
	Invalidate(ctx context.Context, tag string) error
}

type redisCoordinator struct {
	client  *redis.Client
	bus     *nats.Conn
	subject string
	ttl     time.Duration
	logger  zerolog.Logger
}

// NewRedisCoordinator builds a Coordinator backed by Redis. When a NATS
// connection is supplied, every invalidation is also published on subject so
// downstream readers with their own caches can revalidate.
func NewRedisCoordinator(client *redis.Client, bus *nats.Conn, subject string, ttl time.Duration, logger zerolog.Logger) Coordinator {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisCoordinator{
		client:  client,
		bus:     bus,
		subject: strings.TrimSpace(subject),
		ttl:     ttl,
		logger:  logger.With().Str("component", "cache_coordinator").Logger(),
	}
}

func (c *redisCoordinator) Tag(kind, organizationID string, extra ...string) string {
	parts := append([]string{"tag", kind, organizationID}, extra...)
	return strings.Join(parts, ":")
}

func (c *redisCoordinator) Key(tag string, parts ...string) string {
	return tag + "|" + strings.Join(parts, "|")
}

func (c *redisCoordinator) Fetch(ctx context.Context, key string, target interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		// A corrupt entry behaves like a miss; the next Store repairs it.
		c.logger.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		return false, nil
	}
	return true, nil
}

func (c *redisCoordinator) Store(ctx context.Context, tag, key string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, raw, c.ttl)
		pipe.SAdd(ctx, memberSetKey(tag), key)
		// The member set outlives its entries slightly so invalidation can
		// still enumerate keys that expired on their own.
		pipe.Expire(ctx, memberSetKey(tag), 2*c.ttl)
		return nil
	})
	return err
}

func (c *redisCoordinator) Invalidate(ctx context.Context, tag string) error {
	members, err := c.client.SMembers(ctx, memberSetKey(tag)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := append(members, memberSetKey(tag))
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}

	if c.bus != nil && c.subject != "" {
		if err := c.bus.Publish(c.subject, []byte(tag)); err != nil {
			c.logger.Warn().Err(err).Str("tag", tag).Msg("failed to publish invalidation event")
		}
	}

	return nil
}

func memberSetKey(tag string) string {
	return tag + ":members"
}
