package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayhangulbjk/ebs-insight/pkg/observability/logging"
)

// DefaultRedisTTL is applied when no TTL is configured (30 days).
const DefaultRedisTTL = 30 * 24 * time.Hour

// RedisStore persists audit records in Redis.
//
// Key patterns:
//   - {prefix}{id}          -> JSON record
//   - {prefix}index:time    -> sorted set by ReceivedAt (score = unix nano)
//   - {prefix}index:intent:{label} -> set of record IDs per classified intent
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore creates a Redis-backed audit store and verifies connectivity.
func NewRedisStore(cfg Config) (*RedisStore, error) {
	if cfg.RedisAddress == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	keyPrefix := cfg.RedisKeyPrefix
	if keyPrefix == "" {
		keyPrefix = "audit:"
	}
	ttl := cfg.RedisTTL
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		DB:       cfg.RedisDatabase,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddress, err)
	}

	logging.Infof("Redis audit store connected: %s (prefix=%s, ttl=%s)", cfg.RedisAddress, keyPrefix, ttl)
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}, nil
}

func (s *RedisStore) recordKey(id string) string { return s.keyPrefix + id }
func (s *RedisStore) timeIndexKey() string       { return s.keyPrefix + "index:time" }
func (s *RedisStore) intentIndexKey(label string) string {
	return s.keyPrefix + "index:intent:" + label
}

func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recordKey(rec.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.timeIndexKey(), redis.Z{
		Score:  float64(rec.ReceivedAt.UnixNano()),
		Member: rec.ID,
	})
	pipe.Expire(ctx, s.timeIndexKey(), s.ttl)
	if rec.IntentResult.Intent != "" {
		pipe.SAdd(ctx, s.intentIndexKey(rec.IntentResult.Intent), rec.ID)
		pipe.Expire(ctx, s.intentIndexKey(rec.IntentResult.Intent), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store audit record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit record %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit record %s: %w", id, err)
	}
	return &rec, nil
}

func (s *RedisStore) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	// Newest first from the time index; over-fetch to absorb filtering.
	ids, err := s.client.ZRevRange(ctx, s.timeIndexKey(), 0, int64(limit*4)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit time index: %w", err)
	}

	var out []*Record
	for _, id := range ids {
		if len(out) >= limit {
			break
		}
		rec, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue // expired record still in index
		}
		if err != nil {
			return nil, err
		}
		if !matches(rec, opts) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
