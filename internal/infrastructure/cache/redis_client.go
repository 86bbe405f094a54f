package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"habitat_payments/internal/config"
)

const (
	keyNamespace      = "pay"
	idempotencyPrefix = "idempotency"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// IdempotencyStore binds client idempotency keys to the intent they created.
type IdempotencyStore struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// NewIdempotencyStore connects to Redis and verifies connectivity.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig) (*IdempotencyStore, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &IdempotencyStore{store: raw, raw: raw, ttl: cfg.IdempotencyTTL}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	return opts, nil
}

// Lookup returns the intent bound to key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.store == nil {
		return "", false, errors.New("redis client not initialized")
	}
	intentID, err := s.store.Get(ctx, s.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return intentID, true, nil
}

// Reserve binds key to intentID unless the key is already bound. It returns
// false when another request got there first.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, intentID string) (bool, error) {
	if s == nil || s.store == nil {
		return false, errors.New("redis client not initialized")
	}
	return s.store.SetNX(ctx, s.Key(key), intentID, s.ttl).Result()
}

// Release drops the binding so the key can be used again.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if s == nil || s.store == nil {
		return errors.New("redis client not initialized")
	}
	return s.store.Del(ctx, s.Key(key)).Err()
}

// Key returns the namespaced Redis key for an idempotency key.
func (s *IdempotencyStore) Key(key string) string {
	return strings.Join([]string{keyNamespace, idempotencyPrefix, strings.TrimSpace(key)}, ":")
}

func (s *IdempotencyStore) Ping(ctx context.Context) error {
	if s == nil || s.store == nil {
		return errors.New("redis client not initialized")
	}
	return s.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (s *IdempotencyStore) Close() error {
	if s == nil || s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
