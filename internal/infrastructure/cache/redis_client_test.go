package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"habitat_payments/internal/config"
)

func TestIdempotencyReserveAndLookup(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := &IdempotencyStore{store: mock, ttl: time.Hour}

	if _, found, err := store.Lookup(ctx, "key-1"); err != nil || found {
		t.Fatalf("expected empty lookup, got found=%v err=%v", found, err)
	}

	reserved, err := store.Reserve(ctx, "key-1", "pi_1")
	if err != nil || !reserved {
		t.Fatalf("expected first reserve to win, got reserved=%v err=%v", reserved, err)
	}
	if mock.ttls["pay:idempotency:key-1"] != time.Hour {
		t.Fatalf("expected ttl to be applied, got %v", mock.ttls["pay:idempotency:key-1"])
	}

	reserved, err = store.Reserve(ctx, "key-1", "pi_2")
	if err != nil || reserved {
		t.Fatalf("expected second reserve to lose, got reserved=%v err=%v", reserved, err)
	}

	intentID, found, err := store.Lookup(ctx, "key-1")
	if err != nil || !found || intentID != "pi_1" {
		t.Fatalf("expected pi_1, got id=%q found=%v err=%v", intentID, found, err)
	}

	if err := store.Release(ctx, "key-1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, found, _ := store.Lookup(ctx, "key-1"); found {
		t.Fatalf("expected key to be released")
	}
}

func TestIdempotencyLookupError(t *testing.T) {
	mock := newMockCmdable()
	mock.getErr = fmt.Errorf("connection reset")
	store := &IdempotencyStore{store: mock}

	if _, _, err := store.Lookup(context.Background(), "key-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestIdempotencyKey(t *testing.T) {
	store := &IdempotencyStore{}
	if got := store.Key(" abc "); got != "pay:idempotency:abc" {
		t.Fatalf("unexpected key %s", got)
	}
}

func TestUninitializedStore(t *testing.T) {
	var store *IdempotencyStore
	if _, err := store.Reserve(context.Background(), "k", "pi"); err == nil {
		t.Fatalf("expected error on nil store")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close on nil store should be a no-op, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@localhost:6380/2", DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 2 || opts.Password != "secret" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.DialTimeout != time.Second {
		t.Fatalf("expected dial timeout from config, got %v", opts.DialTimeout)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.DB != 1 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
