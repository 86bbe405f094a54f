package interfaces

import "context"

// IIdempotencyStore binds client idempotency keys to intent ids.
type IIdempotencyStore interface {
	Lookup(ctx context.Context, key string) (intentID string, found bool, err error)
	Reserve(ctx context.Context, key, intentID string) (bool, error)
	Release(ctx context.Context, key string) error
}
