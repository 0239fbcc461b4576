package port

import "context"

type CacheRepository interface {
	// ReserveIdempotencyKey sets the key if absent, returns false if it already exists
	ReserveIdempotencyKey(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotencyKey frees a key so the same request can be retried
	ReleaseIdempotencyKey(ctx context.Context, key string) error
}
