package repository

import (
	"context"
	"time"
)

// HarvestedRepository remembers which targets were harvested recently.
type HarvestedRepository interface {
	MarkHarvested(ctx context.Context, url string, expiry time.Duration) error
	IsHarvested(ctx context.Context, url string) (bool, error)
}

// RunLockRepository serializes harvest runs across triggers and processes.
type RunLockRepository interface {
	// Acquire returns a token and true when the lock was taken.
	Acquire(ctx context.Context, ttl time.Duration) (string, bool, error)
	// Release frees the lock only if token still owns it.
	Release(ctx context.Context, token string) error
}
