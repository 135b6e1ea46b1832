package repository

import (
	"context"

	"github.com/user/profile-harvester/internal/entity"
)

// SeedQueueRepository defines a FIFO queue of seed entries awaiting a run.
type SeedQueueRepository interface {
	Push(ctx context.Context, entries ...entity.SeedEntry) error
	// Requeue returns drained entries to the front of the queue, in order.
	Requeue(ctx context.Context, entries ...entity.SeedEntry) error
	// Drain removes and returns up to max entries from the front of the queue.
	// Undecodable payloads are dropped and reported with ErrMalformedSeed
	// alongside the entries that did decode.
	Drain(ctx context.Context, max int) ([]entity.SeedEntry, error)
	Size(ctx context.Context) (int64, error)
}
