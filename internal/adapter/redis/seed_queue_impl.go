package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/repository"
)

const seedQueueKey = "harvester:seeds"

// SeedQueueRepoImpl provides a concrete implementation for the SeedQueueRepository interface using Redis Lists.
type SeedQueueRepoImpl struct {
	client *redis.Client
}

// NewSeedQueueRepo creates a new instance of SeedQueueRepoImpl.
func NewSeedQueueRepo(client *redis.Client) *SeedQueueRepoImpl {
	return &SeedQueueRepoImpl{client: client}
}

var _ repository.SeedQueueRepository = (*SeedQueueRepoImpl)(nil)

// Push adds entries to the left side of the list; Drain pops from the right.
func (r *SeedQueueRepoImpl) Push(ctx context.Context, entries ...entity.SeedEntry) error {
	if len(entries) == 0 {
		return nil
	}
	values, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	return r.client.LPush(ctx, seedQueueKey, values...).Err()
}

// Requeue pushes onto the right side so entries[0] is the next one drained.
func (r *SeedQueueRepoImpl) Requeue(ctx context.Context, entries ...entity.SeedEntry) error {
	if len(entries) == 0 {
		return nil
	}
	values, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	slices.Reverse(values)
	return r.client.RPush(ctx, seedQueueKey, values...).Err()
}

func encodeEntries(entries []entity.SeedEntry) ([]any, error) {
	values := make([]any, 0, len(entries))
	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode seed entry: %w", err)
		}
		values = append(values, b)
	}
	return values, nil
}

func (r *SeedQueueRepoImpl) Drain(ctx context.Context, max int) ([]entity.SeedEntry, error) {
	if max < 1 {
		return nil, nil
	}
	raw, err := r.client.RPopCount(ctx, seedQueueKey, max).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Popped payloads are gone from the list, so one bad payload must not cost
	// the others.
	entries := make([]entity.SeedEntry, 0, len(raw))
	var errs []error
	for _, s := range raw {
		var e entity.SeedEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			errs = append(errs, fmt.Errorf("%w %q: %w", repository.ErrMalformedSeed, s, err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, errors.Join(errs...)
}

// Size returns the current number of items in the queue.
func (r *SeedQueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, seedQueueKey).Result()
}
