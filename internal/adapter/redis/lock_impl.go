package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/user/profile-harvester/internal/repository"
)

const runLockKey = "harvester:run-lock"

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RunLockRepoImpl struct {
	client *redis.Client
}

func NewRunLockRepo(client *redis.Client) *RunLockRepoImpl {
	return &RunLockRepoImpl{client: client}
}

var _ repository.RunLockRepository = (*RunLockRepoImpl)(nil)

func (r *RunLockRepoImpl) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, runLockKey, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *RunLockRepoImpl) Release(ctx context.Context, token string) error {
	return releaseScript.Run(ctx, r.client, []string{runLockKey}, token).Err()
}
