package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/profile-harvester/internal/repository"
	"github.com/user/profile-harvester/pkg/utils"
)

const harvestedURLPrefix = "harvested:"

// HarvestedRepoImpl provides a concrete implementation for the HarvestedRepository interface using Redis.
type HarvestedRepoImpl struct {
	client *redis.Client
}

// NewHarvestedRepo creates a new instance of HarvestedRepoImpl.
func NewHarvestedRepo(client *redis.Client) *HarvestedRepoImpl {
	return &HarvestedRepoImpl{client: client}
}

var _ repository.HarvestedRepository = (*HarvestedRepoImpl)(nil)

func (r *HarvestedRepoImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", harvestedURLPrefix, utils.HashURL(url))
}

// MarkHarvested sets the marker with an expiry in one SETEX.
func (r *HarvestedRepoImpl) MarkHarvested(ctx context.Context, url string, expiry time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(url), "1", expiry).Err()
}

func (r *HarvestedRepoImpl) IsHarvested(ctx context.Context, url string) (bool, error) {
	val, err := r.client.Exists(ctx, r.generateKey(url)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}
