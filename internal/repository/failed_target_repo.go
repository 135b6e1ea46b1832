package repository

import (
	"context"

	"github.com/user/profile-harvester/internal/entity"
)

// FailedTargetRepository defines the interface for targets whose last extraction failed.
type FailedTargetRepository interface {
	// SaveOrUpdate creates or updates a record for a failed target, incrementing its attempt count.
	SaveOrUpdate(ctx context.Context, failed *entity.FailedTarget) error
	// FindByURL returns ErrNotFound when the target has no failure on record.
	FindByURL(ctx context.Context, url string) (*entity.FailedTarget, error)
	// Delete removes a failed target record, typically after a successful extraction.
	Delete(ctx context.Context, url string) error
}
