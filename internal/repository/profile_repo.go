package repository

import (
	"context"

	"github.com/user/profile-harvester/internal/entity"
)

// ProfileRepository is the Sink for successfully extracted records.
type ProfileRepository interface {
	// Upsert stores the record keyed by its URL, overwriting any earlier record.
	Upsert(ctx context.Context, record *entity.ExtractedRecord) error
	// FindByURL returns ErrNotFound when no record exists.
	FindByURL(ctx context.Context, url string) (*entity.ExtractedRecord, error)
}
