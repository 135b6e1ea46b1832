package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/repository"
)

// FailedTargetRepoImpl provides a concrete implementation for the FailedTargetRepository interface using PostgreSQL.
type FailedTargetRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedTargetRepo creates a new instance of FailedTargetRepoImpl.
func NewFailedTargetRepo(db *pgxpool.Pool) *FailedTargetRepoImpl {
	return &FailedTargetRepoImpl{db: db}
}

var _ repository.FailedTargetRepository = (*FailedTargetRepoImpl)(nil)

// SaveOrUpdate increments attempt_count on conflict.
func (r *FailedTargetRepoImpl) SaveOrUpdate(ctx context.Context, failed *entity.FailedTarget) error {
	query := `
		INSERT INTO failed_targets (url, failure_reason, error_message, last_attempt_timestamp, attempt_count)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (url) DO UPDATE SET
			failure_reason = EXCLUDED.failure_reason,
			error_message = EXCLUDED.error_message,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp,
			attempt_count = failed_targets.attempt_count + 1;
	`
	_, err := r.db.Exec(ctx, query,
		failed.URL,
		failed.FailureReason,
		failed.ErrorMessage,
		failed.LastAttemptTimestamp,
	)
	return err
}

func (r *FailedTargetRepoImpl) FindByURL(ctx context.Context, url string) (*entity.FailedTarget, error) {
	query := `
		SELECT id, url, failure_reason, error_message, last_attempt_timestamp, attempt_count
		FROM failed_targets
		WHERE url = $1;
	`
	var ft entity.FailedTarget
	err := r.db.QueryRow(ctx, query, url).Scan(
		&ft.ID,
		&ft.URL,
		&ft.FailureReason,
		&ft.ErrorMessage,
		&ft.LastAttemptTimestamp,
		&ft.AttemptCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

// Delete removes a failed target record, typically after a successful extraction.
func (r *FailedTargetRepoImpl) Delete(ctx context.Context, url string) error {
	query := `DELETE FROM failed_targets WHERE url = $1;`
	_, err := r.db.Exec(ctx, query, url)
	return err
}
