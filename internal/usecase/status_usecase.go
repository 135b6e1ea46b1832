package usecase

import (
	"context"
	"errors"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/repository"
)

// StatusService reports what is known about a single profile URL.
type StatusService interface {
	GetStatus(ctx context.Context, url string) (*entity.TargetStatus, error)
}

type statusUseCase struct {
	profileRepo   repository.ProfileRepository
	failedRepo    repository.FailedTargetRepository
	harvestedRepo repository.HarvestedRepository
}

func NewStatusService(
	profileRepo repository.ProfileRepository,
	failedRepo repository.FailedTargetRepository,
	harvestedRepo repository.HarvestedRepository,
) StatusService {
	return &statusUseCase{
		profileRepo:   profileRepo,
		failedRepo:    failedRepo,
		harvestedRepo: harvestedRepo,
	}
}

func (uc *statusUseCase) GetStatus(ctx context.Context, url string) (*entity.TargetStatus, error) {
	rec, err := uc.profileRepo.FindByURL(ctx, url)
	switch {
	case err == nil:
		return &entity.TargetStatus{
			URL:           url,
			CurrentStatus: entity.StatusHarvested,
			ScrapedAt:     &rec.ScrapedAt,
		}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	failed, err := uc.failedRepo.FindByURL(ctx, url)
	switch {
	case err == nil:
		return &entity.TargetStatus{
			URL:           url,
			CurrentStatus: entity.StatusFailed,
			FailureReason: failed.FailureReason,
			AttemptCount:  failed.AttemptCount,
		}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	// Marked harvested but the record is gone, e.g. a store error after the mark.
	harvested, err := uc.harvestedRepo.IsHarvested(ctx, url)
	if err != nil {
		return nil, err
	}
	if harvested {
		return &entity.TargetStatus{URL: url, CurrentStatus: entity.StatusPending}, nil
	}

	return &entity.TargetStatus{URL: url, CurrentStatus: entity.StatusNotFound}, nil
}
