package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/monitoring"
	"github.com/user/profile-harvester/internal/repository"
)

// HarvestService is the invocation surface shared by the HTTP, cron and CLI
// triggers. It owns persistence of pipeline results.
type HarvestService interface {
	RunHarvest(ctx context.Context, seeds []entity.Seed, concurrency int) (*HarvestResult, error)
	RunQueued(ctx context.Context) (*HarvestResult, error)
	Enqueue(ctx context.Context, entries ...entity.SeedEntry) error
}

type HarvestResult struct {
	Report        *entity.HarvestReport
	Stored        int
	StoreFailures int
}

type HarvestOptions struct {
	DefaultConcurrency int
	// RunTimeout is the wall-clock ceiling of a run; zero disables it.
	RunTimeout    time.Duration
	HarvestedTTL  time.Duration
	LockTTL       time.Duration
	QueueDrainMax int
}

type harvestUseCase struct {
	pipeline      Pipeline
	profileRepo   repository.ProfileRepository
	failedRepo    repository.FailedTargetRepository
	harvestedRepo repository.HarvestedRepository
	lockRepo      repository.RunLockRepository
	queueRepo     repository.SeedQueueRepository
	opts          HarvestOptions
	metrics       *monitoring.Metrics
	logger        *zap.Logger
}

// NewHarvestService creates a new instance of the harvest use case.
func NewHarvestService(
	pipeline Pipeline,
	profileRepo repository.ProfileRepository,
	failedRepo repository.FailedTargetRepository,
	harvestedRepo repository.HarvestedRepository,
	lockRepo repository.RunLockRepository,
	queueRepo repository.SeedQueueRepository,
	opts HarvestOptions,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) HarvestService {
	if opts.DefaultConcurrency < 1 {
		opts.DefaultConcurrency = 2
	}
	if opts.QueueDrainMax < 1 {
		opts.QueueDrainMax = 1000
	}
	return &harvestUseCase{
		pipeline:      pipeline,
		profileRepo:   profileRepo,
		failedRepo:    failedRepo,
		harvestedRepo: harvestedRepo,
		lockRepo:      lockRepo,
		queueRepo:     queueRepo,
		opts:          opts,
		metrics:       metrics,
		logger:        logger.With(zap.String("component", "harvest-service")),
	}
}

// RunHarvest runs the pipeline under the run lock and persists its results.
// A concurrency of zero means the configured default.
func (uc *harvestUseCase) RunHarvest(ctx context.Context, seeds []entity.Seed, concurrency int) (*HarvestResult, error) {
	if concurrency == 0 {
		concurrency = uc.opts.DefaultConcurrency
	}
	if concurrency < 1 {
		return nil, ErrInvalidConcurrency
	}

	token, ok, err := uc.lockRepo.Acquire(ctx, uc.opts.LockTTL)
	if err != nil {
		uc.metrics.IncRun("failed")
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		uc.metrics.IncRun("skipped")
		return nil, ErrRunInProgress
	}
	defer func() {
		// Released on a fresh context so an expired run deadline cannot leak the lock.
		if err := uc.lockRepo.Release(context.WithoutCancel(ctx), token); err != nil {
			uc.logger.Warn("failed to release run lock", zap.Error(err))
		}
	}()

	runCtx := ctx
	if uc.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, uc.opts.RunTimeout)
		defer cancel()
	}

	report, err := uc.pipeline.Run(runCtx, seeds, concurrency)
	if err != nil {
		uc.metrics.IncRun("failed")
		return nil, err
	}
	uc.metrics.IncRun("completed")

	res := &HarvestResult{Report: report}
	uc.persist(context.WithoutCancel(ctx), res)
	return res, nil
}

func (uc *harvestUseCase) persist(ctx context.Context, res *HarvestResult) {
	for _, rec := range res.Report.Records() {
		if err := uc.profileRepo.Upsert(ctx, rec); err != nil {
			res.StoreFailures++
			uc.metrics.IncStoreErrors("profiles")
			uc.logger.Error("failed to store record", zap.String("url", rec.URL), zap.Error(err))
			continue
		}
		res.Stored++

		// If the target previously failed, drop it from the failed table.
		if err := uc.failedRepo.Delete(ctx, rec.URL); err != nil {
			uc.logger.Warn("failed to clear failed target after success", zap.String("url", rec.URL), zap.Error(err))
		}
		if err := uc.harvestedRepo.MarkHarvested(ctx, rec.URL, uc.opts.HarvestedTTL); err != nil {
			uc.logger.Warn("failed to mark target harvested", zap.String("url", rec.URL), zap.Error(err))
		}
	}

	for _, f := range res.Report.Failures {
		failed := &entity.FailedTarget{
			URL:                  f.URL,
			FailureReason:        f.Reason,
			ErrorMessage:         f.Error,
			LastAttemptTimestamp: res.Report.FinishedAt,
		}
		if err := uc.failedRepo.SaveOrUpdate(ctx, failed); err != nil {
			uc.metrics.IncStoreErrors("failed_targets")
			uc.logger.Error("failed to record failed target", zap.String("url", f.URL), zap.Error(err))
		}
	}
}

// RunQueued drains the seed queue and harvests it. An empty queue is a no-op
// and returns a nil result.
func (uc *harvestUseCase) RunQueued(ctx context.Context) (*HarvestResult, error) {
	entries, err := uc.queueRepo.Drain(ctx, uc.opts.QueueDrainMax)
	switch {
	case errors.Is(err, repository.ErrMalformedSeed):
		uc.logger.Warn("dropped malformed queued seeds", zap.Int("kept", len(entries)), zap.Error(err))
	case err != nil:
		return nil, fmt.Errorf("drain seed queue: %w", err)
	}
	uc.refreshQueueGauge(ctx)
	if len(entries) == 0 {
		uc.logger.Debug("seed queue empty, nothing to harvest")
		return nil, nil
	}

	seeds, skipped := entity.ExpandEntries(entries)
	if skipped > 0 {
		uc.logger.Warn("skipped empty seed entries", zap.Int("skipped", skipped))
	}

	res, err := uc.RunHarvest(ctx, seeds, 0)
	if errors.Is(err, ErrRunInProgress) || errors.Is(err, ErrInfrastructure) {
		// Nothing ran; put the entries back for the next trigger.
		if perr := uc.queueRepo.Requeue(context.WithoutCancel(ctx), entries...); perr != nil {
			uc.logger.Error("failed to requeue seed entries", zap.Int("entries", len(entries)), zap.Error(perr))
		}
		uc.refreshQueueGauge(ctx)
	}
	return res, err
}

func (uc *harvestUseCase) Enqueue(ctx context.Context, entries ...entity.SeedEntry) error {
	if err := uc.queueRepo.Push(ctx, entries...); err != nil {
		return fmt.Errorf("push seed entries: %w", err)
	}
	uc.refreshQueueGauge(ctx)
	return nil
}

func (uc *harvestUseCase) refreshQueueGauge(ctx context.Context) {
	if n, err := uc.queueRepo.Size(ctx); err == nil {
		uc.metrics.SetSeedsInQueue(n)
	}
}
