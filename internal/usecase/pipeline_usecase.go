package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/repository"
	"github.com/user/profile-harvester/pkg/executor"
)

// Pipeline runs seeds through discovery, deduplication and extraction. Each
// phase settles completely before the next one starts.
type Pipeline interface {
	Run(ctx context.Context, seeds []entity.Seed, concurrency int) (*entity.HarvestReport, error)
}

type harvestPipeline struct {
	browser    repository.Browser
	discoverer *Discoverer
	extractor  *Extractor
	logger     *zap.Logger
	now        func() time.Time
	newRunID   func() string
}

func NewPipeline(browser repository.Browser, discoverer *Discoverer, extractor *Extractor, logger *zap.Logger) Pipeline {
	return &harvestPipeline{
		browser:    browser,
		discoverer: discoverer,
		extractor:  extractor,
		logger:     logger.With(zap.String("component", "pipeline")),
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

func partitionSeeds(seeds []entity.Seed) (direct []entity.CandidateTarget, searches []string) {
	for _, s := range seeds {
		switch s.Kind {
		case entity.SeedDirect:
			direct = append(direct, entity.CandidateTarget{URL: s.URL})
		case entity.SeedSearch:
			searches = append(searches, s.URL)
		}
	}
	return direct, searches
}

// Run returns either a complete report or a run-level error, never both.
func (p *harvestPipeline) Run(ctx context.Context, seeds []entity.Seed, concurrency int) (*entity.HarvestReport, error) {
	if concurrency < 1 {
		return nil, ErrInvalidConcurrency
	}
	runID := p.newRunID()
	started := p.now().UTC()
	log := p.logger.With(zap.String("run_id", runID))

	session, err := p.browser.Open(ctx)
	if err != nil {
		log.Error("could not establish browser context", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInfrastructure, err)
	}
	defer session.Close()
	gated := newGatedSession(session, concurrency)

	direct, searches := partitionSeeds(seeds)
	log.Info("harvest started",
		zap.Int("direct_seeds", len(direct)),
		zap.Int("search_seeds", len(searches)),
		zap.Int("concurrency", concurrency),
	)

	discovered, stats, err := p.discover(ctx, gated, searches, concurrency)
	if err != nil {
		return nil, err
	}
	if err := runDeadline(ctx); err != nil {
		return nil, err
	}

	targets := DedupeTargets(append(direct, discovered...))
	stats.UniqueTargets = len(targets)

	results, err := executor.Run(ctx, targets, concurrency, func(ctx context.Context, t entity.CandidateTarget) (entity.TaskOutcome, error) {
		return p.extractor.Extract(ctx, gated, t), nil
	})
	if err != nil {
		return nil, err
	}
	if err := runDeadline(ctx); err != nil {
		return nil, err
	}

	outcomes := make([]entity.TaskOutcome, len(results))
	for i, r := range results {
		outcomes[i] = r.Value
		if !r.OK() {
			outcomes[i] = entity.Failed(r.Input, failureFromTaskError(ctx, r.Err), r.Err)
		}
	}

	report := entity.NewHarvestReport(runID, outcomes, stats)
	report.StartedAt = started
	report.FinishedAt = p.now().UTC()

	log.Info("harvest finished",
		zap.Int("total", report.Total),
		zap.Int("successes", report.Succeeded),
		zap.Int("failures", report.Failed),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (p *harvestPipeline) discover(ctx context.Context, session repository.BrowserSession, searches []string, concurrency int) ([]entity.CandidateTarget, entity.DiscoveryStats, error) {
	stats := entity.DiscoveryStats{Searches: len(searches)}
	if len(searches) == 0 {
		return nil, stats, nil
	}

	results, err := executor.Run(ctx, searches, concurrency, func(ctx context.Context, searchURL string) (*Discovery, error) {
		return p.discoverer.Discover(ctx, session, searchURL, concurrency)
	})
	if err != nil {
		return nil, stats, err
	}

	var candidates []entity.CandidateTarget
	for _, r := range results {
		if !r.OK() {
			stats.FailedSearches++
			p.logger.Warn("search discovery failed", zap.String("search_url", r.Input), zap.Error(r.Err))
			continue
		}
		d := r.Value
		stats.Pages += d.Pages
		stats.FailedPages += d.FailedPages
		if d.Degraded {
			stats.DegradedSearches++
		}
		candidates = append(candidates, d.Candidates...)
	}
	stats.Candidates = len(candidates)
	return candidates, stats, nil
}

// runDeadline reports an exhausted wall-clock ceiling. A plain cancellation is
// not a deadline: the tasks it interrupted are already recorded as canceled.
func runDeadline(ctx context.Context) error {
	if err := ctx.Err(); errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrRunDeadline, err)
	}
	return nil
}

func failureFromTaskError(ctx context.Context, err error) string {
	var pe *executor.PanicError
	switch {
	case errors.As(err, &pe):
		return entity.ReasonParseFailed
	case ctx.Err() != nil:
		return entity.ReasonCanceled
	default:
		return entity.ReasonNavigationFailed
	}
}
