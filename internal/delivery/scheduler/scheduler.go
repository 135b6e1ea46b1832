// Package scheduler triggers queued harvest runs on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/user/profile-harvester/internal/usecase"
)

type Scheduler struct {
	cron      *cron.Cron
	harvester usecase.HarvestService
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New registers the harvest job on the cron schedule. Overlapping ticks are skipped.
func New(schedule string, harvester usecase.HarvestService, logger *zap.Logger) (*Scheduler, error) {
	logger = logger.With(zap.String("component", "scheduler"))
	cl := cronLogger{logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		harvester: harvester,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid harvest schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop cancels an in-flight run and waits for it to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduled run did not finish before shutdown")
	}
}

// RunOnce drains the seed queue into one harvest run.
func (s *Scheduler) RunOnce(ctx context.Context) {
	res, err := s.harvester.RunQueued(ctx)
	switch {
	case errors.Is(err, usecase.ErrRunInProgress):
		s.logger.Info("skipping scheduled harvest, another run holds the lock")
	case err != nil:
		s.logger.Error("scheduled harvest failed", zap.Error(err))
	case res == nil:
		s.logger.Debug("scheduled harvest found no queued seeds")
	default:
		s.logger.Info("scheduled harvest finished",
			zap.String("run_id", res.Report.RunID),
			zap.Int("total", res.Report.Total),
			zap.Int("successes", res.Report.Succeeded),
			zap.Int("failures", res.Report.Failed),
			zap.Int("stored", res.Stored),
		)
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) fields(keysAndValues []any) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, l.fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(l.fields(keysAndValues), zap.Error(err))...)
}
