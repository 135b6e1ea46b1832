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

var errMissingName = errors.New("profile name not found")

// Timeouts bound each page render.
type Timeouts struct {
	Navigation time.Duration
	Ready      time.Duration
}

var DefaultTimeouts = Timeouts{Navigation: 30 * time.Second, Ready: 10 * time.Second}

// Extractor turns one target into a record or a typed failure.
type Extractor struct {
	parser   repository.ProfileParser
	timeouts Timeouts
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewExtractor(parser repository.ProfileParser, timeouts Timeouts, metrics *monitoring.Metrics, logger *zap.Logger) *Extractor {
	return &Extractor{
		parser:   parser,
		timeouts: timeouts,
		metrics:  metrics,
		logger:   logger.With(zap.String("component", "extractor")),
		now:      time.Now,
	}
}

// Extract never returns an error: every problem becomes a Failure outcome.
func (e *Extractor) Extract(ctx context.Context, session repository.BrowserSession, target entity.CandidateTarget) (outcome entity.TaskOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = entity.Failed(target, entity.ReasonParseFailed, fmt.Errorf("parser panicked: %v", r))
		}
		e.observe(outcome, time.Since(start))
	}()

	page, err := session.Render(ctx, target.URL, repository.RenderOptions{
		ReadySelector:     e.parser.ReadySelector(),
		NavigationTimeout: e.timeouts.Navigation,
		ReadyTimeout:      e.timeouts.Ready,
	})
	if err != nil {
		return entity.Failed(target, FailureReason(ctx, err), err)
	}

	fields := e.parser.ParseProfile(page)
	if fields.Name == nil {
		return entity.Failed(target, entity.ReasonMissingName, errMissingName)
	}
	return entity.Succeeded(target, BuildRecord(target.URL, fields, e.now().UTC()))
}

func (e *Extractor) observe(o entity.TaskOutcome, d time.Duration) {
	if o.OK() {
		e.logger.Debug("target extracted", zap.String("url", o.Target.URL), zap.Duration("duration", d))
		e.metrics.ObserveTarget("success", "", d)
		return
	}
	e.logger.Warn("target extraction failed",
		zap.String("url", o.Target.URL),
		zap.String("reason", o.Failure.Reason),
		zap.String("error", o.Failure.Error),
	)
	e.metrics.ObserveTarget("failure", o.Failure.Reason, d)
}

// FailureReason maps a render error onto a report reason.
func FailureReason(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, repository.ErrNavigationTimeout), errors.Is(err, repository.ErrReadyTimeout):
		return entity.ReasonTimeout
	case errors.Is(err, repository.ErrHTTPStatus):
		return entity.ReasonHTTPError
	case ctx.Err() != nil:
		return entity.ReasonCanceled
	default:
		return entity.ReasonNavigationFailed
	}
}
