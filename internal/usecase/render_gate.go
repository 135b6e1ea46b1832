package usecase

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/user/profile-harvester/internal/repository"
	"github.com/user/profile-harvester/pkg/htmlpage"
)

// gatedSession caps in-flight renders across every phase and nesting level of
// one run. Executors above it only bound goroutines.
type gatedSession struct {
	repository.BrowserSession
	sem *semaphore.Weighted
}

func newGatedSession(session repository.BrowserSession, limit int) *gatedSession {
	return &gatedSession{BrowserSession: session, sem: semaphore.NewWeighted(int64(limit))}
}

func (s *gatedSession) Render(ctx context.Context, url string, opts repository.RenderOptions) (*htmlpage.Page, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)
	return s.BrowserSession.Render(ctx, url, opts)
}
