package repository

import (
	"context"
	"time"

	"github.com/user/profile-harvester/pkg/htmlpage"
)

// RenderOptions bound a single page render.
type RenderOptions struct {
	// ReadySelector is an element whose visibility signals the page has loaded.
	ReadySelector     string
	NavigationTimeout time.Duration
	ReadyTimeout      time.Duration
}

// Browser establishes the execution context shared by all tasks of a run.
type Browser interface {
	// Open fails with ErrBrowserUnavailable when no context can be established.
	Open(ctx context.Context) (BrowserSession, error)
}

// BrowserSession is safe for concurrent use. Each Render call owns its own tab
// and releases it before returning.
type BrowserSession interface {
	Render(ctx context.Context, url string, opts RenderOptions) (*htmlpage.Page, error)
	Close()
}
