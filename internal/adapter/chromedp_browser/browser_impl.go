package chromedp_browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/user/profile-harvester/internal/proxy"
	"github.com/user/profile-harvester/internal/repository"
	"github.com/user/profile-harvester/pkg/htmlpage"
)

type Options struct {
	Headless bool
	// MaxTabs caps the tabs open at once in one session.
	MaxTabs int
	Proxies *proxy.Manager
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
}

type ChromedpBrowser struct {
	opts   Options
	logger *zap.Logger
}

// NewChromedpBrowser creates a Browser that launches one headless Chrome per session.
func NewChromedpBrowser(opts Options, logger *zap.Logger) *ChromedpBrowser {
	if opts.MaxTabs < 1 {
		opts.MaxTabs = 1
	}
	if opts.Proxies == nil {
		opts.Proxies = proxy.NewManager(nil, nil)
	}
	return &ChromedpBrowser{opts: opts, logger: logger.With(zap.String("component", "chromedp-browser"))}
}

func (b *ChromedpBrowser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.opts.Proxies.GetUserAgent()),
	)
	if p := b.opts.Proxies.GetProxy(); p != "" {
		opts = append(opts, chromedp.ProxyServer(p))
	}
	if b.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.opts.ExecPath))
	}
	return opts
}

// Open launches the browser. The session lives until Close, independent of ctx.
func (b *ChromedpBrowser) Open(ctx context.Context) (repository.BrowserSession, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), b.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(b.logger.Sugar().Debugf))

	started := make(chan error, 1)
	go func() { started <- chromedp.Run(browserCtx) }()

	select {
	case err := <-started:
		if err != nil {
			browserCancel()
			allocCancel()
			return nil, fmt.Errorf("%w: %v", repository.ErrBrowserUnavailable, err)
		}
	case <-ctx.Done():
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", repository.ErrBrowserUnavailable, ctx.Err())
	}

	b.logger.Info("browser session opened", zap.Int("max_tabs", b.opts.MaxTabs))
	return &session{
		browserCtx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		tabs:   semaphore.NewWeighted(int64(b.opts.MaxTabs)),
		logger: b.logger,
	}, nil
}

type session struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	tabs       *semaphore.Weighted
	logger     *zap.Logger
	closeOnce  sync.Once
}

func (s *session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.logger.Info("browser session closed")
	})
}

// Render opens a fresh tab, navigates to url, waits for the ready selector and
// snapshots the rendered HTML. The tab is closed on every return path.
func (s *session) Render(ctx context.Context, url string, opts repository.RenderOptions) (*htmlpage.Page, error) {
	if err := s.tabs.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.tabs.Release(1)

	tabCtx, closeTab := chromedp.NewContext(s.browserCtx)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, e.Response.Status)
		}
	})

	// Creates the tab; kept outside the timeouts so they never tear the target down mid-setup.
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		return nil, fmt.Errorf("%w: open tab: %v", repository.ErrNavigationFailed, err)
	}

	if err := runWithTimeout(tabCtx, opts.NavigationTimeout, chromedp.Navigate(url)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", repository.ErrNavigationTimeout, url)
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)
	}

	if code := status.Load(); code >= 400 {
		return nil, fmt.Errorf("%w: %d", repository.ErrHTTPStatus, code)
	}

	if opts.ReadySelector != "" {
		err := runWithTimeout(tabCtx, opts.ReadyTimeout, chromedp.WaitVisible(opts.ReadySelector, chromedp.ByQuery))
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", repository.ErrReadyTimeout, opts.ReadySelector)
			}
			return nil, fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)
		}
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("%w: read html: %v", repository.ErrNavigationFailed, err)
	}

	s.logger.Debug("page rendered", zap.String("url", url), zap.Int64("status", status.Load()))
	return htmlpage.Parse(url, html)
}

func runWithTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout <= 0 {
		return chromedp.Run(ctx, actions...)
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(tctx, actions...)
}
