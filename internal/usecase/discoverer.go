package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/monitoring"
	"github.com/user/profile-harvester/internal/repository"
	"github.com/user/profile-harvester/pkg/executor"
)

var pageCountPattern = regexp.MustCompile(`(?i)page\s+(\d+)\s+of\s+(\d+)`)

// ParsePageCount reads N out of a "Page X of N" indicator.
func ParsePageCount(indicator string) (int, bool) {
	m := pageCountPattern.FindStringSubmatch(indicator)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Discovery is what one search listing expanded into.
type Discovery struct {
	SearchURL   string
	Candidates  []entity.CandidateTarget
	Pages       int
	FailedPages int
	// Degraded is set when the page count could not be read and only page 1 was used.
	Degraded bool
}

type Discoverer struct {
	parser   repository.ListingParser
	timeouts Timeouts
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

func NewDiscoverer(parser repository.ListingParser, timeouts Timeouts, metrics *monitoring.Metrics, logger *zap.Logger) *Discoverer {
	return &Discoverer{
		parser:   parser,
		timeouts: timeouts,
		metrics:  metrics,
		logger:   logger.With(zap.String("component", "discoverer")),
	}
}

func (d *Discoverer) renderOptions() repository.RenderOptions {
	return repository.RenderOptions{
		ReadySelector:     d.parser.ReadySelector(),
		NavigationTimeout: d.timeouts.Navigation,
		ReadyTimeout:      d.timeouts.Ready,
	}
}

// Discover walks the listing rooted at searchURL, fetching pages 2..N at most
// limit at a time. Only a failure to load page 1 is returned as an error; later
// pages that fail contribute no candidates.
func (d *Discoverer) Discover(ctx context.Context, session repository.BrowserSession, searchURL string, limit int) (*Discovery, error) {
	log := d.logger.With(zap.String("search_url", searchURL))

	first, err := session.Render(ctx, searchURL, d.renderOptions())
	if err != nil {
		return nil, fmt.Errorf("load search page 1: %w", err)
	}

	res := &Discovery{
		SearchURL:  searchURL,
		Candidates: d.parser.Candidates(first),
		Pages:      1,
	}

	indicator, _ := d.parser.PageIndicator(first)
	total, ok := ParsePageCount(indicator)
	if !ok {
		res.Degraded = true
		d.metrics.IncDiscoveryDegraded()
		log.Warn("page count indicator missing or unparsable, using page 1 only", zap.String("indicator", indicator))
		total = 1
	}

	if total > 1 {
		pages := make([]int, 0, total-1)
		for n := 2; n <= total; n++ {
			pages = append(pages, n)
		}
		results, err := executor.Run(ctx, pages, limit, func(ctx context.Context, n int) ([]entity.CandidateTarget, error) {
			return d.discoverPage(ctx, session, searchURL, n)
		})
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			res.Pages++
			if !r.OK() {
				res.FailedPages++
				d.metrics.IncDiscoveryPageErrors()
				log.Warn("search page failed", zap.Int("page", r.Input), zap.Error(r.Err))
				continue
			}
			res.Candidates = append(res.Candidates, r.Value...)
		}
	}

	d.metrics.AddDiscovered(len(res.Candidates))
	log.Info("search expanded",
		zap.Int("pages", res.Pages),
		zap.Int("failed_pages", res.FailedPages),
		zap.Int("candidates", len(res.Candidates)),
	)
	return res, nil
}

func (d *Discoverer) discoverPage(ctx context.Context, session repository.BrowserSession, searchURL string, n int) ([]entity.CandidateTarget, error) {
	pageURL, err := d.parser.PageURL(searchURL, n)
	if err != nil {
		return nil, fmt.Errorf("build url for page %d: %w", n, err)
	}
	page, err := session.Render(ctx, pageURL, d.renderOptions())
	if err != nil {
		return nil, err
	}
	return d.parser.Candidates(page), nil
}
