package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/repository"
	"github.com/user/profile-harvester/pkg/htmlpage"
	"github.com/user/profile-harvester/pkg/utils"
)

// fakeResponse is what the fake session serves for one URL.
type fakeResponse struct {
	html  string
	err   error
	delay time.Duration
}

type fakeSession struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	requested []string
	inFlight  atomic.Int32
	peak      atomic.Int32
	closed    atomic.Bool
}

func newFakeSession(responses map[string]fakeResponse) *fakeSession {
	return &fakeSession{responses: responses}
}

func (s *fakeSession) Render(ctx context.Context, url string, _ repository.RenderOptions) (*htmlpage.Page, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	s.mu.Lock()
	s.requested = append(s.requested, url)
	resp, ok := s.responses[url]
	s.mu.Unlock()

	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: no route to %s", repository.ErrNavigationFailed, url)
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return htmlpage.Parse(url, resp.html)
}

func (s *fakeSession) Close() { s.closed.Store(true) }

func (s *fakeSession) Requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.requested...)
	sort.Strings(out)
	return out
}

type fakeBrowser struct {
	session *fakeSession
	err     error
	opened  atomic.Int32
}

func (b *fakeBrowser) Open(context.Context) (repository.BrowserSession, error) {
	b.opened.Add(1)
	if b.err != nil {
		return nil, b.err
	}
	return b.session, nil
}

// profileHTML renders a minimal profile page understood by fakeProfileParser.
func profileHTML(name string) string {
	return fmt.Sprintf(`<html><body><h1>%s</h1><p class="degree">MD</p></body></html>`, name)
}

type fakeProfileParser struct{}

func (fakeProfileParser) ReadySelector() string { return "h1" }

func (fakeProfileParser) ParseProfile(page *htmlpage.Page) entity.ProfileFields {
	if page.Find(".explode").Length() > 0 {
		panic("unexpected template")
	}
	var f entity.ProfileFields
	if name, ok := page.Text("h1"); ok {
		f.Name = &name
	}
	if degree, ok := page.Text(".degree"); ok {
		f.Degree = &degree
	}
	return f
}

// listingHTML renders a listing page; an empty indicator omits the pager.
func listingHTML(indicator string, hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if indicator != "" {
		fmt.Fprintf(&b, `<div class="pager">%s</div>`, indicator)
	}
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a class="profile" href="%s">Dr. %s</a>`, h, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

type fakeListingParser struct{}

func (fakeListingParser) ReadySelector() string { return "body" }

func (fakeListingParser) PageIndicator(page *htmlpage.Page) (string, bool) {
	return page.Text(".pager")
}

func (fakeListingParser) Candidates(page *htmlpage.Page) []entity.CandidateTarget {
	var out []entity.CandidateTarget
	page.Find("a.profile").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs, err := page.Resolve(href)
		if err != nil {
			return
		}
		name, _ := htmlpage.SelectionText(s)
		out = append(out, entity.CandidateTarget{URL: abs, DisplayName: name})
	})
	return out
}

func (fakeListingParser) PageURL(searchURL string, n int) (string, error) {
	return utils.WithPage(searchURL, "page", n)
}

// In-memory stores used by the service tests.

type memProfiles struct {
	mu      sync.Mutex
	records map[string]*entity.ExtractedRecord
	failFor map[string]bool
}

func newMemProfiles() *memProfiles {
	return &memProfiles{records: map[string]*entity.ExtractedRecord{}, failFor: map[string]bool{}}
}

func (m *memProfiles) Upsert(_ context.Context, r *entity.ExtractedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[r.URL] {
		return errors.New("disk full")
	}
	m.records[r.URL] = r
	return nil
}

func (m *memProfiles) FindByURL(_ context.Context, url string) (*entity.ExtractedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[url]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

type memFailed struct {
	mu      sync.Mutex
	targets map[string]*entity.FailedTarget
}

func newMemFailed() *memFailed { return &memFailed{targets: map[string]*entity.FailedTarget{}} }

func (m *memFailed) SaveOrUpdate(_ context.Context, f *entity.FailedTarget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	if prev, ok := m.targets[f.URL]; ok {
		cp.AttemptCount = prev.AttemptCount
	}
	cp.AttemptCount++
	m.targets[f.URL] = &cp
	return nil
}

func (m *memFailed) FindByURL(_ context.Context, url string) (*entity.FailedTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.targets[url]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f, nil
}

func (m *memFailed) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.targets, url)
	return nil
}

type memHarvested struct {
	mu   sync.Mutex
	urls map[string]time.Duration
}

func newMemHarvested() *memHarvested { return &memHarvested{urls: map[string]time.Duration{}} }

func (m *memHarvested) MarkHarvested(_ context.Context, url string, expiry time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[url] = expiry
	return nil
}

func (m *memHarvested) IsHarvested(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.urls[url]
	return ok, nil
}

type memLock struct {
	mu       sync.Mutex
	holder   string
	acquired int
	released int
}

func (m *memLock) Acquire(_ context.Context, _ time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holder != "" {
		return "", false, nil
	}
	m.acquired++
	m.holder = fmt.Sprintf("token-%d", m.acquired)
	return m.holder, true, nil
}

func (m *memLock) Release(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holder == token {
		m.holder = ""
		m.released++
	}
	return nil
}

type memQueue struct {
	mu      sync.Mutex
	entries []entity.SeedEntry
	// malformed payloads are popped ahead of the entries on the next Drain.
	malformed int
}

func (m *memQueue) Requeue(_ context.Context, entries ...entity.SeedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(append([]entity.SeedEntry(nil), entries...), m.entries...)
	return nil
}

func (m *memQueue) Push(_ context.Context, entries ...entity.SeedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memQueue) Drain(_ context.Context, max int) ([]entity.SeedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	if m.malformed > 0 {
		max -= m.malformed
		m.malformed = 0
		err = fmt.Errorf("%w: bad payload", repository.ErrMalformedSeed)
	}
	n := min(max, len(m.entries))
	out := append([]entity.SeedEntry(nil), m.entries[:n]...)
	m.entries = m.entries[n:]
	return out, err
}

func (m *memQueue) Size(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}
