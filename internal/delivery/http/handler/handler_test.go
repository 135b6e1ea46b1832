package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/user/profile-harvester/internal/entity"
	"github.com/user/profile-harvester/internal/usecase"
)

type fakeHarvester struct {
	res         *usecase.HarvestResult
	err         error
	seeds       []entity.Seed
	concurrency int
	enqueued    []entity.SeedEntry
	runCtxErr   error
}

func (f *fakeHarvester) RunHarvest(ctx context.Context, seeds []entity.Seed, concurrency int) (*usecase.HarvestResult, error) {
	f.seeds, f.concurrency = seeds, concurrency
	f.runCtxErr = ctx.Err()
	return f.res, f.err
}

func (f *fakeHarvester) RunQueued(context.Context) (*usecase.HarvestResult, error) { return nil, nil }

func (f *fakeHarvester) Enqueue(_ context.Context, entries ...entity.SeedEntry) error {
	f.enqueued = append(f.enqueued, entries...)
	return f.err
}

type fakeStatus struct {
	status *entity.TargetStatus
	err    error
}

func (f *fakeStatus) GetStatus(context.Context, string) (*entity.TargetStatus, error) {
	return f.status, f.err
}

func newTestHandler(t *testing.T, h *fakeHarvester, s *fakeStatus, checks map[string]HealthCheck) *Handler {
	t.Helper()
	return NewHandler(h, s, checks, zaptest.NewLogger(t))
}

func postHarvest(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.HandleHarvest(rec, httptest.NewRequest(http.MethodPost, "/api/harvest", strings.NewReader(body)))
	return rec
}

func TestHandleHarvestSuccess(t *testing.T) {
	report := entity.NewHarvestReport("run-7", []entity.TaskOutcome{
		entity.Succeeded(entity.CandidateTarget{URL: "https://x.test/doctors/a-1"}, &entity.ExtractedRecord{Name: "A"}),
	}, entity.DiscoveryStats{})
	fh := &fakeHarvester{res: &usecase.HarvestResult{Report: report, Stored: 1}}
	h := newTestHandler(t, fh, &fakeStatus{}, nil)

	rec := postHarvest(h, `{"seeds":[{"url":"https://x.test/doctors/a-1","searchUrl":"https://x.test/search"}],"concurrency":3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 3, fh.concurrency)
	require.Equal(t, []entity.Seed{
		entity.DirectTarget("https://x.test/doctors/a-1"),
		entity.SearchTarget("https://x.test/search"),
	}, fh.seeds)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "run-7", body["run_id"])
	require.EqualValues(t, 1, body["total"])
	require.EqualValues(t, 1, body["successes"])
	require.EqualValues(t, 1, body["stored"])
}

func TestHandleHarvestSurvivesClientDisconnect(t *testing.T) {
	report := entity.NewHarvestReport("run-8", nil, entity.DiscoveryStats{})
	fh := &fakeHarvester{res: &usecase.HarvestResult{Report: report}}
	h := newTestHandler(t, fh, &fakeStatus{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/harvest",
		strings.NewReader(`{"seeds":[{"url":"https://x.test/doctors/a-1"}]}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.HandleHarvest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, fh.runCtxErr)
}

func TestHandleHarvestBadRequests(t *testing.T) {
	for name, body := range map[string]string{
		"malformed":    `{"seeds":`,
		"empty":        `{"seeds":[]}`,
		"empty entry":  `{"seeds":[{}]}`,
		"relative url": `{"seeds":[{"url":"/doctors/a-1"}]}`,
		"negative":     `{"seeds":[{"url":"https://x.test/doctors/a-1"}],"concurrency":-2}`,
	} {
		t.Run(name, func(t *testing.T) {
			fh := &fakeHarvester{}
			rec := postHarvest(newTestHandler(t, fh, &fakeStatus{}, nil), body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Nil(t, fh.seeds)
		})
	}
}

func TestHandleHarvestRunErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{usecase.ErrRunInProgress, http.StatusConflict},
		{usecase.ErrInfrastructure, http.StatusServiceUnavailable},
		{usecase.ErrRunDeadline, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := newTestHandler(t, &fakeHarvester{err: tt.err}, &fakeStatus{}, nil)
			rec := postHarvest(h, `{"seeds":[{"url":"https://x.test/doctors/a-1"}]}`)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandleEnqueue(t *testing.T) {
	fh := &fakeHarvester{}
	h := newTestHandler(t, fh, &fakeStatus{}, nil)

	rec := httptest.NewRecorder()
	h.HandleEnqueue(rec, httptest.NewRequest(http.MethodPost, "/api/seeds",
		strings.NewReader(`{"seeds":[{"searchUrl":"https://x.test/search"}]}`)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []entity.SeedEntry{{SearchURL: "https://x.test/search"}}, fh.enqueued)
}

func TestHandleStatus(t *testing.T) {
	scraped := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		h := newTestHandler(t, &fakeHarvester{}, &fakeStatus{status: &entity.TargetStatus{
			URL: "https://x.test/doctors/a-1", CurrentStatus: entity.StatusHarvested, ScrapedAt: &scraped,
		}}, nil)
		rec := httptest.NewRecorder()
		h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status?url=https://x.test/doctors/a-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"current_status":"harvested"`)
	})

	t.Run("not found", func(t *testing.T) {
		h := newTestHandler(t, &fakeHarvester{}, &fakeStatus{status: &entity.TargetStatus{CurrentStatus: entity.StatusNotFound}}, nil)
		rec := httptest.NewRecorder()
		h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status?url=https://x.test/doctors/zz-9", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing param", func(t *testing.T) {
		h := newTestHandler(t, &fakeHarvester{}, &fakeStatus{}, nil)
		rec := httptest.NewRecorder()
		h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleHealthCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	rec := httptest.NewRecorder()
	newTestHandler(t, &fakeHarvester{}, &fakeStatus{}, map[string]HealthCheck{"postgres": ok, "redis": ok}).
		HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newTestHandler(t, &fakeHarvester{}, &fakeStatus{}, map[string]HealthCheck{"postgres": ok, "redis": down}).
		HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), `"redis":"unhealthy"`)
}
