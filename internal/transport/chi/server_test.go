package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/steamdash/insightd/internal/domain"
	healthuc "github.com/steamdash/insightd/internal/usecase/health"
	insightuc "github.com/steamdash/insightd/internal/usecase/insight"
)

// --- Mocks ---

type mockPipelineStore struct {
	names    []string
	namesErr error
	byName   map[string]*domain.Pipeline
	findErr  error
}

func (m *mockPipelineStore) ListNames(_ context.Context) ([]string, error) {
	return m.names, m.namesErr
}

func (m *mockPipelineStore) Find(_ context.Context, name string) (*domain.Pipeline, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if p, ok := m.byName[name]; ok {
		return p, nil
	}
	return nil, &domain.NotFoundError{Name: name}
}

type mockRunner struct {
	records []domain.Record
	err     error
}

func (m *mockRunner) Aggregate(_ context.Context, _ []domain.Stage) ([]domain.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type mockSummarizer struct {
	summary string
	err     error
	calls   int
}

func (m *mockSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.summary, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestRouter(store insightuc.PipelineStore, runner insightuc.AggregationRunner, sum insightuc.Summarizer) http.Handler {
	srv := NewServer(
		insightuc.New(store, runner, sum),
		healthuc.New(&mockPinger{}),
		zap.NewNop(),
	)
	r := chirouter.NewRouter()
	srv.Routes(r)
	return r
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error
}

// --- Tests ---

func TestRunPipeline_MissingName(t *testing.T) {
	h := newTestRouter(&mockPipelineStore{}, &mockRunner{}, &mockSummarizer{})

	rr := doGet(t, h, "/dynamic-pipeline")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got != "Missing pipeline name" {
		t.Errorf("unexpected error body %q", got)
	}
}

func TestRunPipeline_EmptyName(t *testing.T) {
	h := newTestRouter(&mockPipelineStore{}, &mockRunner{}, &mockSummarizer{})

	rr := doGet(t, h, "/dynamic-pipeline?name=")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got != "Missing pipeline name" {
		t.Errorf("unexpected error body %q", got)
	}
}

func TestRunPipeline_UnknownNameEchoed(t *testing.T) {
	h := newTestRouter(&mockPipelineStore{byName: map[string]*domain.Pipeline{}}, &mockRunner{}, &mockSummarizer{})

	rr := doGet(t, h, "/dynamic-pipeline?name=ghost")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got != "No pipeline named “ghost”" {
		t.Errorf("unexpected error body %q", got)
	}
}

func TestRunPipeline_AggregationFailure(t *testing.T) {
	store := &mockPipelineStore{byName: map[string]*domain.Pipeline{
		"broken": {Name: "broken"},
	}}
	runner := &mockRunner{err: &domain.DataQueryError{Err: errors.New("unknown operator $frobnicate")}}

	h := newTestRouter(store, runner, &mockSummarizer{})

	rr := doGet(t, h, "/dynamic-pipeline?name=broken")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got != "MongoDB error: unknown operator $frobnicate" {
		t.Errorf("unexpected error body %q", got)
	}
}

func TestRunPipeline_SummarizationFailure(t *testing.T) {
	store := &mockPipelineStore{byName: map[string]*domain.Pipeline{
		"slow": {Name: "slow"},
	}}
	sum := &mockSummarizer{err: &domain.SummarizationError{Err: errors.New("quota exceeded")}}

	h := newTestRouter(store, &mockRunner{records: []domain.Record{}}, sum)

	rr := doGet(t, h, "/dynamic-pipeline?name=slow")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got != "Gemini error: quota exceeded" {
		t.Errorf("unexpected error body %q", got)
	}
}

func TestRunPipeline_Success(t *testing.T) {
	store := &mockPipelineStore{byName: map[string]*domain.Pipeline{
		"top_genres": {
			Name:        "top_genres",
			Description: "Most played genres",
			Stages: []domain.Stage{
				{"$group": map[string]any{"_id": "$genre", "count": map[string]any{"$sum": 1}}},
			},
		},
	}}
	runner := &mockRunner{records: []domain.Record{
		{"_id": "A", "count": 2},
		{"_id": "B", "count": 1},
	}}
	sum := &mockSummarizer{summary: "Genre A dominates."}

	h := newTestRouter(store, runner, sum)

	rr := doGet(t, h, "/dynamic-pipeline?name=top_genres")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var body struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Data        []domain.Record `json:"data"`
		AISummary   string          `json:"ai_summary"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Title != "top_genres" {
		t.Errorf("expected title %q, got %q", "top_genres", body.Title)
	}
	if body.Description != "Most played genres" {
		t.Errorf("expected description %q, got %q", "Most played genres", body.Description)
	}
	if body.AISummary != "Genre A dominates." {
		t.Errorf("unexpected ai_summary %q", body.AISummary)
	}

	want := []domain.Record{
		{"_id": "A", "count": float64(2)},
		{"_id": "B", "count": float64(1)},
	}
	if !reflect.DeepEqual(body.Data, want) {
		t.Errorf("unexpected data: %v", body.Data)
	}
}

func TestRunPipeline_EmptyDescriptionIsEmptyString(t *testing.T) {
	store := &mockPipelineStore{byName: map[string]*domain.Pipeline{
		"bare": {Name: "bare"},
	}}
	h := newTestRouter(store, &mockRunner{records: []domain.Record{}}, &mockSummarizer{summary: "ok"})

	rr := doGet(t, h, "/dynamic-pipeline?name=bare")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"description":""`) {
		t.Errorf("expected empty description string in body: %s", rr.Body.String())
	}
}

func TestListPipelines(t *testing.T) {
	h := newTestRouter(&mockPipelineStore{names: []string{"top_genres", "sales"}}, &mockRunner{}, &mockSummarizer{})

	rr := doGet(t, h, "/pipelines")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var names []string
	if err := json.NewDecoder(rr.Body).Decode(&names); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"top_genres", "sales"}) {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestListPipelines_EmptyIsArrayNotNull(t *testing.T) {
	h := newTestRouter(&mockPipelineStore{names: nil}, &mockRunner{}, &mockSummarizer{})

	rr := doGet(t, h, "/pipelines")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestListPipelines_StoreError(t *testing.T) {
	store := &mockPipelineStore{namesErr: &domain.DataQueryError{Err: errors.New("connection reset")}}
	h := newTestRouter(store, &mockRunner{}, &mockSummarizer{})

	rr := doGet(t, h, "/pipelines")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got := decodeError(t, rr); got != "MongoDB error: connection reset" {
		t.Errorf("unexpected error body %q", got)
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestRouter(&mockPipelineStore{}, &mockRunner{}, &mockSummarizer{})

	rr := doGet(t, h, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %q", body.Status)
	}
	if body.Checks["database"] != "ok" {
		t.Errorf("expected database ok, got %q", body.Checks["database"])
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	srv := NewServer(
		insightuc.New(&mockPipelineStore{}, &mockRunner{}, &mockSummarizer{}),
		healthuc.New(&mockPinger{err: errors.New("no reachable servers")}),
		zap.NewNop(),
	)
	r := chirouter.NewRouter()
	srv.Routes(r)

	rr := doGet(t, r, "/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
