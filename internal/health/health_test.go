package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/altavoz-ai/altavoz/internal/scoring"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := New()
	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Healthz status = %d, want 200", rec.Code)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestReadyz_AllPass(t *testing.T) {
	t.Parallel()

	res := scoring.NewResources(scoring.ResourceConfig{},
		scoring.WithParameters(&scoring.Parameters{}),
		scoring.WithFillerWords(scoring.NewFillerWordSet([]string{"eh"})),
	)
	h := New(ResourcesChecker(res), DatabaseChecker(&mockPinger{}))

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Readyz status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Checks["scoring_resources"] != "ok" || body.Checks["database"] != "ok" {
		t.Errorf("checks = %v, want all ok", body.Checks)
	}
}

func TestReadyz_ResourcesNotLoaded(t *testing.T) {
	t.Parallel()

	res := scoring.NewResources(scoring.ResourceConfig{})
	h := New(ResourcesChecker(res))

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Readyz status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "parameters not loaded") {
		t.Errorf("body = %s, want missing-parameters failure", rec.Body.String())
	}
}

func TestReadyz_MissingTaggerIsStillReady(t *testing.T) {
	t.Parallel()

	// No tagger configured: the lexical metric is skipped but the service
	// still serves the other three metrics.
	res := scoring.NewResources(scoring.ResourceConfig{},
		scoring.WithParameters(&scoring.Parameters{}),
		scoring.WithFillerWords(scoring.NewFillerWordSet([]string{"eh"})),
	)
	h := New(ResourcesChecker(res))

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Readyz status = %d, want 200 without a tagger", rec.Code)
	}
}

func TestReadyz_DatabaseDown(t *testing.T) {
	t.Parallel()

	h := New(DatabaseChecker(&mockPinger{err: errors.New("connection refused")}))

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Readyz status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fail: connection refused") {
		t.Errorf("body = %s, want database failure detail", rec.Body.String())
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	New().Register(mux)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}
