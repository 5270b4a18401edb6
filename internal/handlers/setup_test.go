package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/hoopsboard/internal/auth"
	"github.com/abrezinsky/hoopsboard/internal/handlers"
	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/page"
	"github.com/abrezinsky/hoopsboard/internal/repository"
	"github.com/abrezinsky/hoopsboard/internal/services"
	"github.com/abrezinsky/hoopsboard/internal/testutil"
	"github.com/abrezinsky/hoopsboard/pkg/nbaapi"
)

// testSetup holds common test dependencies
type testSetup struct {
	repo       *repository.Repository
	client     *nbaapi.MockClient
	pages      *services.PageService
	settings   *services.SettingsService
	handlers   *handlers.Handlers
	router     chi.Router
	authCookie *http.Cookie
	log        logger.Logger
}

func createTestTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"leaderboard.html":     &fstest.MapFile{Data: []byte(`<html><body data-page="{{.PageID}}">Leaderboard {{.Season}} {{.Viewer}}</body></html>`)},
		"unavailable.html":     &fstest.MapFile{Data: []byte(`<html><body>{{.Code}}: {{.Message}}</body></html>`)},
		"login.html":           &fstest.MapFile{Data: []byte(`<html><body>Sign in {{.Error}}</body></html>`)},
		"admin/login.html":     &fstest.MapFile{Data: []byte(`<html><body>Login {{.Error}}</body></html>`)},
		"admin/layout.html":    &fstest.MapFile{Data: []byte(`{{define "admin"}}<html><body>{{template "content" .}}</body></html>{{end}}`)},
		"admin/questions.html": &fstest.MapFile{Data: []byte(`{{define "content"}}Questions{{end}}`)},
		"admin/settings.html":  &fstest.MapFile{Data: []byte(`{{define "content"}}Settings{{end}}`)},
	}
}

func newServices(t *testing.T, opts ...nbaapi.MockOption) (handlers.Services, *testSetup) {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	log := logger.New()
	client := nbaapi.NewMockClient(opts...)

	settings := services.NewSettingsService(log, repo, nbaapi.DefaultMockSeason)
	prefs := services.NewPreferencesService(log, repo)
	leaderboard := services.NewLeaderboardService(log, client)
	cfg := page.Config{PinPulse: 20 * time.Millisecond, Frame: 5 * time.Millisecond}
	pages := services.NewPageService(log, leaderboard, prefs, settings, cfg, time.Hour)
	t.Cleanup(pages.Shutdown)
	batch := services.NewBatchService(log, client, repo)

	svc := handlers.Services{
		Leaderboard: leaderboard,
		Pages:       pages,
		Batch:       batch,
		Settings:    settings,
	}
	return svc, &testSetup{repo: repo, client: client, pages: pages, settings: settings, log: log}
}

// newTestSetup creates handlers without templates for API tests
func newTestSetup(t *testing.T, opts ...nbaapi.MockOption) *testSetup {
	t.Helper()

	svc, setup := newServices(t, opts...)
	h := handlers.NewForTesting(svc)
	h.Log = setup.log

	token, _ := h.Auth.Login("test-password")
	setup.handlers = h
	setup.router = h.Router()
	setup.authCookie = &http.Cookie{Name: auth.CookieName, Value: token}
	return setup
}

// newTestSetupWithTemplates creates handlers that render HTML pages
func newTestSetupWithTemplates(t *testing.T, opts ...nbaapi.MockOption) *testSetup {
	t.Helper()

	svc, setup := newServices(t, opts...)
	adminAuth := auth.New("test-password")
	h, err := handlers.New(svc, createTestTemplatesFS(), handlers.NewStaticServer(fstest.MapFS{}), nil, adminAuth, nil, nil, handlers.NoopHTTPLogger{})
	if err != nil {
		t.Fatalf("failed to create handlers: %v", err)
	}

	token, _ := adminAuth.Login("test-password")
	setup.handlers = h
	setup.router = h.Router()
	setup.authCookie = &http.Cookie{Name: auth.CookieName, Value: token}
	return setup
}

// do sends a request through the router. body is JSON-encoded unless it is nil.
func (s *testSetup) do(t *testing.T, method, target string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// mountPage mounts a page through the API and returns its response
func (s *testSetup) mountPage(t *testing.T, query string, cookies ...*http.Cookie) handlers.PageResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/pages", handlers.PageMountRequest{Season: nbaapi.DefaultMockSeason, Query: query}, cookies...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp handlers.PageResponse
	decodeBody(t, rec, &resp)
	return resp
}

// doRaw sends a request with a literal body
func (s *testSetup) doRaw(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}
