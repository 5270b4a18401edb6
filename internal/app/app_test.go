package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/abrezinsky/hoopsboard/internal/auth"
	"github.com/abrezinsky/hoopsboard/internal/config"
	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/pkg/nbaapi"
)

func TestNew_InitializesApp(t *testing.T) {
	app := createTestApp(t)

	if app.handlers == nil {
		t.Error("expected handlers to be initialized")
	}
	if app.repo == nil {
		t.Error("expected repo to be initialized")
	}
	if app.hub == nil {
		t.Error("expected hub to be initialized")
	}
	if app.cancelReaper == nil {
		t.Error("expected cancelReaper to be set")
	}
	if !app.handlers.UI.NoAnimate {
		t.Error("expected no_animate to reach the handlers")
	}
}

func TestNew_FailsWithBadDBPath(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = "/nonexistent/path/db.sqlite"

	_, err := New(logger.New(), cfg, nbaapi.NewMockClient(), createTestTemplatesFS(), fstest.MapFS{}, auth.New("test-password"))
	if err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestNew_FailsWithMissingTemplates(t *testing.T) {
	_, err := New(logger.New(), testConfig(), nbaapi.NewMockClient(), fstest.MapFS{}, fstest.MapFS{}, auth.New("test-password"))
	if err == nil {
		t.Error("expected error for missing templates")
	}
}

func TestNew_AppliesStoredAPIBaseURL(t *testing.T) {
	client := nbaapi.NewMockClient()
	app, err := New(logger.New(), testConfig(), client, createTestTemplatesFS(), fstest.MapFS{}, auth.New("test-password"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer app.Close()

	// a fresh database has nothing stored, so the client keeps its own URL
	if client.BaseURL() != "http://mock-contest.local" {
		t.Errorf("expected untouched client base URL, got %q", client.BaseURL())
	}
}

func TestApp_Router_ServesRequests(t *testing.T) {
	app := createTestApp(t)
	server := httptest.NewServer(app.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/admin/login")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /admin/login, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /metrics, got %d", resp.StatusCode)
	}
}

func TestApp_MountedPageCountsInStats(t *testing.T) {
	app := createTestApp(t)
	server := httptest.NewServer(app.Router())
	defer server.Close()

	body := strings.NewReader(`{"season":"` + nbaapi.DefaultMockSeason + `"}`)
	resp, err := http.Post(server.URL+"/api/pages", "application/json", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.ID == "" {
		t.Fatal("expected a page id")
	}

	pages, sockets := app.Stats()
	if pages != 1 {
		t.Errorf("expected 1 page, got %d", pages)
	}
	if sockets != 0 {
		t.Errorf("expected 0 sockets, got %d", sockets)
	}
}

func TestApp_Close_IsIdempotent(t *testing.T) {
	app := createTestApp(t)

	app.Close()
	app.Close()

	if pages, _ := app.Stats(); pages != 0 {
		t.Errorf("expected no pages after close, got %d", pages)
	}
}

func TestApp_BaseURL(t *testing.T) {
	app := createTestApp(t)

	app.cfg.BaseURL = "https://hoops.example.com/"
	if got := app.BaseURL(":8080"); got != "https://hoops.example.com" {
		t.Errorf("expected configured base URL, got %q", got)
	}

	app.cfg.BaseURL = ""
	got := app.BaseURL(":8080")
	if !strings.HasPrefix(got, "http://") || !strings.HasSuffix(got, ":8080") {
		t.Errorf("expected detected LAN URL, got %q", got)
	}
}

func TestSetDefaultBaseURL(t *testing.T) {
	tests := []struct {
		name       string
		existing   string
		configured string
		want       string
	}{
		{"empty is filled", "", "", "http://192.168.1.100:8080"},
		{"localhost is replaced", "http://localhost:8080", "", "http://192.168.1.100:8080"},
		{"valid URL is kept", "http://192.168.1.50:8080", "", "http://192.168.1.50:8080"},
		{"configured URL always wins", "http://192.168.1.50:8080", "https://hoops.example.com", "http://192.168.1.100:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := createTestApp(t)
			app.cfg.BaseURL = tt.configured
			ctx := context.Background()

			if tt.existing != "" {
				if err := app.repo.SetSetting(ctx, "base_url", tt.existing); err != nil {
					t.Fatalf("failed to seed setting: %v", err)
				}
			}

			app.setDefaultBaseURL("http://192.168.1.100:8080")

			val, err := app.repo.GetSetting(ctx, "base_url")
			if err != nil {
				t.Fatalf("failed to get setting: %v", err)
			}
			if val != tt.want {
				t.Errorf("base_url = %q, want %q", val, tt.want)
			}
		})
	}
}

func TestSetDefaultBaseURL_HandlesRepoError(t *testing.T) {
	app := createTestApp(t)
	app.repo.DB().Close()

	// logs a warning instead of panicking
	app.setDefaultBaseURL("http://192.168.1.100:8080")
}

type fakeInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (f fakeInterface) Flags() net.Flags           { return f.flags }
func (f fakeInterface) Addrs() ([]net.Addr, error) { return f.addrs, f.err }

type fakeLister struct {
	ifaces []netInterface
	err    error
}

func (f fakeLister) Interfaces() ([]netInterface, error) { return f.ifaces, f.err }

func ipNet(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

func TestGetPreferredIP(t *testing.T) {
	up := net.FlagUp
	tests := []struct {
		name   string
		lister fakeLister
		want   string
	}{
		{"listing fails", fakeLister{err: net.ErrClosed}, "localhost"},
		{"no interfaces", fakeLister{}, "localhost"},
		{"addrs fail", fakeLister{ifaces: []netInterface{fakeInterface{flags: up, err: net.ErrClosed}}}, "localhost"},
		{"down interface skipped", fakeLister{ifaces: []netInterface{
			fakeInterface{flags: 0, addrs: []net.Addr{ipNet("192.168.1.9")}},
		}}, "localhost"},
		{"loopback interface skipped", fakeLister{ifaces: []netInterface{
			fakeInterface{flags: up | net.FlagLoopback, addrs: []net.Addr{ipNet("127.0.0.1")}},
		}}, "localhost"},
		{"loopback address skipped", fakeLister{ifaces: []netInterface{
			fakeInterface{flags: up, addrs: []net.Addr{ipNet("127.0.0.1"), ipNet("192.168.1.50")}},
		}}, "192.168.1.50"},
		{"IPAddr accepted", fakeLister{ifaces: []netInterface{
			fakeInterface{flags: up, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("10.0.0.7")}}},
		}}, "10.0.0.7"},
		{"IPv6 ignored", fakeLister{ifaces: []netInterface{
			fakeInterface{flags: up, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("fe80::1")}}},
		}}, "localhost"},
		{"private preferred over public", fakeLister{ifaces: []netInterface{
			fakeInterface{flags: up, addrs: []net.Addr{ipNet("8.8.8.8")}},
			fakeInterface{flags: up, addrs: []net.Addr{ipNet("172.20.0.3")}},
		}}, "172.20.0.3"},
		{"public fallback", fakeLister{ifaces: []netInterface{
			fakeInterface{flags: up, addrs: []net.Addr{ipNet("8.8.8.8"), ipNet("1.1.1.1")}},
		}}, "8.8.8.8"},
		{"172.32 is not private", fakeLister{ifaces: []netInterface{
			fakeInterface{flags: up, addrs: []net.Addr{ipNet("172.32.0.1"), ipNet("10.1.2.3")}},
		}}, "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPreferredIP(tt.lister); got != tt.want {
				t.Errorf("getPreferredIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetPreferredIP_RealInterfaces(t *testing.T) {
	ip := getPreferredIP(realNetworkProvider{})
	if ip == "" {
		t.Fatal("expected non-empty IP")
	}
	if ip != "localhost" && net.ParseIP(ip).To4() == nil {
		t.Errorf("expected IPv4 address, got %q", ip)
	}
}

func TestApp_Run_Integration(t *testing.T) {
	app := createTestApp(t)

	done := make(chan error, 1)
	go func() {
		done <- app.Run("127.0.0.1:0")
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Logf("Run returned: %v", err)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

// Helper functions

func testConfig() *config.Config {
	cfg := config.New()
	cfg.DBPath = ":memory:"
	cfg.DefaultSeason = nbaapi.DefaultMockSeason
	cfg.NoAnimate = true
	return cfg
}

func createTestTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"leaderboard.html":     &fstest.MapFile{Data: []byte(`<html><body>{{.PageID}}</body></html>`)},
		"unavailable.html":     &fstest.MapFile{Data: []byte(`<html><body>{{.Message}}</body></html>`)},
		"login.html":           &fstest.MapFile{Data: []byte(`<html><body>Sign in</body></html>`)},
		"admin/login.html":     &fstest.MapFile{Data: []byte(`<html><body>Login</body></html>`)},
		"admin/layout.html":    &fstest.MapFile{Data: []byte(`{{define "admin"}}<html><body>{{template "content" .}}</body></html>{{end}}`)},
		"admin/questions.html": &fstest.MapFile{Data: []byte(`{{define "content"}}Questions{{end}}`)},
		"admin/settings.html":  &fstest.MapFile{Data: []byte(`{{define "content"}}Settings{{end}}`)},
	}
}

func createTestApp(t *testing.T) *App {
	t.Helper()
	app, err := New(logger.New(), testConfig(), nbaapi.NewMockClient(), createTestTemplatesFS(), fstest.MapFS{}, auth.New("test-password"))
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}
