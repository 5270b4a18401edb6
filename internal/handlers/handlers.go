package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/abrezinsky/hoopsboard/internal/auth"
	"github.com/abrezinsky/hoopsboard/internal/services"
	"github.com/abrezinsky/hoopsboard/internal/shell"
	"github.com/abrezinsky/hoopsboard/pkg/metrics"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// AdminPageData holds the data passed to admin templates
type AdminPageData struct {
	Title     string
	PageTitle string
	ActiveNav string
}

// Templates holds all parsed HTML templates
type Templates struct {
	Leaderboard    *template.Template
	Unavailable    *template.Template
	Login          *template.Template
	AdminLogin     *template.Template
	AdminQuestions *template.Template
	AdminSettings  *template.Template
}

// SocketServer upgrades requests to page sockets
type SocketServer interface {
	ServeWs(w http.ResponseWriter, r *http.Request, pageID string)
}

// Services groups the service layer the handlers call into
type Services struct {
	Leaderboard services.LeaderboardServicer
	Pages       services.PageServicer
	Batch       services.BatchServicer
	Settings    services.SettingsServicer
}

// UIOptions are page rendering switches
type UIOptions struct {
	NoAnimate bool
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Leaderboard  services.LeaderboardServicer
	Pages        services.PageServicer
	Batch        services.BatchServicer
	Settings     services.SettingsServicer
	Auth         *auth.Auth
	Hub          SocketServer
	Metrics      *metrics.Manager
	Logos        *shell.LogoResolver
	Log          HTTPLogger
	UI           UIOptions
	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	svc Services,
	templatesFS fs.FS,
	staticServer http.Handler,
	logos *shell.LogoResolver,
	adminAuth *auth.Auth,
	hub SocketServer,
	m *metrics.Manager,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if logos == nil {
		logos = shell.NewLogoResolver(nil)
	}

	return &Handlers{
		Leaderboard:  svc.Leaderboard,
		Pages:        svc.Pages,
		Batch:        svc.Batch,
		Settings:     svc.Settings,
		Auth:         adminAuth,
		Hub:          hub,
		Metrics:      m,
		Logos:        logos,
		Log:          log,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without loading templates (for testing API endpoints)
func NewForTesting(svc Services) *Handlers {
	return &Handlers{
		Leaderboard: svc.Leaderboard,
		Pages:       svc.Pages,
		Batch:       svc.Batch,
		Settings:    svc.Settings,
		Auth:        auth.New("test-password"),
		Logos:       shell.NewLogoResolver(nil),
		Log:         NoopHTTPLogger{},
		// templates left nil - API endpoints don't use templates
	}
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Leaderboard, err = template.ParseFS(templatesFS, "leaderboard.html"); err != nil {
		return nil, fmt.Errorf("leaderboard template: %w", err)
	}
	if t.Unavailable, err = template.ParseFS(templatesFS, "unavailable.html"); err != nil {
		return nil, fmt.Errorf("unavailable template: %w", err)
	}
	if t.Login, err = template.ParseFS(templatesFS, "login.html"); err != nil {
		return nil, fmt.Errorf("login template: %w", err)
	}
	if t.AdminLogin, err = template.ParseFS(templatesFS, "admin/login.html"); err != nil {
		return nil, fmt.Errorf("admin login template: %w", err)
	}
	if t.AdminQuestions, err = template.ParseFS(templatesFS, "admin/layout.html", "admin/questions.html"); err != nil {
		return nil, fmt.Errorf("admin questions template: %w", err)
	}
	if t.AdminSettings, err = template.ParseFS(templatesFS, "admin/layout.html", "admin/settings.html"); err != nil {
		return nil, fmt.Errorf("admin settings template: %w", err)
	}

	return t, nil
}
