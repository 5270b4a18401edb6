package app

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/hoopsboard/internal/auth"
	"github.com/abrezinsky/hoopsboard/internal/config"
	"github.com/abrezinsky/hoopsboard/internal/handlers"
	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/page"
	"github.com/abrezinsky/hoopsboard/internal/repository"
	"github.com/abrezinsky/hoopsboard/internal/services"
	"github.com/abrezinsky/hoopsboard/internal/shell"
	"github.com/abrezinsky/hoopsboard/internal/websocket"
	"github.com/abrezinsky/hoopsboard/pkg/metrics"
	"github.com/abrezinsky/hoopsboard/pkg/nbaapi"
)

// reapInterval is how often idle pages are looked for
const reapInterval = time.Minute

// App holds all application dependencies
type App struct {
	log          logger.Logger
	cfg          *config.Config
	handlers     *handlers.Handlers
	repo         *repository.Repository
	pages        *services.PageService
	hub          *websocket.Hub
	metrics      *metrics.Manager
	cancelReaper context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, client nbaapi.Client, templatesFS, staticFS fs.FS, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	m := metrics.NewManager()

	// Initialize services
	settingsService := services.NewSettingsService(log, repo, cfg.DefaultSeason)
	settingsService.SetClient(client)
	if err := settingsService.ApplyStored(context.Background()); err != nil {
		log.Warn("Failed to apply stored settings", "error", err)
	}

	leaderboardService := services.NewLeaderboardService(log, client)
	leaderboardService.SetObserver(m)
	preferencesService := services.NewPreferencesService(log, repo)

	logosFS, err := fs.Sub(staticFS, "logos")
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to open logos: %w", err)
	}
	logos := shell.NewLogoResolver(logosFS)

	pageConfig := page.Config{
		PinPulse: cfg.PinPulse(),
		Frame:    cfg.Frame(),
		Logos:    logos,
	}
	pageService := services.NewPageService(log, leaderboardService, preferencesService, settingsService, pageConfig, cfg.PageTTL)
	pageService.SetObserver(m)
	pageService.SetGauge(m)

	batchService := services.NewBatchService(log, client, repo)
	batchService.SetObserver(m)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, pageService)
	hub.SetGauge(m)
	hub.Start()
	pageService.SetEmitter(hub)
	pageService.SetSockets(hub)

	// Reap idle pages until Close
	ctx, cancel := context.WithCancel(context.Background())
	go pageService.RunReaper(ctx, reapInterval)

	staticServer := handlers.NewStaticServer(staticFS)

	h, err := handlers.New(
		handlers.Services{
			Leaderboard: leaderboardService,
			Pages:       pageService,
			Batch:       batchService,
			Settings:    settingsService,
		},
		templatesFS,
		staticServer,
		logos,
		adminAuth,
		hub,
		m,
		log,
	)
	if err != nil {
		cancel() // Clean up reaper goroutine
		repo.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}
	h.UI.NoAnimate = cfg.NoAnimate

	return &App{
		log:          log,
		cfg:          cfg,
		handlers:     h,
		repo:         repo,
		pages:        pageService,
		hub:          hub,
		metrics:      m,
		cancelReaper: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Stats reports how many pages are mounted and how many sockets are open
func (a *App) Stats() (pages, sockets int) {
	return a.pages.Count(), a.hub.ClientCount()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelReaper != nil {
		a.cancelReaper()
	}
	a.pages.Shutdown()
	if err := a.repo.Close(); err != nil {
		a.log.Warn("Failed to close database", "error", err)
	}
}

// BaseURL returns the public URL share links and QR codes point at
func (a *App) BaseURL(addr string) string {
	if a.cfg.BaseURL != "" {
		return strings.TrimRight(a.cfg.BaseURL, "/")
	}
	ip := getPreferredIP(realNetworkProvider{})
	return fmt.Sprintf("http://%s%s", ip, addr)
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	baseURL := a.BaseURL(addr)
	a.setDefaultBaseURL(baseURL)

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Leaderboard URL", "url", baseURL+"/leaderboard/"+a.cfg.DefaultSeason)
	a.log.Info("Admin URL", "url", baseURL+"/admin")
	return http.ListenAndServe(addr, a.Router())
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for shared links)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.repo.GetSetting(ctx, services.SettingBaseURL)

	needsUpdate := existing == "" || strings.Contains(existing, "localhost") || a.cfg.BaseURL != ""
	if needsUpdate {
		if err := a.repo.SetSetting(ctx, services.SettingBaseURL, baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// netInterface is the part of net.Interface the LAN address lookup reads
type netInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type sysInterface struct {
	iface net.Interface
}

func (s sysInterface) Flags() net.Flags           { return s.iface.Flags }
func (s sysInterface) Addrs() ([]net.Addr, error) { return s.iface.Addrs() }

// interfaceLister lists network interfaces
type interfaceLister interface {
	Interfaces() ([]netInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]netInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]netInterface, len(ifaces))
	for i, iface := range ifaces {
		out[i] = sysInterface{iface: iface}
	}
	return out, nil
}

// getPreferredIP returns the IPv4 address phones on the same network can reach.
// Private addresses win over public ones; localhost when nothing is up.
func getPreferredIP(lister interfaceLister) string {
	ifaces, err := lister.Interfaces()
	if err != nil {
		return "localhost"
	}

	var fallback net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ip := ipOf(addr)
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip.IsPrivate() {
				return ip.String()
			}
			if fallback == nil {
				fallback = ip
			}
		}
	}

	if fallback != nil {
		return fallback.String()
	}
	return "localhost"
}

// ipOf returns the IPv4 address of addr, nil for anything else
func ipOf(addr net.Addr) net.IP {
	var ip net.IP
	switch v := addr.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	}
	return ip.To4()
}
