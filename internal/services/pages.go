package services

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	apperrors "github.com/abrezinsky/hoopsboard/internal/errors"
	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/page"
	"github.com/abrezinsky/hoopsboard/internal/selection"
)

// DataLoader fetches the data a page is built from
type DataLoader interface {
	Load(ctx context.Context, season string) (page.Data, error)
}

// PageSockets is the socket side of mounted pages
type PageSockets interface {
	HasClients(pageID string) bool
	ClosePage(pageID string)
}

// PageGauge is told how many pages are mounted
type PageGauge interface {
	SetActivePages(n int)
}

// MountRequest describes the browser a page is mounted for
type MountRequest struct {
	Season        string `json:"season"`
	RawQuery      string `json:"query"`
	InitialUserID string `json:"initial_user_id"`
	// Viewer is the logged-in username, empty for anonymous viewers
	Viewer string `json:"-"`
	// DeviceID scopes preferences of anonymous viewers
	DeviceID string `json:"-"`
}

// PageService owns the registry of mounted pages
type PageService struct {
	log      logger.Logger
	loader   DataLoader
	prefs    *PreferencesService
	settings *SettingsService
	cfg      page.Config
	ttl      time.Duration

	emitter  page.Emitter
	observer page.Observer
	sockets  PageSockets
	gauge    PageGauge
	newID    func() string

	mu    sync.RWMutex
	pages map[string]*page.Page
}

// NewPageService creates a new PageService
func NewPageService(log logger.Logger, loader DataLoader, prefs *PreferencesService, settings *SettingsService, cfg page.Config, ttl time.Duration) *PageService {
	return &PageService{
		log:      log,
		loader:   loader,
		prefs:    prefs,
		settings: settings,
		cfg:      cfg,
		ttl:      ttl,
		newID:    func() string { return uuid.NewString() },
		pages:    make(map[string]*page.Page),
	}
}

// SetEmitter sets where pages send their outbound messages
func (s *PageService) SetEmitter(e page.Emitter) {
	s.emitter = e
}

// SetObserver sets the instrumentation hook handed to every page
func (s *PageService) SetObserver(o page.Observer) {
	s.observer = o
}

// SetSockets sets the socket hub consulted by the reaper and closed on unmount
func (s *PageService) SetSockets(sockets PageSockets) {
	s.sockets = sockets
}

// SetGauge sets the active page gauge
func (s *PageService) SetGauge(g PageGauge) {
	s.gauge = g
}

// Mount fetches the season and mounts a new page for it
func (s *PageService) Mount(ctx context.Context, req MountRequest) (*page.Page, error) {
	season := strings.TrimSpace(req.Season)
	if season == "" {
		return nil, ErrSeasonRequired
	}

	data, err := s.loader.Load(ctx, season)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnavailable) {
			s.log.Warn("Page not mounted, contest API unavailable", "season", season, "error", err)
		}
		return nil, err
	}

	opts := page.MountOptions{
		RawQuery:      strings.TrimPrefix(req.RawQuery, "?"),
		InitialUserID: req.InitialUserID,
		LoggedIn:      req.Viewer,
		Viewer:        req.Viewer,
	}
	if s.prefs != nil {
		opts.Preferences = s.preferencesFor(req)
		pinned, err := s.prefs.LoadPinned(ctx, req.Viewer, season)
		if err != nil {
			s.log.Warn("Failed to load pinned users", "viewer", req.Viewer, "season", season, "error", err)
		}
		opts.Pinned = pinned
	}

	options := []page.Option{}
	if s.emitter != nil {
		options = append(options, page.WithEmitter(s.emitter))
	}
	if s.observer != nil {
		options = append(options, page.WithObserver(s.observer))
	}
	if s.prefs != nil {
		options = append(options, page.WithPinStore(s.prefs))
	}

	id := s.newID()
	p := page.Mount(id, data, opts, s.cfg, s.log, options...)

	s.mu.Lock()
	s.pages[id] = p
	n := len(s.pages)
	s.mu.Unlock()
	s.updateGauge(n)

	s.log.Debug("Page mounted", "page", id, "season", season, "viewer", req.Viewer)
	return p, nil
}

func (s *PageService) preferencesFor(req MountRequest) selection.Preferences {
	switch {
	case req.Viewer != "":
		return s.prefs.For("user:" + req.Viewer)
	case req.DeviceID != "":
		return s.prefs.For("device:" + req.DeviceID)
	default:
		return nil
	}
}

// Get returns a mounted page
func (s *PageService) Get(id string) (*page.Page, error) {
	s.mu.RLock()
	p, ok := s.pages[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrPageNotFound
	}
	return p, nil
}

// Unmount stops a page, closes its sockets and forgets it
func (s *PageService) Unmount(id string) error {
	s.mu.Lock()
	p, ok := s.pages[id]
	delete(s.pages, id)
	n := len(s.pages)
	s.mu.Unlock()
	if !ok {
		return ErrPageNotFound
	}

	p.Unmount()
	if s.sockets != nil {
		s.sockets.ClosePage(id)
	}
	s.updateGauge(n)
	s.log.Debug("Page unmounted", "page", id)
	return nil
}

// Count returns the number of mounted pages
func (s *PageService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// Reap unmounts pages idle for longer than the TTL that have no open socket
func (s *PageService) Reap(now time.Time) int {
	s.mu.RLock()
	idle := []string{}
	for id, p := range s.pages {
		if now.Sub(p.LastSeen()) <= s.ttl {
			continue
		}
		if s.sockets != nil && s.sockets.HasClients(id) {
			continue
		}
		idle = append(idle, id)
	}
	s.mu.RUnlock()

	reaped := 0
	for _, id := range idle {
		if s.Unmount(id) == nil {
			reaped++
		}
	}
	if reaped > 0 {
		s.log.Info("Reaped idle pages", "count", reaped)
	}
	return reaped
}

// RunReaper reaps idle pages every interval until ctx is done
func (s *PageService) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Reap(now)
		}
	}
}

// Shutdown unmounts every page
func (s *PageService) Shutdown() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.pages))
	for id := range s.pages {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	for _, id := range ids {
		_ = s.Unmount(id)
	}
}

// ShareURL returns the absolute URL of a page's current state. fallbackBase is
// used when no base_url setting is stored.
func (s *PageService) ShareURL(ctx context.Context, id, fallbackBase string) (string, error) {
	p, err := s.Get(id)
	if err != nil {
		return "", err
	}

	base := ""
	if s.settings != nil {
		base, err = s.settings.GetBaseURL(ctx)
		if err != nil {
			return "", err
		}
	}
	if base == "" {
		base = strings.TrimRight(fallbackBase, "/")
	}

	link := base + "/leaderboard/" + url.PathEscape(p.Season())
	if q := p.RawQuery(); q != "" {
		link += "?" + q
	}
	return link, nil
}

// ShareQR returns a PNG QR code of the page's share URL
func (s *PageService) ShareQR(ctx context.Context, id, fallbackBase string) ([]byte, error) {
	link, err := s.ShareURL(ctx, id, fallbackBase)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(link, qrcode.Medium, 256)
}

func (s *PageService) updateGauge(n int) {
	if s.gauge != nil {
		s.gauge.SetActivePages(n)
	}
}
