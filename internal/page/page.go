// Package page hosts one mounted leaderboard page: its selection, simulation and
// URL state, plus the shell coordinators driven by browser events.
//
// Every method locks the page, so events from the socket, the HTTP API and the
// page's own timers are applied one at a time in arrival order.
package page

import (
	"sync"
	"time"

	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/selection"
	"github.com/abrezinsky/hoopsboard/internal/shell"
	"github.com/abrezinsky/hoopsboard/internal/simulation"
	"github.com/abrezinsky/hoopsboard/internal/urlsync"
)

var timeNow = time.Now

// Outbound message types
const (
	MsgView          = "view"
	MsgReplaceURL    = "replace_url"
	MsgScrollTo      = "scroll_to"
	MsgStickyTop     = "sticky_top"
	MsgHeaderVisible = "header_visible"
	MsgPinPulse      = "pin_pulse"
)

// Emitter delivers outbound messages to the browsers showing a page
type Emitter interface {
	EmitToPage(pageID, msgType string, payload interface{})
}

// Observer receives page activity for instrumentation
type Observer interface {
	DragEnded(outcome simulation.Outcome)
	Recomputed(d time.Duration)
}

// PinStore persists the pinned users of a viewer for a season
type PinStore interface {
	SavePinned(viewer, season string, ids []string) error
}

// Data is the fetched input of a page. It is never modified.
type Data struct {
	Season    string
	Entries   []models.LeaderboardEntry
	Standings []models.StandingsTeam
}

// MountOptions describe the browser context a page is mounted in
type MountOptions struct {
	RawQuery      string
	InitialUserID string
	LoggedIn      string
	Viewer        string
	Pinned        []string
	Preferences   selection.Preferences
}

// Config holds the tunables shared by all pages
type Config struct {
	PinPulse time.Duration
	Frame    time.Duration
	Layout   shell.Layout
	Logos    *shell.LogoResolver
}

// Option configures a Page
type Option func(*Page)

// WithEmitter sets where outbound messages go
func WithEmitter(e Emitter) Option {
	return func(p *Page) { p.emitter = e }
}

// WithObserver sets the instrumentation hook
func WithObserver(o Observer) Option {
	return func(p *Page) { p.observer = o }
}

// WithPinStore sets the pin persistence
func WithPinStore(s PinStore) Option {
	return func(p *Page) { p.pins = s }
}

// Page is one mounted leaderboard page
type Page struct {
	mu sync.Mutex

	id     string
	viewer string
	data   Data
	cfg    Config
	log    logger.Logger

	selection *selection.Store
	sim       *simulation.Store
	url       *urlsync.Synchroniser

	scroll *shell.ScrollSync
	sticky shell.StickyOffset
	header *shell.HeaderAutoHide
	frames *shell.FrameScheduler
	pulse  *shell.PinPulse

	emitter  Emitter
	observer Observer
	pins     PinStore

	rawQuery string
	lastSeen time.Time
	closed   bool
}

// Mount creates a page and runs its mount sequence: default selection, one-shot
// URL read, persisted pins, viewer resolution and a first URL write.
func Mount(id string, data Data, opts MountOptions, cfg Config, log logger.Logger, options ...Option) *Page {
	if cfg.Layout == (shell.Layout{}) {
		cfg.Layout = shell.DefaultLayout
	}
	if cfg.Logos == nil {
		cfg.Logos = shell.NewLogoResolver(nil)
	}

	p := &Page{
		id:       id,
		viewer:   opts.Viewer,
		data:     data,
		cfg:      cfg,
		log:      log,
		scroll:   shell.NewScrollSync(),
		header:   shell.NewHeaderAutoHide(),
		frames:   shell.NewFrameScheduler(cfg.Frame),
		lastSeen: timeNow(),
	}
	for _, opt := range options {
		opt(p)
	}
	p.pulse = shell.NewPinPulse(cfg.PinPulse, p.endPulse)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.selection = selection.New(log, opts.Preferences)
	p.sim = simulation.New(data.Standings,
		simulation.WithWhatIf(func() bool { return p.selection.State().WhatIfEnabled() }),
		simulation.WithConfirmHandler(p.selection.RequestWhatIf),
	)
	p.url = urlsync.New(log, p.selection, urlsync.HistoryFunc(p.replaceState))

	p.selection.InitSelection(data.Entries, opts.InitialUserID)
	p.url.Read(opts.RawQuery)
	if len(opts.Pinned) > 0 {
		p.selection.SetPinned(opts.Pinned)
	}
	p.selection.ResolveViewer(data.Entries, opts.LoggedIn, opts.InitialUserID, p.url.URLHadUsers())
	p.sim.Sync()
	p.url.Flush()

	return p
}

// ID returns the page id
func (p *Page) ID() string {
	return p.id
}

// Season returns the season slug the page shows
func (p *Page) Season() string {
	return p.data.Season
}

// RawQuery returns the page's current query string
func (p *Page) RawQuery() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rawQuery
}

// State returns the current view state
func (p *Page) State() selection.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection.State()
}

// LastSeen returns when the page last received an event
func (p *Page) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Touch marks the page as active
func (p *Page) Touch() {
	p.mu.Lock()
	p.lastSeen = timeNow()
	p.mu.Unlock()
}

// Closed reports whether the page has been unmounted
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Unmount stops the page's timers. Later events are ignored.
func (p *Page) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.pulse.Stop()
	p.frames.Stop()
}

// View returns the current projection
func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.project()
}

func (p *Page) replaceState(rawQuery string) error {
	p.rawQuery = rawQuery
	p.emit(MsgReplaceURL, map[string]string{"query": rawQuery})
	return nil
}

func (p *Page) emit(msgType string, payload interface{}) {
	if p.emitter == nil || p.closed {
		return
	}
	p.emitter.EmitToPage(p.id, msgType, payload)
}

func (p *Page) emitView() {
	p.emit(MsgView, p.project())
}

func (p *Page) endPulse(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.selection.ClearPinPulse(id)
	p.emit(MsgPinPulse, map[string]interface{}{"id": id, "active": false})
}

func (p *Page) savePins() {
	if p.pins == nil || p.viewer == "" {
		return
	}
	if err := p.pins.SavePinned(p.viewer, p.data.Season, p.selection.State().PinnedUserIDs); err != nil {
		p.log.Warn("Failed to persist pinned users", "page", p.id, "error", err)
	}
}
