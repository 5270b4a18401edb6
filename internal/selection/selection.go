// Package selection holds the view state of a leaderboard page: which section and
// users are shown, how they are sorted, what is pinned, and the What-If gate.
package selection

import (
	"sort"
	"strings"

	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/selectors"
)

// TooltipSeenKey is the persisted flag recording that the mobile drag tooltip was dismissed
const TooltipSeenKey = "nba-mobile-drag-tooltip-seen"

// autoSelectCount is how many top-ranked users are selected on first load
const autoSelectCount = 4

// WhatIf is the state of the What-If simulation gate
type WhatIf int

const (
	WhatIfOff WhatIf = iota
	WhatIfConfirmPending
	WhatIfOn
)

func (w WhatIf) String() string {
	switch w {
	case WhatIfConfirmPending:
		return "confirm_pending"
	case WhatIfOn:
		return "on"
	default:
		return "off"
	}
}

// Preferences persists small per-viewer flags
type Preferences interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// State is a snapshot of the view state
type State struct {
	Section           models.Section    `json:"section"`
	Mode              models.Mode       `json:"mode"`
	SortBy            models.SortOption `json:"sort_by"`
	Query             string            `json:"query"`
	SelectedUserIDs   []string          `json:"selected_user_ids"`
	PinnedUserIDs     []string          `json:"pinned_user_ids"`
	WhatIf            WhatIf            `json:"-"`
	ShowAll           bool              `json:"show_all"`
	CollapsedWest     bool              `json:"collapsed_west"`
	CollapsedEast     bool              `json:"collapsed_east"`
	PinPulseID        string            `json:"pin_pulse_id,omitempty"`
	ShowManagePlayers bool              `json:"show_manage_players"`
	TooltipSeen       bool              `json:"tooltip_seen"`
}

// WhatIfEnabled reports whether the simulation is active
func (s State) WhatIfEnabled() bool {
	return s.WhatIf == WhatIfOn
}

// ConfirmPending reports whether the What-If confirmation modal is open
func (s State) ConfirmPending() bool {
	return s.WhatIf == WhatIfConfirmPending
}

func (s State) clone() State {
	out := s
	out.SelectedUserIDs = copyIDs(s.SelectedUserIDs)
	out.PinnedUserIDs = copyIDs(s.PinnedUserIDs)
	return out
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Store owns the view state of one page. It is not safe for concurrent use; the
// owning page serialises access.
type Store struct {
	log       logger.Logger
	prefs     Preferences
	state     State
	listeners []func(State)

	viewerResolved  bool
	initialResolved bool
}

// New creates a Store with default view state and reads the tooltip flag.
func New(log logger.Logger, prefs Preferences) *Store {
	s := &Store{
		log:   log,
		prefs: prefs,
		state: State{
			Section:         models.SectionStandings,
			Mode:            models.ModeCompare,
			SortBy:          models.SortTotal,
			SelectedUserIDs: []string{},
			PinnedUserIDs:   []string{},
		},
	}
	s.state.TooltipSeen = s.readTooltipSeen()
	return s
}

// State returns a copy of the current view state
func (s *Store) State() State {
	return s.state.clone()
}

// Subscribe registers fn to be called after every state change
func (s *Store) Subscribe(fn func(State)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Store) update(fn func(*State)) {
	next := s.state.clone()
	fn(&next)
	s.state = next
	for _, l := range s.listeners {
		l(s.state.clone())
	}
}

// SetSection changes the displayed section
func (s *Store) SetSection(section models.Section) {
	if _, ok := models.ParseSection(string(section)); !ok {
		return
	}
	s.update(func(st *State) { st.Section = section })
}

// SetMode switches between showcase and compare
func (s *Store) SetMode(mode models.Mode) {
	if _, ok := models.ParseMode(string(mode)); !ok {
		return
	}
	s.update(func(st *State) { st.Mode = mode })
}

// SetSortBy changes the column ordering. The value is not validated; unknown
// criteria keep the leaderboard order.
func (s *Store) SetSortBy(sortBy models.SortOption) {
	s.update(func(st *State) { st.SortBy = sortBy })
}

// SetQuery changes the search filter
func (s *Store) SetQuery(q string) {
	s.update(func(st *State) { st.Query = q })
}

// SetSelected replaces the selected users
func (s *Store) SetSelected(ids []string) {
	ids = selectors.Dedupe(ids)
	s.update(func(st *State) { st.SelectedUserIDs = ids })
}

// AddSelected selects one more user
func (s *Store) AddSelected(id string) {
	if id == "" {
		return
	}
	s.update(func(st *State) { st.SelectedUserIDs = selectors.AddSelected(st.SelectedUserIDs, id) })
}

// RemoveSelected deselects a user
func (s *Store) RemoveSelected(id string) {
	s.update(func(st *State) { st.SelectedUserIDs = selectors.RemoveSelected(st.SelectedUserIDs, id) })
}

// SetPinned replaces the pinned users
func (s *Store) SetPinned(ids []string) {
	ids = selectors.Dedupe(ids)
	s.update(func(st *State) { st.PinnedUserIDs = ids })
}

// TogglePin pins or unpins a user and starts the pin pulse for it
func (s *Store) TogglePin(id string) {
	if id == "" {
		return
	}
	s.update(func(st *State) {
		st.PinnedUserIDs = selectors.TogglePinned(st.PinnedUserIDs, id)
		st.PinPulseID = id
	})
}

// ClearPinPulse ends the pulse animation if it still belongs to id
func (s *Store) ClearPinPulse(id string) {
	if s.state.PinPulseID != id {
		return
	}
	s.update(func(st *State) { st.PinPulseID = "" })
}

// SetShowAll toggles between all users and only the selected ones
func (s *Store) SetShowAll(all bool) {
	s.update(func(st *State) { st.ShowAll = all })
}

// SetCollapsedWest collapses or expands the Western conference rows
func (s *Store) SetCollapsedWest(v bool) {
	s.update(func(st *State) { st.CollapsedWest = v })
}

// SetCollapsedEast collapses or expands the Eastern conference rows
func (s *Store) SetCollapsedEast(v bool) {
	s.update(func(st *State) { st.CollapsedEast = v })
}

// SetShowManagePlayers opens or closes the player picker
func (s *Store) SetShowManagePlayers(v bool) {
	s.update(func(st *State) { st.ShowManagePlayers = v })
}

// SetWhatIfEnabled forces the simulation on or off, skipping confirmation
func (s *Store) SetWhatIfEnabled(on bool) {
	next := WhatIfOff
	if on {
		next = WhatIfOn
	}
	s.update(func(st *State) { st.WhatIf = next })
}

// RequestWhatIf opens the confirmation on a first drag attempt
func (s *Store) RequestWhatIf() {
	if s.state.WhatIf != WhatIfOff {
		return
	}
	s.update(func(st *State) { st.WhatIf = WhatIfConfirmPending })
}

// ConfirmWhatIf accepts the pending confirmation
func (s *Store) ConfirmWhatIf() {
	if s.state.WhatIf != WhatIfConfirmPending {
		return
	}
	s.update(func(st *State) { st.WhatIf = WhatIfOn })
}

// CancelWhatIf dismisses the pending confirmation
func (s *Store) CancelWhatIf() {
	if s.state.WhatIf != WhatIfConfirmPending {
		return
	}
	s.update(func(st *State) { st.WhatIf = WhatIfOff })
}

// ToggleWhatIf turns an active simulation off, or asks for confirmation to turn it on
func (s *Store) ToggleWhatIf() {
	switch s.state.WhatIf {
	case WhatIfOn:
		s.update(func(st *State) { st.WhatIf = WhatIfOff })
	case WhatIfOff:
		s.RequestWhatIf()
	}
}

// DismissTooltip records that the mobile drag tooltip has been seen
func (s *Store) DismissTooltip() {
	if s.prefs != nil {
		if err := s.prefs.Set(TooltipSeenKey, "true"); err != nil {
			s.log.Debug("Failed to persist tooltip flag", "error", err)
		}
	}
	s.update(func(st *State) { st.TooltipSeen = true })
}

func (s *Store) readTooltipSeen() bool {
	if s.prefs == nil {
		return false
	}
	v, err := s.prefs.Get(TooltipSeenKey)
	if err != nil {
		return false
	}
	return v == "true"
}

// DefaultSelection returns the ids selected on first load: the initial user followed
// by the top four entries by server rank, without duplicates.
func DefaultSelection(entries []models.LeaderboardEntry, initialUserID string) []string {
	ranked := append([]models.LeaderboardEntry(nil), entries...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })

	ids := make([]string, 0, autoSelectCount+1)
	ids = append(ids, initialUserID)
	for i := 0; i < len(ranked) && i < autoSelectCount; i++ {
		ids = append(ids, ranked[i].User.ID.String())
	}
	return selectors.Dedupe(ids)
}

// InitSelection seeds the selection from the leaderboard on mount
func (s *Store) InitSelection(entries []models.LeaderboardEntry, initialUserID string) {
	s.SetSelected(DefaultSelection(entries, initialUserID))
}

// ResolveViewer applies the pin policy once the leaderboard is known: the logged-in
// user, when found in entries, is pinned and (unless the URL named users) moved to
// the front of the selection. Without a logged-in match the initial user gets the
// same treatment. Each branch runs at most once.
func (s *Store) ResolveViewer(entries []models.LeaderboardEntry, loggedIn, initialUserID string, urlHadUsers bool) {
	if !s.viewerResolved && loggedIn != "" {
		if id, ok := findUser(entries, loggedIn); ok {
			s.viewerResolved = true
			s.pinAndPrepend(id, urlHadUsers)
			return
		}
	}
	if s.viewerResolved || s.initialResolved || initialUserID == "" {
		return
	}
	s.initialResolved = true
	s.pinAndPrepend(initialUserID, urlHadUsers)
}

func (s *Store) pinAndPrepend(id string, urlHadUsers bool) {
	s.update(func(st *State) {
		st.PinnedUserIDs = selectors.Add(st.PinnedUserIDs, id)
		if !urlHadUsers {
			st.SelectedUserIDs = selectors.Prepend(st.SelectedUserIDs, id)
		}
	})
}

// findUser matches a logged-in identity against entry ids and usernames
func findUser(entries []models.LeaderboardEntry, who string) (string, bool) {
	for _, e := range entries {
		if e.User.ID.String() == who || strings.EqualFold(e.User.Username, who) {
			return e.User.ID.String(), true
		}
	}
	return "", false
}
