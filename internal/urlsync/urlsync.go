// Package urlsync mirrors part of the view state into the page's query string.
//
// The query is read once when a page mounts. After that every state change is
// written back through a History sink that replaces the current entry.
package urlsync

import (
	"net/url"
	"strings"

	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/selection"
)

// Query parameter names
const (
	ParamSection = "section"
	ParamMode    = "mode"
	ParamUsers   = "users"
	ParamUser    = "user"
	ParamSortBy  = "sortBy"
	ParamQuery   = "q"
	ParamWhatIf  = "wi"
	ParamAll     = "all"
)

// ownedParams lists the parameters the synchroniser writes, in output order
var ownedParams = []string{
	ParamSection, ParamUsers, ParamUser, ParamWhatIf, ParamAll, ParamMode, ParamSortBy, ParamQuery,
}

// History replaces the current URL's query without adding a navigation entry
type History interface {
	ReplaceState(rawQuery string) error
}

// HistoryFunc adapts a function to History
type HistoryFunc func(rawQuery string) error

// ReplaceState calls f
func (f HistoryFunc) ReplaceState(rawQuery string) error {
	return f(rawQuery)
}

// Synchroniser links a selection store to a History
type Synchroniser struct {
	log     logger.Logger
	store   *selection.Store
	history History

	foreign     url.Values
	foreignKeys []string
	hydrated    bool
	errLogged   bool
	urlHadUsers bool
}

// New creates a Synchroniser and subscribes it to store changes. Nothing is
// written until Read has run.
func New(log logger.Logger, store *selection.Store, history History) *Synchroniser {
	s := &Synchroniser{
		log:     log,
		store:   store,
		history: history,
		foreign: url.Values{},
	}
	store.Subscribe(s.Write)
	return s
}

// Read applies the query parameters to the store. Only the first call has any effect.
func (s *Synchroniser) Read(rawQuery string) {
	if s.hydrated {
		return
	}
	defer func() { s.hydrated = true }()

	q, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		s.logOnce("Failed to parse page URL", err)
	}
	s.keepForeign(rawQuery, q)

	if v, ok := models.ParseSection(q.Get(ParamSection)); ok {
		s.store.SetSection(v)
	}
	if v, ok := models.ParseMode(q.Get(ParamMode)); ok {
		s.store.SetMode(v)
	}

	if raw, ok := rawParam(rawQuery, ParamUsers); ok {
		s.urlHadUsers = true
		s.store.SetSelected(splitIDs(raw))
	} else if raw, ok := rawParam(rawQuery, ParamUser); ok {
		s.store.SetSelected(splitIDs(raw))
	}

	if q.Has(ParamSortBy) {
		s.store.SetSortBy(models.SortOption(q.Get(ParamSortBy)))
	}
	if q.Has(ParamQuery) {
		s.store.SetQuery(q.Get(ParamQuery))
	}
	if q.Has(ParamWhatIf) {
		s.store.SetWhatIfEnabled(q.Get(ParamWhatIf) == "1")
	}
	if q.Has(ParamAll) {
		s.store.SetShowAll(q.Get(ParamAll) == "1")
	}
}

// Hydrated reports whether the initial read has completed
func (s *Synchroniser) Hydrated() bool {
	return s.hydrated
}

// URLHadUsers reports whether the initial URL carried a users parameter
func (s *Synchroniser) URLHadUsers() bool {
	return s.urlHadUsers
}

// Write pushes st to the history sink. It is a no-op before Read.
func (s *Synchroniser) Write(st selection.State) {
	if !s.hydrated {
		return
	}
	if err := s.history.ReplaceState(s.Encode(st)); err != nil {
		s.logOnce("Failed to update page URL", err)
	}
}

// Flush writes the store's current state
func (s *Synchroniser) Flush() {
	s.Write(s.store.State())
}

// Encode renders st as a query string, keeping unrelated parameters after ours
func (s *Synchroniser) Encode(st selection.State) string {
	return Encode(st) + s.encodeForeign()
}

// Encode renders the owned parameters of st in a fixed order
func Encode(st selection.State) string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(value)
	}

	add(ParamSection, url.QueryEscape(string(st.Section)))
	if len(st.SelectedUserIDs) > 0 {
		add(ParamUsers, joinIDs(st.SelectedUserIDs))
	}
	if len(st.SelectedUserIDs) == 1 {
		add(ParamUser, url.QueryEscape(st.SelectedUserIDs[0]))
	}
	add(ParamWhatIf, flag(st.WhatIfEnabled()))
	add(ParamAll, flag(st.ShowAll))
	add(ParamMode, url.QueryEscape(string(st.Mode)))
	add(ParamSortBy, url.QueryEscape(string(st.SortBy)))
	if st.Query != "" {
		add(ParamQuery, url.QueryEscape(st.Query))
	}
	return b.String()
}

func (s *Synchroniser) encodeForeign() string {
	var b strings.Builder
	for _, k := range s.foreignKeys {
		for _, v := range s.foreign[k] {
			b.WriteByte('&')
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// keepForeign remembers parameters we do not own, in their original order
func (s *Synchroniser) keepForeign(rawQuery string, q url.Values) {
	owned := make(map[string]bool, len(ownedParams))
	for _, p := range ownedParams {
		owned[p] = true
	}
	for _, pair := range strings.Split(strings.TrimPrefix(rawQuery, "?"), "&") {
		key, _, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(key)
		if err != nil || key == "" || owned[key] {
			continue
		}
		if _, seen := s.foreign[key]; seen {
			continue
		}
		s.foreign[key] = q[key]
		s.foreignKeys = append(s.foreignKeys, key)
	}
}

func (s *Synchroniser) logOnce(msg string, err error) {
	if s.errLogged {
		return
	}
	s.errLogged = true
	s.log.Warn(msg, "error", err)
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// rawParam returns the first value of key with its escaping intact. Id lists are
// split on literal commas before unescaping, so an escaped comma stays inside its id.
func rawParam(rawQuery, key string) (string, bool) {
	for _, pair := range strings.Split(strings.TrimPrefix(rawQuery, "?"), "&") {
		k, v, _ := strings.Cut(pair, "=")
		if name, err := url.QueryUnescape(k); err == nil && name == key {
			return v, true
		}
	}
	return "", false
}

func splitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if id, err := url.QueryUnescape(p); err == nil {
			p = id
		}
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinIDs(ids []string) string {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.QueryEscape(id)
	}
	return strings.Join(escaped, ",")
}
