// Package selectors turns a leaderboard into the list of user columns a page shows.
package selectors

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/abrezinsky/hoopsboard/internal/models"
)

// Options controls which users are displayed and in what order
type Options struct {
	Query           string
	SortBy          models.SortOption
	PinnedUserIDs   []string
	SelectedUserIDs []string
	ShowAll         bool
}

// FilterAndSortUsers applies the selection filter, the search query, the chosen sort
// and finally moves pinned users to the front. Every step is stable.
func FilterAndSortUsers(entries []models.LeaderboardEntry, opts Options) []models.LeaderboardEntry {
	selected := toSet(opts.SelectedUserIDs)
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	out := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if !opts.ShowAll {
			if _, ok := selected[e.User.ID.String()]; !ok {
				continue
			}
		}
		if query != "" && !strings.Contains(strings.ToLower(e.User.Label()), query) {
			continue
		}
		out = append(out, e)
	}

	switch opts.SortBy {
	case models.SortTotal:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].User.TotalPoints > out[j].User.TotalPoints
		})
	case models.SortStandings:
		sort.SliceStable(out, func(i, j int) bool {
			return standingsPoints(out[i]) > standingsPoints(out[j])
		})
	case models.SortName:
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].User.Label(), out[j].User.Label()) < 0
		})
	}

	return pinnedFirst(out, toSet(opts.PinnedUserIDs))
}

func standingsPoints(e models.LeaderboardEntry) float64 {
	cat, ok := e.User.Categories[models.CategoryStandings]
	if !ok {
		return 0
	}
	return cat.Points
}

func pinnedFirst(entries []models.LeaderboardEntry, pinned map[string]struct{}) []models.LeaderboardEntry {
	if len(pinned) == 0 {
		return entries
	}
	front := make([]models.LeaderboardEntry, 0, len(pinned))
	rest := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := pinned[e.User.ID.String()]; ok {
			front = append(front, e)
		} else {
			rest = append(rest, e)
		}
	}
	return append(front, rest...)
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// TogglePinned adds id to the pinned list, or removes it when already pinned
func TogglePinned(pinned []string, id string) []string {
	if Contains(pinned, id) {
		return Remove(pinned, id)
	}
	return Add(pinned, id)
}

// AddSelected appends id to the selection unless it is already selected
func AddSelected(selected []string, id string) []string {
	return Add(selected, id)
}

// RemoveSelected drops id from the selection
func RemoveSelected(selected []string, id string) []string {
	return Remove(selected, id)
}

// Contains reports whether id is in ids
func Contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add returns ids with id appended, leaving ids untouched when already present
func Add(ids []string, id string) []string {
	if Contains(ids, id) {
		return ids
	}
	out := make([]string, len(ids), len(ids)+1)
	copy(out, ids)
	return append(out, id)
}

// Remove returns a copy of ids without id
func Remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Prepend returns ids with id moved to the front, without duplicates
func Prepend(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, id)
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Dedupe removes repeated ids, keeping the first occurrence
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
