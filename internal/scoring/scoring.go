// Package scoring holds the pure functions that grade standings predictions and
// re-derive leaderboard totals under a simulated final ordering.
package scoring

import (
	"sort"

	"github.com/abrezinsky/hoopsboard/internal/models"
)

// Points awarded for a standings prediction.
const (
	ExactPoints    = 3
	OffByOnePoints = 1
)

// StandingPoints grades one standings slot: 3 for an exact hit, 1 when off by one,
// 0 otherwise or when either position is unknown.
func StandingPoints(predicted, actual *int) int {
	if predicted == nil || actual == nil {
		return 0
	}
	diff := *predicted - *actual
	switch {
	case diff == 0:
		return ExactPoints
	case diff == 1 || diff == -1:
		return OffByOnePoints
	default:
		return 0
	}
}

// ReorderList moves the element at from to index to and returns a new slice.
// Out of range indices are clamped; the input is never modified.
func ReorderList[T any](list []T, from, to int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if len(out) == 0 {
		return out
	}
	from = clamp(from, 0, len(out)-1)
	to = clamp(to, 0, len(out)-1)
	if from == to {
		return out
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SimulatedPositions maps each team to its 1-based index within its conference list.
func SimulatedPositions(west, east []models.OrderedTeam) map[string]int {
	positions := make(map[string]int, len(west)+len(east))
	for i, t := range west {
		positions[t.Team] = i + 1
	}
	for i, t := range east {
		positions[t.Team] = i + 1
	}
	return positions
}

// CalculateSimulatedTotals re-grades every entry's standings predictions against the
// given conference orderings and returns a new leaderboard, resorted and re-ranked.
// Award and prop categories keep their points. Input entries are not modified.
func CalculateSimulatedTotals(entries []models.LeaderboardEntry, west, east []models.OrderedTeam) []models.LeaderboardEntry {
	positions := SimulatedPositions(west, east)

	out := make([]models.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		user := entry.User.Clone()

		orig := entry.OrigTotalPoints
		if orig == nil {
			total := entry.User.TotalPoints
			orig = &total
		} else {
			v := *orig
			orig = &v
		}

		if cat, ok := user.Categories[models.CategoryStandings]; ok {
			var simulated float64
			for i := range cat.Predictions {
				p := &cat.Predictions[i]
				var simPos *int
				if pos, found := positions[p.Team]; found && p.Team != "" {
					simPos = &pos
				}
				p.Points = float64(StandingPoints(p.PredictedPosition, simPos))
				simulated += p.Points
			}
			user.TotalPoints = user.TotalPoints - cat.Points + simulated
			cat.Points = simulated
			user.Categories[models.CategoryStandings] = cat
		}

		out = append(out, models.LeaderboardEntry{
			User:            user,
			Rank:            entry.Rank,
			OrigTotalPoints: orig,
		})
	}

	SortAndRank(out)
	return out
}

// SortAndRank orders entries by total points descending, ties broken by username
// ascending, and assigns ranks 1..N in that order.
func SortAndRank(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].User, entries[j].User
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		return a.Username < b.Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
