// Package shell holds the non-visual parts of the leaderboard grid: which columns and
// rows are shown, scroll and sticky-header coordination, logo lookup and the small
// timing state machines the browser script reacts to.
package shell

import (
	"sort"

	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/selection"
	"github.com/abrezinsky/hoopsboard/internal/selectors"
)

// DisplayedUsers is the column projection: re-scored entries filtered and sorted
// by the view state.
func DisplayedUsers(entries []models.LeaderboardEntry, st selection.State) []models.LeaderboardEntry {
	return selectors.FilterAndSortUsers(entries, selectors.Options{
		Query:           st.Query,
		SortBy:          st.SortBy,
		PinnedUserIDs:   st.PinnedUserIDs,
		SelectedUserIDs: st.SelectedUserIDs,
		ShowAll:         st.ShowAll,
	})
}

// StandingsRow is one team row of a conference table
type StandingsRow struct {
	ID             string `json:"id"`
	Team           string `json:"team"`
	Conference     string `json:"conference"`
	Position       *int   `json:"position"`
	ActualPosition *int   `json:"actual_position"`
	Changed        bool   `json:"changed"`
}

// StandingsRows projects a conference. A non-empty order is used as is; otherwise
// the standings are filtered by conference prefix.
func StandingsRows(conference string, order []models.OrderedTeam, standings []models.StandingsTeam, simActual map[string]int, whatIf bool) []StandingsRow {
	teams := order
	if len(teams) == 0 {
		teams = fallbackOrder(conference, standings)
	}

	rows := make([]StandingsRow, 0, len(teams))
	for _, t := range teams {
		row := StandingsRow{
			ID:             t.ID,
			Team:           t.Team,
			Conference:     t.Conference,
			Position:       t.ActualPosition,
			ActualPosition: t.ActualPosition,
		}
		if whatIf {
			if pos, ok := simActual[t.Team]; ok {
				row.Position = models.IntPtr(pos)
				row.Changed = t.ActualPosition == nil || *t.ActualPosition != pos
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func fallbackOrder(conference string, standings []models.StandingsTeam) []models.OrderedTeam {
	west := models.IsWest(conference)
	prefix := "E-"
	if west {
		prefix = "W-"
	}
	var out []models.OrderedTeam
	for _, t := range standings {
		if (west && models.IsWest(t.Conference)) || (!west && models.IsEast(t.Conference)) {
			out = append(out, models.OrderedTeam{StandingsTeam: t, ID: prefix + t.Team})
		}
	}
	return out
}

// StandingsCell is one user's prediction for a team
type StandingsCell struct {
	PredictedPosition *int    `json:"predicted_position"`
	Points            float64 `json:"points"`
	Found             bool    `json:"found"`
}

// StandingsCellFor finds the user's standings prediction for team
func StandingsCellFor(u models.User, team string) StandingsCell {
	cat, ok := u.Categories[models.CategoryStandings]
	if !ok {
		return StandingsCell{}
	}
	for _, p := range cat.Predictions {
		if p.Team == team {
			return StandingsCell{PredictedPosition: p.PredictedPosition, Points: p.Points, Found: true}
		}
	}
	return StandingsCell{}
}

// QuestionRow is one question of the awards or props grid
type QuestionRow struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsFinalized bool   `json:"is_finalized"`
}

// QuestionRows collects the questions of a category across the displayed users,
// sorted by text.
func QuestionRows(users []models.LeaderboardEntry, categoryKey string) []QuestionRow {
	byID := map[string]QuestionRow{}
	for _, e := range users {
		for _, p := range e.User.Categories[categoryKey].Predictions {
			id := p.QuestionID.String()
			if id == "" {
				continue
			}
			if _, ok := byID[id]; ok {
				continue
			}
			byID[id] = QuestionRow{ID: id, Text: p.QuestionText, IsFinalized: p.IsFinalized}
		}
	}

	rows := make([]QuestionRow, 0, len(byID))
	for _, r := range byID {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Text != rows[j].Text {
			return rows[i].Text < rows[j].Text
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

// FindPrediction returns the user's answer to a question in the given category
func FindPrediction(u models.User, categoryKey, questionID string) (models.Prediction, bool) {
	for _, p := range u.Categories[categoryKey].Predictions {
		if p.QuestionID.String() == questionID {
			return p, true
		}
	}
	return models.Prediction{}, false
}

// DragEnabled reports whether the conference tables accept drags
func DragEnabled(st selection.State) bool {
	return st.WhatIfEnabled()
}
