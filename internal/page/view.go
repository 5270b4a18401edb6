package page

import (
	"time"

	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/selection"
	"github.com/abrezinsky/hoopsboard/internal/selectors"
	"github.com/abrezinsky/hoopsboard/internal/shell"
)

// View is everything the browser needs to render the page
type View struct {
	ID             string                 `json:"id"`
	Season         string                 `json:"season"`
	Query          string                 `json:"query"`
	State          selection.State        `json:"state"`
	WhatIf         string                 `json:"what_if"`
	ConfirmPending bool                   `json:"confirm_pending"`
	DragEnabled    bool                   `json:"drag_enabled"`
	Layout         shell.Layout           `json:"layout"`
	StickyTop      float64                `json:"sticky_top"`
	HeaderVisible  bool                   `json:"header_visible"`
	Columns        []ColumnView           `json:"columns"`
	AllUsers       []UserOption           `json:"all_users"`
	West           []StandingsRowView     `json:"west"`
	East           []StandingsRowView     `json:"east"`
	Questions      []QuestionRowView      `json:"questions"`
	Totals         map[string]ColumnTotal `json:"totals"`
}

// ColumnView is one user column
type ColumnView struct {
	UserID          string       `json:"user_id"`
	Label           string       `json:"label"`
	Rank            int          `json:"rank"`
	TotalPoints     float64      `json:"total_points"`
	OrigTotalPoints *float64     `json:"orig_total_points,omitempty"`
	SectionPoints   float64      `json:"section_points"`
	SectionMax      float64      `json:"section_max"`
	Pinned          bool         `json:"pinned"`
	Pulsing         bool         `json:"pulsing"`
	Sticky          shell.Column `json:"sticky"`
}

// ColumnTotal is the per-user summary line
type ColumnTotal struct {
	TotalPoints float64 `json:"total_points"`
	Delta       float64 `json:"delta"`
}

// UserOption is an entry of the player picker
type UserOption struct {
	UserID   string `json:"user_id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// StandingsRowView is a team row with one cell per column
type StandingsRowView struct {
	shell.StandingsRow
	Logo  string                `json:"logo"`
	Cells []shell.StandingsCell `json:"cells"`
}

// QuestionRowView is a question row with one answer per column
type QuestionRowView struct {
	shell.QuestionRow
	Cells []*models.Prediction `json:"cells"`
}

func (p *Page) project() View {
	st := p.selection.State()

	entries := p.data.Entries
	if st.WhatIfEnabled() {
		start := time.Now()
		entries = p.sim.WithSimTotals(entries)
		if p.observer != nil {
			p.observer.Recomputed(time.Since(start))
		}
	}
	users := shell.DisplayedUsers(entries, st)

	v := View{
		ID:             p.id,
		Season:         p.data.Season,
		Query:          p.rawQuery,
		State:          st,
		WhatIf:         st.WhatIf.String(),
		ConfirmPending: st.ConfirmPending(),
		DragEnabled:    shell.DragEnabled(st),
		Layout:         p.cfg.Layout,
		StickyTop:      p.sticky.Top(),
		HeaderVisible:  p.header.Visible(),
		Columns:        p.columns(users, st),
		AllUsers:       userOptions(p.data.Entries, st.SelectedUserIDs),
		Totals:         make(map[string]ColumnTotal, len(users)),
	}
	for _, e := range users {
		total := ColumnTotal{TotalPoints: e.User.TotalPoints}
		if e.OrigTotalPoints != nil {
			total.Delta = e.User.TotalPoints - *e.OrigTotalPoints
		}
		v.Totals[e.User.ID.String()] = total
	}

	switch st.Section {
	case models.SectionStandings:
		simActual := p.sim.SimActualMap()
		if !st.CollapsedWest {
			v.West = p.standingsRows(models.ConferenceWest, p.sim.WestOrder(), simActual, st, users)
		}
		if !st.CollapsedEast {
			v.East = p.standingsRows(models.ConferenceEast, p.sim.EastOrder(), simActual, st, users)
		}
	default:
		v.Questions = questionRows(users, st.Section.CategoryKey())
	}
	return v
}

func (p *Page) columns(users []models.LeaderboardEntry, st selection.State) []ColumnView {
	catKey := st.Section.CategoryKey()
	cols := make([]ColumnView, 0, len(users))
	for i, e := range users {
		id := e.User.ID.String()
		pinned := selectors.Contains(st.PinnedUserIDs, id)
		cat := e.User.Categories[catKey]
		cols = append(cols, ColumnView{
			UserID:          id,
			Label:           e.User.Label(),
			Rank:            e.Rank,
			TotalPoints:     e.User.TotalPoints,
			OrigTotalPoints: e.OrigTotalPoints,
			SectionPoints:   cat.Points,
			SectionMax:      cat.MaxPoints,
			Pinned:          pinned,
			Pulsing:         st.PinPulseID == id,
			Sticky:          p.cfg.Layout.UserColumn(i, pinned),
		})
	}
	return cols
}

func (p *Page) standingsRows(conference string, order []models.OrderedTeam, simActual map[string]int, st selection.State, users []models.LeaderboardEntry) []StandingsRowView {
	rows := shell.StandingsRows(conference, order, p.data.Standings, simActual, st.WhatIfEnabled())
	out := make([]StandingsRowView, len(rows))
	for i, r := range rows {
		cells := make([]shell.StandingsCell, len(users))
		for j, e := range users {
			cells[j] = shell.StandingsCellFor(e.User, r.Team)
		}
		out[i] = StandingsRowView{StandingsRow: r, Logo: p.cfg.Logos.TeamURL(r.Team), Cells: cells}
	}
	return out
}

func questionRows(users []models.LeaderboardEntry, catKey string) []QuestionRowView {
	rows := shell.QuestionRows(users, catKey)
	out := make([]QuestionRowView, len(rows))
	for i, r := range rows {
		cells := make([]*models.Prediction, len(users))
		for j, e := range users {
			if pred, ok := shell.FindPrediction(e.User, catKey, r.ID); ok {
				cells[j] = &pred
			}
		}
		out[i] = QuestionRowView{QuestionRow: r, Cells: cells}
	}
	return out
}

func userOptions(entries []models.LeaderboardEntry, selected []string) []UserOption {
	out := make([]UserOption, len(entries))
	for i, e := range entries {
		id := e.User.ID.String()
		out[i] = UserOption{UserID: id, Label: e.User.Label(), Selected: selectors.Contains(selected, id)}
	}
	return out
}
