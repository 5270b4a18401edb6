package page_test

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/abrezinsky/hoopsboard/internal/errors"
	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/page"
	"github.com/abrezinsky/hoopsboard/internal/shell"
	"github.com/abrezinsky/hoopsboard/internal/simulation"
)

type sent struct {
	pageID  string
	msgType string
	payload interface{}
}

type captureEmitter struct {
	mu   sync.Mutex
	msgs []sent
}

func (c *captureEmitter) EmitToPage(pageID, msgType string, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, sent{pageID, msgType, payload})
}

func (c *captureEmitter) ofType(msgType string) []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []sent
	for _, m := range c.msgs {
		if m.msgType == msgType {
			out = append(out, m)
		}
	}
	return out
}

type countingObserver struct {
	mu         sync.Mutex
	outcomes   []simulation.Outcome
	recomputes int
}

func (o *countingObserver) DragEnded(outcome simulation.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *countingObserver) Recomputed(time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recomputes++
}

type pinRecorder struct {
	viewer, season string
	ids            []string
}

func (r *pinRecorder) SavePinned(viewer, season string, ids []string) error {
	r.viewer, r.season, r.ids = viewer, season, ids
	return nil
}

func data() page.Data {
	return page.Data{
		Season: "2024-25",
		Standings: []models.StandingsTeam{
			{Team: "Thunder", Conference: "West", ActualPosition: models.IntPtr(1)},
			{Team: "Rockets", Conference: "West", ActualPosition: models.IntPtr(2)},
			{Team: "Cavaliers", Conference: "East", ActualPosition: models.IntPtr(1)},
		},
		Entries: []models.LeaderboardEntry{
			{Rank: 1, User: models.User{ID: "1", Username: "ann", TotalPoints: 8, Categories: map[string]models.Category{
				models.CategoryStandings: {Points: 6, MaxPoints: 9, Predictions: []models.Prediction{
					{Team: "Thunder", PredictedPosition: models.IntPtr(1), Points: 3},
					{Team: "Cavaliers", PredictedPosition: models.IntPtr(1), Points: 3},
				}},
				models.CategoryAwards: {Points: 2, Predictions: []models.Prediction{
					{QuestionID: "10", QuestionText: "MVP", Answer: "SGA", Points: 2},
				}},
			}}},
			{Rank: 2, User: models.User{ID: "2", Username: "ben", TotalPoints: 4, Categories: map[string]models.Category{
				models.CategoryStandings: {Points: 4, MaxPoints: 9, Predictions: []models.Prediction{
					{Team: "Rockets", PredictedPosition: models.IntPtr(1), Points: 1},
					{Team: "Cavaliers", PredictedPosition: models.IntPtr(1), Points: 3},
				}},
			}}},
			{Rank: 3, User: models.User{ID: "3", Username: "cal", TotalPoints: 1}},
		},
	}
}

func mount(t *testing.T, opts page.MountOptions, extra ...page.Option) (*page.Page, *captureEmitter) {
	t.Helper()
	em := &captureEmitter{}
	options := append([]page.Option{page.WithEmitter(em)}, extra...)
	p := page.Mount("page-1", data(), opts, page.Config{PinPulse: 20 * time.Millisecond, Frame: 5 * time.Millisecond}, logger.New(), options...)
	t.Cleanup(p.Unmount)
	return p, em
}

func TestMount_DefaultsAndFirstWrite(t *testing.T) {
	p, em := mount(t, page.MountOptions{})

	st := p.State()
	if !reflect.DeepEqual(st.SelectedUserIDs, []string{"1", "2", "3"}) {
		t.Errorf("expected the top users selected, got %v", st.SelectedUserIDs)
	}
	if p.RawQuery() != "section=standings&users=1,2,3&wi=0&all=0&mode=compare&sortBy=total" {
		t.Errorf("unexpected query %q", p.RawQuery())
	}
	if len(em.ofType(page.MsgReplaceURL)) != 1 {
		t.Errorf("expected exactly one URL write during mount, got %d", len(em.ofType(page.MsgReplaceURL)))
	}
}

func TestMount_URLAndViewer(t *testing.T) {
	p, _ := mount(t, page.MountOptions{
		RawQuery: "section=awards&users=3&wi=1",
		LoggedIn: "ben",
	})

	st := p.State()
	if st.Section != models.SectionAwards || !st.WhatIfEnabled() {
		t.Errorf("unexpected state %+v", st)
	}
	if !reflect.DeepEqual(st.SelectedUserIDs, []string{"3"}) {
		t.Errorf("expected URL users kept, got %v", st.SelectedUserIDs)
	}
	if !reflect.DeepEqual(st.PinnedUserIDs, []string{"2"}) {
		t.Errorf("expected the viewer pinned, got %v", st.PinnedUserIDs)
	}
}

func TestMount_PersistedPins(t *testing.T) {
	p, _ := mount(t, page.MountOptions{Pinned: []string{"3"}, LoggedIn: "ann"})

	if got := p.State().PinnedUserIDs; !reflect.DeepEqual(got, []string{"3", "1"}) {
		t.Errorf("expected persisted and viewer pins, got %v", got)
	}
}

func TestDragEnd_GatedThenConfirmed(t *testing.T) {
	obs := &countingObserver{}
	p, _ := mount(t, page.MountOptions{}, page.WithObserver(obs))
	drag := simulation.DragResult{
		Source:      simulation.Location{DroppableID: simulation.DroppableWest, Index: 1},
		Destination: &simulation.Location{DroppableID: simulation.DroppableWest, Index: 0},
	}

	if got := p.DragEnd(drag); got != simulation.OutcomeGated {
		t.Fatalf("expected gated, got %s", got)
	}
	if !p.State().ConfirmPending() {
		t.Fatal("expected the confirmation to be pending")
	}

	if _, err := p.Dispatch(page.Action{Type: page.ActionConfirmWhatIf}); err != nil {
		t.Fatal(err)
	}
	if got := p.DragEnd(drag); got != simulation.OutcomeMoved {
		t.Fatalf("expected moved, got %s", got)
	}

	v := p.View()
	if v.West[0].Team != "Rockets" || !v.West[0].Changed || *v.West[0].Position != 1 {
		t.Errorf("unexpected first west row %+v", v.West[0].StandingsRow)
	}
	// ann loses Thunder exact (3 -> 1), ben gains Rockets exact (1 -> 3)
	if v.Totals["1"].TotalPoints != 6 || v.Totals["1"].Delta != -2 {
		t.Errorf("unexpected ann total %+v", v.Totals["1"])
	}
	if v.Totals["2"].TotalPoints != 6 || v.Totals["2"].Delta != 2 {
		t.Errorf("unexpected ben total %+v", v.Totals["2"])
	}
	if !v.DragEnabled || v.WhatIf != "on" {
		t.Errorf("expected What-If on, got %s drag=%v", v.WhatIf, v.DragEnabled)
	}
	if len(obs.outcomes) != 2 || obs.recomputes == 0 {
		t.Errorf("unexpected observer calls %+v %d", obs.outcomes, obs.recomputes)
	}
}

func TestHandleMessage_DragAttemptWhileOffAsksToConfirm(t *testing.T) {
	p, em := mount(t, page.MountOptions{})
	before := p.View().West

	// A press on a row that cannot be dragged is reported as a drop in place.
	raw := json.RawMessage(`{"draggableId":"W-Rockets","source":{"droppableId":"west","index":1},"destination":{"droppableId":"west","index":1}}`)
	if err := p.HandleMessage(models.InboundMessage{Type: page.InDragEnd, Payload: raw}); err != nil {
		t.Fatal(err)
	}

	if !p.State().ConfirmPending() {
		t.Fatal("expected the What-If confirmation to be pending")
	}
	views := em.ofType(page.MsgView)
	if len(views) == 0 || !views[len(views)-1].payload.(page.View).ConfirmPending {
		t.Errorf("expected a view showing the confirmation, got %d views", len(views))
	}
	if after := p.View().West; after[0].Team != before[0].Team || after[1].Team != before[1].Team {
		t.Error("expected the standings order untouched")
	}
}

func TestToggleWhatIfOff_ResetsOrders(t *testing.T) {
	p, _ := mount(t, page.MountOptions{RawQuery: "wi=1"})
	p.DragEnd(simulation.DragResult{
		Source:      simulation.Location{DroppableID: simulation.DroppableWest, Index: 0},
		Destination: &simulation.Location{DroppableID: simulation.DroppableWest, Index: 1},
	})

	v, err := p.Dispatch(page.Action{Type: page.ActionToggleWhatIf})
	if err != nil {
		t.Fatal(err)
	}
	if v.WhatIf != "off" || v.West[0].Team != "Thunder" || v.West[0].Changed {
		t.Errorf("expected canonical order with What-If off, got %s %+v", v.WhatIf, v.West[0].StandingsRow)
	}
	if v.Totals["1"].TotalPoints != 8 {
		t.Errorf("expected server totals, got %+v", v.Totals["1"])
	}
}

func TestDispatch_Actions(t *testing.T) {
	tests := []struct {
		name    string
		actions []page.Action
		check   func(t *testing.T, v page.View)
	}{
		{
			name:    "section switch shows question rows",
			actions: []page.Action{{Type: page.ActionSetSection, Value: "awards"}},
			check: func(t *testing.T, v page.View) {
				if len(v.Questions) != 1 || v.Questions[0].Text != "MVP" || v.Questions[0].Cells[0].Answer != "SGA" {
					t.Errorf("unexpected questions %+v", v.Questions)
				}
				if v.Questions[0].Cells[1] != nil {
					t.Error("expected empty cell for a user without an answer")
				}
				if len(v.West) != 0 {
					t.Error("expected no standings rows")
				}
			},
		},
		{
			name: "pinning moves the column first and makes it sticky",
			actions: []page.Action{
				{Type: page.ActionTogglePin, Value: "3"},
			},
			check: func(t *testing.T, v page.View) {
				if v.Columns[0].UserID != "3" || !v.Columns[0].Pinned || !v.Columns[0].Sticky.Sticky || !v.Columns[0].Pulsing {
					t.Errorf("unexpected first column %+v", v.Columns[0])
				}
				if v.Columns[0].Sticky.Left != shell.DefaultLayout.StickyLeft(0) {
					t.Errorf("unexpected sticky left %v", v.Columns[0].Sticky.Left)
				}
			},
		},
		{
			name: "selection changes",
			actions: []page.Action{
				{Type: page.ActionRemoveUser, Value: "1"},
				{Type: page.ActionRemoveUser, Value: "2"},
			},
			check: func(t *testing.T, v page.View) {
				if len(v.Columns) != 1 || v.Columns[0].UserID != "3" {
					t.Errorf("unexpected columns %+v", v.Columns)
				}
				if v.Query != "section=standings&users=3&user=3&wi=0&all=0&mode=compare&sortBy=total" {
					t.Errorf("unexpected query %q", v.Query)
				}
			},
		},
		{
			name: "collapse hides a conference",
			actions: []page.Action{
				{Type: page.ActionToggleCollapseEast},
			},
			check: func(t *testing.T, v page.View) {
				if len(v.East) != 0 || len(v.West) != 2 || !v.State.CollapsedEast {
					t.Errorf("unexpected rows west=%d east=%d", len(v.West), len(v.East))
				}
			},
		},
		{
			name: "search and sort",
			actions: []page.Action{
				{Type: page.ActionToggleShowAll},
				{Type: page.ActionSetSort, Value: "name"},
				{Type: page.ActionSetQuery, Value: "N"},
			},
			check: func(t *testing.T, v page.View) {
				if len(v.Columns) != 2 || v.Columns[0].Label != "ann" || v.Columns[1].Label != "ben" {
					t.Errorf("unexpected columns %+v", v.Columns)
				}
			},
		},
		{
			name:    "manage players panel",
			actions: []page.Action{{Type: page.ActionToggleManagePlayers}, {Type: page.ActionDismissTooltip}},
			check: func(t *testing.T, v page.View) {
				if !v.State.ShowManagePlayers || !v.State.TooltipSeen || len(v.AllUsers) != 3 {
					t.Errorf("unexpected state %+v", v.State)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := mount(t, page.MountOptions{})
			var v page.View
			for _, a := range tt.actions {
				var err error
				if v, err = p.Dispatch(a); err != nil {
					t.Fatalf("dispatch %s: %v", a.Type, err)
				}
			}
			tt.check(t, v)
		})
	}
}

func TestDispatch_InvalidActions(t *testing.T) {
	p, _ := mount(t, page.MountOptions{})

	for _, a := range []page.Action{
		{Type: "explode"},
		{Type: page.ActionSetSection, Value: "rebounds"},
		{Type: page.ActionSetMode, Value: "grid"},
		{Type: page.ActionTogglePin},
	} {
		_, err := p.Dispatch(a)
		if errors.KindOf(err) != errors.ErrInvalidInput {
			t.Errorf("%+v: expected invalid input, got %v", a, err)
		}
	}

	p.Unmount()
	if _, err := p.Dispatch(page.Action{Type: page.ActionToggleShowAll}); errors.KindOf(err) != errors.ErrNotFound {
		t.Errorf("expected not found after unmount, got %v", err)
	}
}

func TestPinPulse_ClearsAndPersists(t *testing.T) {
	pins := &pinRecorder{}
	p, em := mount(t, page.MountOptions{Viewer: "viewer-1"}, page.WithPinStore(pins))

	if _, err := p.Dispatch(page.Action{Type: page.ActionTogglePin, Value: "2"}); err != nil {
		t.Fatal(err)
	}
	if pins.viewer != "viewer-1" || pins.season != "2024-25" || !reflect.DeepEqual(pins.ids, []string{"2"}) {
		t.Errorf("unexpected persisted pins %+v", pins)
	}

	deadline := time.Now().Add(time.Second)
	for p.State().PinPulseID != "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.State().PinPulseID != "" {
		t.Fatal("expected the pulse to clear")
	}
	if len(em.ofType(page.MsgPinPulse)) != 2 {
		t.Errorf("expected start and end pulse messages, got %d", len(em.ofType(page.MsgPinPulse)))
	}
}

func TestHandleMessage(t *testing.T) {
	p, em := mount(t, page.MountOptions{})

	msg := func(typ string, payload interface{}) models.InboundMessage {
		raw, _ := json.Marshal(payload)
		return models.InboundMessage{Type: typ, Payload: raw}
	}

	if err := p.HandleMessage(msg(page.InScroll, page.ScrollEvent{Pane: shell.PaneEast, Left: 42})); err != nil {
		t.Fatal(err)
	}
	if got := em.ofType(page.MsgScrollTo); len(got) != 1 || len(got[0].payload.([]shell.ScrollUpdate)) != 3 {
		t.Errorf("unexpected scroll_to messages %+v", got)
	}

	if err := p.HandleMessage(msg(page.InHeaderResize, page.HeaderResizeEvent{West: 48, East: 44})); err != nil {
		t.Fatal(err)
	}
	if err := p.HandleMessage(msg(page.InHeaderResize, page.HeaderResizeEvent{West: 48.2, East: 44})); err != nil {
		t.Fatal(err)
	}
	if got := em.ofType(page.MsgStickyTop); len(got) != 1 {
		t.Errorf("expected one sticky_top message, got %d", len(got))
	}

	if err := p.HandleMessage(msg(page.InWindowScroll, page.WindowScrollEvent{Y: 300})); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(time.Second)
	for len(em.ofType(page.MsgHeaderVisible)) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := em.ofType(page.MsgHeaderVisible); len(got) != 1 {
		t.Errorf("expected header to hide, got %+v", got)
	}

	if err := p.HandleMessage(msg(page.InAction, page.Action{Type: page.ActionSetMode, Value: "showcase"})); err != nil {
		t.Fatal(err)
	}
	if p.State().Mode != models.ModeShowcase {
		t.Error("expected showcase mode")
	}

	if err := p.HandleMessage(models.InboundMessage{Type: page.InDragEnd}); errors.KindOf(err) != errors.ErrInvalidInput {
		t.Errorf("expected invalid input for missing payload, got %v", err)
	}
	if err := p.HandleMessage(models.InboundMessage{Type: "nope", Payload: json.RawMessage(`{}`)}); err == nil {
		t.Error("expected error for unknown type")
	}
}
