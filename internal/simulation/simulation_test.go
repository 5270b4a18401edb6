package simulation_test

import (
	"reflect"
	"testing"

	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/simulation"
)

func standings() []models.StandingsTeam {
	return []models.StandingsTeam{
		{Team: "Lakers", Conference: "West", ActualPosition: models.IntPtr(2)},
		{Team: "Celtics", Conference: "East", ActualPosition: models.IntPtr(1)},
		{Team: "Nuggets", Conference: "West", ActualPosition: models.IntPtr(1)},
		{Team: "Jazz", Conference: "west"},
		{Team: "Knicks", Conference: "Eastern", ActualPosition: models.IntPtr(2)},
		{Team: "Suns", Conference: "West", ActualPosition: models.IntPtr(3)},
	}
}

func teamNames(order []models.OrderedTeam) []string {
	out := make([]string, len(order))
	for i, t := range order {
		out[i] = t.Team
	}
	return out
}

type flag struct{ on bool }

func (f *flag) get() bool { return f.on }

func TestNew_SeedsOrdersFromStandings(t *testing.T) {
	s := simulation.New(standings())

	if got := teamNames(s.WestOrder()); !reflect.DeepEqual(got, []string{"Nuggets", "Lakers", "Suns", "Jazz"}) {
		t.Errorf("unexpected west order %v", got)
	}
	if got := teamNames(s.EastOrder()); !reflect.DeepEqual(got, []string{"Celtics", "Knicks"}) {
		t.Errorf("unexpected east order %v", got)
	}
	if s.WestOrder()[0].ID != "W-Nuggets" || s.EastOrder()[1].ID != "E-Knicks" {
		t.Errorf("unexpected ids %s %s", s.WestOrder()[0].ID, s.EastOrder()[1].ID)
	}
}

func TestNew_DoesNotSeedWhileWhatIfOn(t *testing.T) {
	wi := &flag{on: true}
	s := simulation.New(standings(), simulation.WithWhatIf(wi.get))

	if len(s.WestOrder()) != 0 || len(s.EastOrder()) != 0 {
		t.Fatal("expected empty orders while What-If is on")
	}

	wi.on = false
	s.Sync()
	if len(s.WestOrder()) != 4 {
		t.Errorf("expected seeding once What-If is off, got %d west teams", len(s.WestOrder()))
	}
}

func TestSync_IsIdempotent(t *testing.T) {
	wi := &flag{}
	s := simulation.New(standings(), simulation.WithWhatIf(wi.get))
	wi.on = true
	s.OnDragEnd(simulation.DragResult{
		Source:      simulation.Location{DroppableID: "west", Index: 0},
		Destination: &simulation.Location{DroppableID: "west", Index: 3},
	})
	moved := s.WestOrder()

	wi.on = false
	s.Sync()
	s.Sync()
	if !reflect.DeepEqual(s.WestOrder(), moved) {
		t.Error("expected Sync not to overwrite populated orders")
	}
}

func TestSimActualMap(t *testing.T) {
	s := simulation.New(standings())
	m := s.SimActualMap()

	want := map[string]int{"Nuggets": 1, "Lakers": 2, "Suns": 3, "Jazz": 4, "Celtics": 1, "Knicks": 2}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("expected %v, got %v", want, m)
	}
}

func TestOnDragEnd(t *testing.T) {
	tests := []struct {
		name        string
		whatIf      bool
		result      simulation.DragResult
		wantOutcome simulation.Outcome
		wantWest    []string
		wantEast    []string
		wantConfirm bool
	}{
		{
			name:        "reorders west inside the zone",
			whatIf:      true,
			result:      simulation.DragResult{Source: simulation.Location{DroppableID: "west", Index: 3}, Destination: &simulation.Location{DroppableID: "west", Index: 0}},
			wantOutcome: simulation.OutcomeMoved,
			wantWest:    []string{"Jazz", "Nuggets", "Lakers", "Suns"},
			wantEast:    []string{"Celtics", "Knicks"},
		},
		{
			name:        "reorders east inside the zone",
			whatIf:      true,
			result:      simulation.DragResult{Source: simulation.Location{DroppableID: "east", Index: 0}, Destination: &simulation.Location{DroppableID: "east", Index: 1}},
			wantOutcome: simulation.OutcomeMoved,
			wantWest:    []string{"Nuggets", "Lakers", "Suns", "Jazz"},
			wantEast:    []string{"Knicks", "Celtics"},
		},
		{
			name:        "dropped outside any zone",
			whatIf:      true,
			result:      simulation.DragResult{Source: simulation.Location{DroppableID: "west", Index: 0}},
			wantOutcome: simulation.OutcomeNoDestination,
			wantWest:    []string{"Nuggets", "Lakers", "Suns", "Jazz"},
			wantEast:    []string{"Celtics", "Knicks"},
		},
		{
			name:        "cross conference drop is ignored",
			whatIf:      true,
			result:      simulation.DragResult{Source: simulation.Location{DroppableID: "west", Index: 0}, Destination: &simulation.Location{DroppableID: "east", Index: 0}},
			wantOutcome: simulation.OutcomeCrossConference,
			wantWest:    []string{"Nuggets", "Lakers", "Suns", "Jazz"},
			wantEast:    []string{"Celtics", "Knicks"},
		},
		{
			name:        "unknown zone is ignored",
			whatIf:      true,
			result:      simulation.DragResult{Source: simulation.Location{DroppableID: "north", Index: 0}, Destination: &simulation.Location{DroppableID: "north", Index: 1}},
			wantOutcome: simulation.OutcomeUnknownZone,
			wantWest:    []string{"Nuggets", "Lakers", "Suns", "Jazz"},
			wantEast:    []string{"Celtics", "Knicks"},
		},
		{
			name:        "What-If off asks for confirmation and keeps the order",
			whatIf:      false,
			result:      simulation.DragResult{Source: simulation.Location{DroppableID: "west", Index: 0}, Destination: &simulation.Location{DroppableID: "west", Index: 2}},
			wantOutcome: simulation.OutcomeGated,
			wantWest:    []string{"Nuggets", "Lakers", "Suns", "Jazz"},
			wantEast:    []string{"Celtics", "Knicks"},
			wantConfirm: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wi := &flag{}
			confirmed := false
			s := simulation.New(standings(),
				simulation.WithWhatIf(wi.get),
				simulation.WithConfirmHandler(func() { confirmed = true }),
			)
			wi.on = tt.whatIf

			got := s.OnDragEnd(tt.result)

			if got != tt.wantOutcome {
				t.Errorf("expected outcome %s, got %s", tt.wantOutcome, got)
			}
			if names := teamNames(s.WestOrder()); !reflect.DeepEqual(names, tt.wantWest) {
				t.Errorf("expected west %v, got %v", tt.wantWest, names)
			}
			if names := teamNames(s.EastOrder()); !reflect.DeepEqual(names, tt.wantEast) {
				t.Errorf("expected east %v, got %v", tt.wantEast, names)
			}
			if confirmed != tt.wantConfirm {
				t.Errorf("expected confirm=%v, got %v", tt.wantConfirm, confirmed)
			}
		})
	}
}

func TestResetOrders_RestoresCanonicalOrderWhileWhatIfOn(t *testing.T) {
	wi := &flag{}
	s := simulation.New(standings(), simulation.WithWhatIf(wi.get))
	wi.on = true
	s.OnDragEnd(simulation.DragResult{
		Source:      simulation.Location{DroppableID: "east", Index: 0},
		Destination: &simulation.Location{DroppableID: "east", Index: 1},
	})

	s.ResetOrders()

	if got := teamNames(s.EastOrder()); !reflect.DeepEqual(got, []string{"Celtics", "Knicks"}) {
		t.Errorf("expected canonical east order, got %v", got)
	}
}

func leaderboard() []models.LeaderboardEntry {
	return []models.LeaderboardEntry{
		{Rank: 1, User: models.User{ID: "1", Username: "ann", TotalPoints: 9, Categories: map[string]models.Category{
			models.CategoryStandings: {Points: 6, Predictions: []models.Prediction{
				{Team: "Nuggets", PredictedPosition: models.IntPtr(1), Points: 3},
				{Team: "Celtics", PredictedPosition: models.IntPtr(1), Points: 3},
			}},
			models.CategoryProps: {Points: 3},
		}}},
		{Rank: 2, User: models.User{ID: "2", Username: "ben", TotalPoints: 2, Categories: map[string]models.Category{
			models.CategoryStandings: {Points: 2, Predictions: []models.Prediction{
				{Team: "Lakers", PredictedPosition: models.IntPtr(1), Points: 1},
				{Team: "Knicks", PredictedPosition: models.IntPtr(1), Points: 1},
			}},
		}}},
	}
}

func TestWithSimTotals_OffReturnsInput(t *testing.T) {
	s := simulation.New(standings())
	entries := leaderboard()

	got := s.WithSimTotals(entries)

	if &got[0] != &entries[0] {
		t.Error("expected the same slice when What-If is off")
	}
}

func TestWithSimTotals_CanonicalOrderKeepsTotals(t *testing.T) {
	wi := &flag{}
	s := simulation.New(standings(), simulation.WithWhatIf(wi.get))
	wi.on = true

	for _, e := range s.WithSimTotals(leaderboard()) {
		if e.User.TotalPoints != *e.OrigTotalPoints {
			t.Errorf("user %s: expected %v, got %v", e.User.Username, *e.OrigTotalPoints, e.User.TotalPoints)
		}
	}
}

func TestWithSimTotals_ReflectsLatestOrders(t *testing.T) {
	wi := &flag{}
	s := simulation.New(standings(), simulation.WithWhatIf(wi.get))
	wi.on = true

	// Lakers to first, Nuggets to second
	s.OnDragEnd(simulation.DragResult{
		Source:      simulation.Location{DroppableID: "west", Index: 1},
		Destination: &simulation.Location{DroppableID: "west", Index: 0},
	})
	got := s.WithSimTotals(leaderboard())

	// ann: Nuggets 1 vs 2 -> 1, Celtics exact -> 3, props 3
	// ben: Lakers exact -> 3, Knicks 1 vs 2 -> 1
	if got[0].User.Username != "ann" || got[0].User.TotalPoints != 7 {
		t.Errorf("expected ann with 7, got %s with %v", got[0].User.Username, got[0].User.TotalPoints)
	}
	if got[1].User.Username != "ben" || got[1].User.TotalPoints != 4 {
		t.Errorf("expected ben with 4, got %s with %v", got[1].User.Username, got[1].User.TotalPoints)
	}
}
