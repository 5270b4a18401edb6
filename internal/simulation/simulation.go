// Package simulation owns the user-defined conference orderings of the What-If mode
// and derives simulated positions and re-scored leaderboards from them.
package simulation

import (
	"sort"

	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/scoring"
)

// Drop zone identifiers
const (
	DroppableWest = "west"
	DroppableEast = "east"
)

// missingPosition sorts teams without a known position after every real one
const missingPosition = 999

// Location is a position inside a drop zone
type Location struct {
	DroppableID string `json:"droppableId"`
	Index       int    `json:"index"`
}

// DragResult describes a finished drag gesture. Destination is nil when the item
// was dropped outside any zone.
type DragResult struct {
	DraggableID string    `json:"draggableId"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination"`
}

// Outcome reports what a drag end did to the store
type Outcome string

const (
	OutcomeMoved           Outcome = "moved"
	OutcomeNoDestination   Outcome = "no_destination"
	OutcomeGated           Outcome = "gated"
	OutcomeCrossConference Outcome = "cross_conference"
	OutcomeUnknownZone     Outcome = "unknown_zone"
)

// Option configures a Store
type Option func(*Store)

// WithWhatIf sets the function reporting whether What-If mode is on
func WithWhatIf(enabled func() bool) Option {
	return func(s *Store) {
		if enabled != nil {
			s.whatIf = enabled
		}
	}
}

// WithConfirmHandler sets the callback invoked when a drag is attempted while
// What-If mode is off
func WithConfirmHandler(fn func()) Option {
	return func(s *Store) {
		if fn != nil {
			s.onShowWhatIfConfirm = fn
		}
	}
}

// Store holds the two draggable conference orderings
type Store struct {
	standings           []models.StandingsTeam
	westOrder           []models.OrderedTeam
	eastOrder           []models.OrderedTeam
	whatIf              func() bool
	onShowWhatIfConfirm func()
}

// New creates a Store over the given standings
func New(standings []models.StandingsTeam, opts ...Option) *Store {
	s := &Store{
		standings:           standings,
		whatIf:              func() bool { return false },
		onShowWhatIfConfirm: func() {},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Sync()
	return s
}

// Sync applies the seeding rule: with What-If off, both orders empty and standings
// available, each conference order is filled from the actual standings.
// Calling it again is a no-op once the orders are populated.
func (s *Store) Sync() {
	if s.whatIf() || len(s.westOrder) > 0 || len(s.eastOrder) > 0 || len(s.standings) == 0 {
		return
	}
	s.westOrder, s.eastOrder = SeedOrders(s.standings)
}

// SetStandings replaces the standings the store seeds from and re-applies the seeding rule
func (s *Store) SetStandings(standings []models.StandingsTeam) {
	s.standings = standings
	s.Sync()
}

// WestOrder returns a copy of the Western conference ordering
func (s *Store) WestOrder() []models.OrderedTeam {
	return append([]models.OrderedTeam(nil), s.westOrder...)
}

// EastOrder returns a copy of the Eastern conference ordering
func (s *Store) EastOrder() []models.OrderedTeam {
	return append([]models.OrderedTeam(nil), s.eastOrder...)
}

// SimActualMap maps each team to its simulated 1-based position
func (s *Store) SimActualMap() map[string]int {
	return scoring.SimulatedPositions(s.westOrder, s.eastOrder)
}

// WithSimTotals re-scores entries against the current orderings when What-If is on;
// otherwise entries are returned unchanged.
func (s *Store) WithSimTotals(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	if !s.whatIf() {
		return entries
	}
	return scoring.CalculateSimulatedTotals(entries, s.westOrder, s.eastOrder)
}

// OnDragEnd applies a finished drag to the matching conference ordering.
func (s *Store) OnDragEnd(result DragResult) Outcome {
	if result.Destination == nil {
		return OutcomeNoDestination
	}
	if !s.whatIf() {
		s.onShowWhatIfConfirm()
		return OutcomeGated
	}
	if result.Source.DroppableID != result.Destination.DroppableID {
		return OutcomeCrossConference
	}

	switch result.Source.DroppableID {
	case DroppableWest:
		s.westOrder = scoring.ReorderList(s.westOrder, result.Source.Index, result.Destination.Index)
	case DroppableEast:
		s.eastOrder = scoring.ReorderList(s.eastOrder, result.Source.Index, result.Destination.Index)
	default:
		return OutcomeUnknownZone
	}
	return OutcomeMoved
}

// ResetOrders reseeds both orderings from the actual standings, whatever the mode.
func (s *Store) ResetOrders() {
	s.westOrder, s.eastOrder = SeedOrders(s.standings)
}

// SeedOrders builds the canonical conference orderings, sorted by actual position
// with unknown positions last.
func SeedOrders(standings []models.StandingsTeam) (west, east []models.OrderedTeam) {
	west = make([]models.OrderedTeam, 0, len(standings)/2)
	east = make([]models.OrderedTeam, 0, len(standings)/2)
	for _, t := range standings {
		switch {
		case models.IsWest(t.Conference):
			west = append(west, models.OrderedTeam{StandingsTeam: t, ID: "W-" + t.Team})
		case models.IsEast(t.Conference):
			east = append(east, models.OrderedTeam{StandingsTeam: t, ID: "E-" + t.Team})
		}
	}
	byPosition(west)
	byPosition(east)
	return west, east
}

func byPosition(teams []models.OrderedTeam) {
	sort.SliceStable(teams, func(i, j int) bool {
		return position(teams[i]) < position(teams[j])
	})
}

func position(t models.OrderedTeam) int {
	if t.ActualPosition == nil {
		return missingPosition
	}
	return *t.ActualPosition
}
