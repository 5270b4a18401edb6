package shell

import "math"

// Pane identifies a horizontally scrolling region
type Pane string

const (
	PaneHeader Pane = "header"
	PaneWest   Pane = "west"
	PaneEast   Pane = "east"
	PaneAwards Pane = "awards"
)

var panes = []Pane{PaneHeader, PaneWest, PaneEast, PaneAwards}

// ValidPane reports whether p is one of the synchronised panes
func ValidPane(p Pane) bool {
	for _, v := range panes {
		if v == p {
			return true
		}
	}
	return false
}

// ScrollUpdate tells the browser to set a pane's scrollLeft
type ScrollUpdate struct {
	Pane Pane    `json:"pane"`
	Left float64 `json:"left"`
}

// ScrollSync keeps the horizontal offset of all panes equal
type ScrollSync struct {
	left map[Pane]float64
}

// NewScrollSync creates a ScrollSync with every pane at 0
func NewScrollSync() *ScrollSync {
	s := &ScrollSync{left: make(map[Pane]float64, len(panes))}
	for _, p := range panes {
		s.left[p] = 0
	}
	return s
}

// Scroll records a user scroll on pane and returns the panes that must follow.
// Panes already at left are skipped, so echoed events produce nothing.
func (s *ScrollSync) Scroll(pane Pane, left float64) []ScrollUpdate {
	if !ValidPane(pane) || math.IsNaN(left) {
		return nil
	}
	s.left[pane] = left

	var updates []ScrollUpdate
	for _, p := range panes {
		if p == pane || s.left[p] == left {
			continue
		}
		s.left[p] = left
		updates = append(updates, ScrollUpdate{Pane: p, Left: left})
	}
	return updates
}

// Left returns the last known offset of pane
func (s *ScrollSync) Left(pane Pane) float64 {
	return s.left[pane]
}

// stickyThreshold is the smallest height change worth publishing
const stickyThreshold = 0.5

// StickyOffset tracks the top offset of the mobile sticky header
type StickyOffset struct {
	top float64
}

// Update recomputes the offset from the two conference header heights. It reports
// false when the change is within the threshold.
func (s *StickyOffset) Update(westHeader, eastHeader float64) (float64, bool) {
	next := math.Max(westHeader, eastHeader)
	if math.Abs(next-s.top) <= stickyThreshold {
		return s.top, false
	}
	s.top = next
	return next, true
}

// Top returns the last published offset
func (s *StickyOffset) Top() float64 {
	return s.top
}
