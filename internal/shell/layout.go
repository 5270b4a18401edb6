package shell

// Layout holds column widths of the comparison grid
type Layout struct {
	TeamWidth     float64 `json:"team_width"`
	PositionWidth float64 `json:"position_width"`
	UserWidth     float64 `json:"user_width"`
}

// DefaultLayout matches the stylesheet's desktop widths
var DefaultLayout = Layout{TeamWidth: 180, PositionWidth: 56, UserWidth: 132}

// Column is the sticky placement of one grid column
type Column struct {
	Sticky bool    `json:"sticky"`
	Left   float64 `json:"left"`
}

// TeamColumn is always sticky at the left edge
func (l Layout) TeamColumn() Column {
	return Column{Sticky: true, Left: 0}
}

// PositionColumn is always sticky right after the team column
func (l Layout) PositionColumn() Column {
	return Column{Sticky: true, Left: l.TeamWidth}
}

// UserColumn places the i-th displayed user column. Pinned users lead the column
// list, so a pinned column's index is also its slot in the sticky band.
func (l Layout) UserColumn(index int, pinned bool) Column {
	if !pinned {
		return Column{}
	}
	return Column{Sticky: true, Left: l.StickyLeft(index)}
}

// StickyLeft is the left offset of the pinned column at index
func (l Layout) StickyLeft(index int) float64 {
	return l.TeamWidth + l.PositionWidth + float64(index)*l.UserWidth
}
