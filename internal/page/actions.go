package page

import (
	"encoding/json"

	"github.com/abrezinsky/hoopsboard/internal/errors"
	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/shell"
	"github.com/abrezinsky/hoopsboard/internal/simulation"
)

// Inbound message types
const (
	InDragEnd      = "drag_end"
	InScroll       = "scroll"
	InHeaderResize = "header_resize"
	InWindowScroll = "window_scroll"
	InAction       = "action"
)

// Action types
const (
	ActionSetSection          = "set_section"
	ActionSetMode             = "set_mode"
	ActionSetSort             = "set_sort"
	ActionSetQuery            = "set_query"
	ActionTogglePin           = "toggle_pin"
	ActionAddUser             = "add_user"
	ActionRemoveUser          = "remove_user"
	ActionToggleShowAll       = "toggle_show_all"
	ActionToggleCollapseWest  = "toggle_collapse_west"
	ActionToggleCollapseEast  = "toggle_collapse_east"
	ActionToggleWhatIf        = "toggle_what_if"
	ActionConfirmWhatIf       = "confirm_what_if"
	ActionCancelWhatIf        = "cancel_what_if"
	ActionResetOrders         = "reset_orders"
	ActionDismissTooltip      = "dismiss_tooltip"
	ActionToggleManagePlayers = "toggle_manage_players"
)

// Action is a UI command from the browser
type Action struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// ScrollEvent reports a horizontal scroll of one pane
type ScrollEvent struct {
	Pane shell.Pane `json:"pane"`
	Left float64    `json:"left"`
}

// HeaderResizeEvent reports the measured conference header heights
type HeaderResizeEvent struct {
	West float64 `json:"west"`
	East float64 `json:"east"`
}

// WindowScrollEvent reports the vertical window offset
type WindowScrollEvent struct {
	Y float64 `json:"y"`
}

// HandleMessage decodes and applies one message from the page's socket
func (p *Page) HandleMessage(msg models.InboundMessage) error {
	switch msg.Type {
	case InDragEnd:
		var r simulation.DragResult
		if err := decode(msg.Payload, &r); err != nil {
			return err
		}
		p.DragEnd(r)
	case InScroll:
		var e ScrollEvent
		if err := decode(msg.Payload, &e); err != nil {
			return err
		}
		p.Scroll(e)
	case InHeaderResize:
		var e HeaderResizeEvent
		if err := decode(msg.Payload, &e); err != nil {
			return err
		}
		p.HeaderResize(e)
	case InWindowScroll:
		var e WindowScrollEvent
		if err := decode(msg.Payload, &e); err != nil {
			return err
		}
		p.WindowScroll(e)
	case InAction:
		var a Action
		if err := decode(msg.Payload, &a); err != nil {
			return err
		}
		_, err := p.Dispatch(a)
		return err
	default:
		return errors.InvalidInputf("unknown message type %q", msg.Type)
	}
	return nil
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errors.InvalidInput("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid payload")
	}
	return nil
}

// DragEnd applies a finished drag and pushes the new projection
func (p *Page) DragEnd(r simulation.DragResult) simulation.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return simulation.OutcomeNoDestination
	}
	p.lastSeen = timeNow()

	outcome := p.sim.OnDragEnd(r)
	if p.observer != nil {
		p.observer.DragEnded(outcome)
	}
	p.log.Debug("Drag ended", "page", p.id, "outcome", outcome)
	if outcome == simulation.OutcomeMoved || outcome == simulation.OutcomeGated {
		p.emitView()
	}
	return outcome
}

// Scroll keeps the other panes aligned with the one the user scrolled
func (p *Page) Scroll(e ScrollEvent) []shell.ScrollUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	updates := p.scroll.Scroll(e.Pane, e.Left)
	if len(updates) > 0 {
		p.emit(MsgScrollTo, updates)
	}
	return updates
}

// HeaderResize recomputes the mobile sticky offset
func (p *Page) HeaderResize(e HeaderResizeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if top, changed := p.sticky.Update(e.West, e.East); changed {
		p.emit(MsgStickyTop, map[string]float64{"top": top})
	}
}

// WindowScroll feeds the header auto-hide, at most once per frame
func (p *Page) WindowScroll(e WindowScrollEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.frames.Schedule(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return
		}
		if visible, changed := p.header.Observe(e.Y); changed {
			p.emit(MsgHeaderVisible, map[string]bool{"visible": visible})
		}
	})
}

// Dispatch applies a UI action and returns the new projection
func (p *Page) Dispatch(a Action) (View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return View{}, errors.NotFound("page is closed")
	}
	p.lastSeen = timeNow()

	st := p.selection.State()
	switch a.Type {
	case ActionSetSection:
		section, ok := models.ParseSection(a.Value)
		if !ok {
			return View{}, errors.InvalidInputf("unknown section %q", a.Value)
		}
		p.selection.SetSection(section)
	case ActionSetMode:
		mode, ok := models.ParseMode(a.Value)
		if !ok {
			return View{}, errors.InvalidInputf("unknown mode %q", a.Value)
		}
		p.selection.SetMode(mode)
	case ActionSetSort:
		p.selection.SetSortBy(models.SortOption(a.Value))
	case ActionSetQuery:
		p.selection.SetQuery(a.Value)
	case ActionTogglePin:
		if a.Value == "" {
			return View{}, errors.InvalidInput("user id is required")
		}
		p.selection.TogglePin(a.Value)
		p.pulse.Start(a.Value)
		p.emit(MsgPinPulse, map[string]interface{}{"id": a.Value, "active": true})
		p.savePins()
	case ActionAddUser:
		if a.Value == "" {
			return View{}, errors.InvalidInput("user id is required")
		}
		p.selection.AddSelected(a.Value)
	case ActionRemoveUser:
		p.selection.RemoveSelected(a.Value)
	case ActionToggleShowAll:
		p.selection.SetShowAll(!st.ShowAll)
	case ActionToggleCollapseWest:
		p.selection.SetCollapsedWest(!st.CollapsedWest)
	case ActionToggleCollapseEast:
		p.selection.SetCollapsedEast(!st.CollapsedEast)
	case ActionToggleWhatIf:
		p.selection.ToggleWhatIf()
		if st.WhatIfEnabled() {
			p.sim.ResetOrders()
		}
	case ActionConfirmWhatIf:
		p.selection.ConfirmWhatIf()
	case ActionCancelWhatIf:
		p.selection.CancelWhatIf()
	case ActionResetOrders:
		p.sim.ResetOrders()
	case ActionDismissTooltip:
		p.selection.DismissTooltip()
	case ActionToggleManagePlayers:
		p.selection.SetShowManagePlayers(!st.ShowManagePlayers)
	default:
		return View{}, errors.InvalidInputf("unknown action %q", a.Type)
	}

	v := p.project()
	p.emit(MsgView, v)
	return v, nil
}
