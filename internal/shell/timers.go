package shell

import (
	"sync"
	"time"
)

// DefaultPinPulse is how long a newly pinned column pulses
const DefaultPinPulse = 600 * time.Millisecond

// DefaultFrame approximates one animation frame
const DefaultFrame = 16 * time.Millisecond

// PinPulse clears the pulse marker after a fixed window. Starting a new pulse
// cancels the previous one.
type PinPulse struct {
	window  time.Duration
	onClear func(id string)

	mu    sync.Mutex
	timer *time.Timer
}

// NewPinPulse creates a PinPulse calling onClear when the window elapses
func NewPinPulse(window time.Duration, onClear func(id string)) *PinPulse {
	if window <= 0 {
		window = DefaultPinPulse
	}
	return &PinPulse{window: window, onClear: onClear}
}

// Start begins the pulse for id
func (p *PinPulse) Start(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.window, func() { p.onClear(id) })
}

// Stop cancels any pending clear
func (p *PinPulse) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// FrameScheduler coalesces work to at most one run per frame. Only the most
// recently scheduled function runs.
type FrameScheduler struct {
	frame time.Duration

	mu      sync.Mutex
	pending func()
	timer   *time.Timer
	stopped bool
}

// NewFrameScheduler creates a scheduler with the given frame length
func NewFrameScheduler(frame time.Duration) *FrameScheduler {
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &FrameScheduler{frame: frame}
}

// Schedule queues fn for the next frame, replacing anything already queued
func (f *FrameScheduler) Schedule(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	f.pending = fn
	if f.timer == nil {
		f.timer = time.AfterFunc(f.frame, f.run)
	}
}

func (f *FrameScheduler) run() {
	f.mu.Lock()
	fn := f.pending
	f.pending = nil
	f.timer = nil
	stopped := f.stopped
	f.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}

// Stop drops queued work and rejects further scheduling
func (f *FrameScheduler) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	f.pending = nil
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// Header auto-hide thresholds
const (
	headerTopZone = 10
	headerDelta   = 6
)

// HeaderAutoHide decides whether the page header is visible from successive
// window scroll offsets.
type HeaderAutoHide struct {
	lastY   float64
	visible bool
}

// NewHeaderAutoHide starts with the header shown
func NewHeaderAutoHide() *HeaderAutoHide {
	return &HeaderAutoHide{visible: true}
}

// Observe feeds a scroll offset and reports the visibility and whether it changed
func (h *HeaderAutoHide) Observe(y float64) (visible, changed bool) {
	delta := y - h.lastY
	next := h.visible
	switch {
	case y <= headerTopZone:
		next = true
	case delta > headerDelta:
		next = false
	case delta < -headerDelta:
		next = true
	}
	h.lastY = y
	changed = next != h.visible
	h.visible = next
	return next, changed
}

// Visible reports the current visibility
func (h *HeaderAutoHide) Visible() bool {
	return h.visible
}
