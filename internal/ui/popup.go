// Package ui holds the chrome components of the console: the
// confirmation popup and the header with its auth guard. Both are
// explicit components with injected dependencies rather than
// DOM-registration side effects.
package ui

import (
	"context"
	"sync"
)

// PopupConfig describes one popup display.
type PopupConfig struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	IconClass  string `json:"icon_class"`
	ButtonText string `json:"button_text,omitempty"`
	ButtonURL  string `json:"button_url,omitempty"`
}

// Confirmer is the contract controllers use to ask for confirmation.
type Confirmer interface {
	Confirm(ctx context.Context, cfg PopupConfig) (bool, error)
}

// PositionMode says how the popup is placed: centered via transform
// until the first drag, fixed pixel coordinates afterwards.
type PositionMode string

const (
	PositionCentered PositionMode = "centered"
	PositionFixed    PositionMode = "fixed"
)

// PopupState is a render snapshot of the popup.
type PopupState struct {
	Visible  bool         `json:"visible"`
	Config   PopupConfig  `json:"config"`
	Mode     PositionMode `json:"mode"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Dragging bool         `json:"dragging"`
}

// Popup is the single modal instance of a console. Concurrent Confirm
// calls are not supported: a new Show supersedes a pending one, which
// then resolves false.
type Popup struct {
	mu       sync.Mutex
	visible  bool
	cfg      PopupConfig
	mode     PositionMode
	x, y     float64
	dragging bool
	offsetX  float64
	offsetY  float64
	pending  chan bool
}

// NewPopup creates an unmounted popup.
func NewPopup() *Popup {
	return &Popup{mode: PositionCentered}
}

// Show displays the popup with the given config. Any pending Confirm
// is superseded and resolves false.
func (p *Popup) Show(cfg PopupConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resolveLocked(false)
	p.cfg = cfg
	p.visible = true
}

// Confirm shows the popup and blocks until the user accepts, closes,
// or the context is cancelled.
func (p *Popup) Confirm(ctx context.Context, cfg PopupConfig) (bool, error) {
	ch := make(chan bool, 1)

	p.mu.Lock()
	p.resolveLocked(false)
	p.cfg = cfg
	p.visible = true
	p.pending = ch
	p.mu.Unlock()

	select {
	case confirmed := <-ch:
		return confirmed, nil
	case <-ctx.Done():
		p.mu.Lock()
		if p.pending == ch {
			p.pending = nil
			p.visible = false
		}
		p.mu.Unlock()
		return false, ctx.Err()
	}
}

// Accept resolves a pending Confirm affirmatively and hides the popup.
func (p *Popup) Accept() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resolveLocked(true)
	p.visible = false
	p.dragging = false
}

// Close hides the popup; a pending Confirm resolves false.
func (p *Popup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resolveLocked(false)
	p.visible = false
	p.dragging = false
}

// resolveLocked delivers the outcome to a pending Confirm, if any.
func (p *Popup) resolveLocked(confirmed bool) {
	if p.pending != nil {
		p.pending <- confirmed
		p.pending = nil
	}
}

// PointerDown begins a drag. The browser reports the pointer position
// and where the popup header currently sits; from the first drag the
// popup leaves centered positioning for fixed coordinates.
func (p *Popup) PointerDown(pointerX, pointerY, rectLeft, rectTop float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.visible {
		return
	}
	p.dragging = true
	p.offsetX = pointerX - rectLeft
	p.offsetY = pointerY - rectTop
	p.mode = PositionFixed
	p.x = rectLeft
	p.y = rectTop
}

// PointerMove tracks the drag.
func (p *Popup) PointerMove(pointerX, pointerY float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.dragging {
		return
	}
	p.x = pointerX - p.offsetX
	p.y = pointerY - p.offsetY
}

// PointerUp releases the drag. The popup stays where it was dropped.
func (p *Popup) PointerUp() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dragging = false
}

// State returns a render snapshot.
func (p *Popup) State() PopupState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PopupState{
		Visible:  p.visible,
		Config:   p.cfg,
		Mode:     p.mode,
		X:        p.x,
		Y:        p.y,
		Dragging: p.dragging,
	}
}
