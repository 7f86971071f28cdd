// Package notify implements the single-slot toast notifier: at most
// one toast is visible at a time, a new Show replaces the current one
// immediately, and a toast auto-dismisses after a fixed delay with an
// exit transition before removal. There is no queue.
package notify

import (
	"sync"
	"time"

	"admin-console/internal/util"
)

// Kind classifies a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindDefault Kind = "default"
)

// icons maps each kind to its fixed icon.
var icons = map[Kind]string{
	KindSuccess: "✅",
	KindError:   "❌",
	KindWarning: "⚠️",
	KindInfo:    "ℹ️",
	KindDefault: "✨",
}

// Icon returns the icon for a kind, falling back to the default icon
// for unknown kinds.
func Icon(kind Kind) string {
	if icon, ok := icons[kind]; ok {
		return icon
	}
	return icons[KindDefault]
}

// Phase is the display phase of a toast.
type Phase string

const (
	PhaseVisible Phase = "visible"
	PhaseExiting Phase = "exiting"
)

// Toast is one transient notification.
type Toast struct {
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
	Icon    string `json:"icon"`
	Phase   Phase  `json:"phase"`
}

// Notifier is the contract controllers use to surface feedback.
type Notifier interface {
	Show(message string, kind Kind)
}

// Toaster is the timer-backed Notifier implementation.
type Toaster struct {
	mu      sync.Mutex
	ttl     time.Duration
	exit    time.Duration
	current *Toast
	seq     uint64
	dismiss *time.Timer
	remove  *time.Timer
}

// NewToaster creates a toaster. ttl is how long a toast stays fully
// visible; exit is the transition time before removal.
func NewToaster(ttl, exit time.Duration) *Toaster {
	return &Toaster{ttl: ttl, exit: exit}
}

// Show displays a toast, replacing any existing one immediately.
func (t *Toaster) Show(message string, kind Kind) {
	if _, ok := icons[kind]; !ok {
		kind = KindDefault
	}
	util.ToastsShownTotal.WithLabelValues(string(kind)).Inc()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopTimersLocked()
	t.seq++
	seq := t.seq

	t.current = &Toast{
		Message: message,
		Kind:    kind,
		Icon:    Icon(kind),
		Phase:   PhaseVisible,
	}

	t.dismiss = time.AfterFunc(t.ttl, func() {
		t.beginExit(seq)
	})
}

// beginExit flips the toast into its exit transition, then schedules
// removal. The sequence check discards callbacks from replaced toasts.
func (t *Toaster) beginExit(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seq != seq || t.current == nil {
		return
	}
	t.current.Phase = PhaseExiting

	t.remove = time.AfterFunc(t.exit, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.seq == seq {
			t.current = nil
		}
	})
}

// Current returns a snapshot of the visible toast, or nil.
func (t *Toaster) Current() *Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return nil
	}
	snapshot := *t.current
	return &snapshot
}

// Stop cancels pending timers and clears the slot.
func (t *Toaster) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopTimersLocked()
	t.seq++
	t.current = nil
}

func (t *Toaster) stopTimersLocked() {
	if t.dismiss != nil {
		t.dismiss.Stop()
		t.dismiss = nil
	}
	if t.remove != nil {
		t.remove.Stop()
		t.remove = nil
	}
}
