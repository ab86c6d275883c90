// Package tray provides the system tray control surface for a run.
package tray

import (
	"fmt"
	"log/slog"
	"sync"

	"keysim/internal/simulator"
)

// Controls are invoked from the tray menu
type Controls struct {
	Pause  func()
	Resume func()
	Stop   func()
}

// Tray shows run status in its tooltip and offers Pause, Resume and Stop
type Tray struct {
	mu        sync.Mutex
	ctrl      Controls
	log       *slog.Logger
	state     simulator.State
	countdown int
	done      int
	total     int

	// refresh pushes the current view to the platform tray, if running
	refresh func()
	readyCh chan struct{}
	ready   sync.Once
	quitCh  chan struct{}
	quit    sync.Once
}

// New creates a tray bound to the given controls
func New(ctrl Controls, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		ctrl:    ctrl,
		log:     logger.With("component", "tray"),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// SetStatus records a run state change
func (t *Tray) SetStatus(st simulator.State) {
	t.mu.Lock()
	t.state = st
	if st != simulator.StateCountdown {
		t.countdown = 0
	}
	t.mu.Unlock()
	t.update()
}

// SetCountdown records a countdown tick
func (t *Tray) SetCountdown(remaining int) {
	t.mu.Lock()
	t.state = simulator.StateCountdown
	t.countdown = remaining
	t.mu.Unlock()
	t.update()
}

// SetProgress records dispatch progress
func (t *Tray) SetProgress(done, total int) {
	t.mu.Lock()
	t.done, t.total = done, total
	t.mu.Unlock()
	t.update()
}

// Tooltip renders the current status line
func (t *Tray) Tooltip() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case simulator.StateCountdown:
		return fmt.Sprintf("keysim - starting in %ds", t.countdown)
	case simulator.StateRunning, simulator.StatePaused:
		return fmt.Sprintf("keysim - %s %d/%d", t.state, t.done, t.total)
	default:
		return "keysim - " + t.state.String()
	}
}

// menuState reports which menu items apply in st
func menuState(st simulator.State) (pause, resume, stop bool) {
	switch st {
	case simulator.StateRunning:
		return true, false, true
	case simulator.StatePaused:
		return false, true, true
	case simulator.StateCountdown:
		return false, false, true
	}
	return false, false, false
}

func (t *Tray) update() {
	t.mu.Lock()
	refresh := t.refresh
	t.mu.Unlock()
	if refresh != nil {
		refresh()
	}
}

func (t *Tray) currentState() simulator.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Ready is closed once the tray menu is up
func (t *Tray) Ready() <-chan struct{} {
	return t.readyCh
}

func (t *Tray) markReady() {
	t.ready.Do(func() { close(t.readyCh) })
}

// Done is closed once the tray has quit
func (t *Tray) Done() <-chan struct{} {
	return t.quitCh
}

func (t *Tray) markQuit() {
	t.quit.Do(func() { close(t.quitCh) })
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
