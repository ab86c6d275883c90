// Package notify shows a desktop notification when a run ends.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"

	"keysim/internal/simulator"
)

const title = "keysim"

// Notifier sends end-of-run notifications when enabled
type Notifier struct {
	enabled bool
	log     *slog.Logger
	send    func(title, message string) error
}

// New creates a Notifier; a disabled one only logs
func New(enabled bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		enabled: enabled,
		log:     logger.With("component", "notify"),
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// Message renders the notification text for a terminal state
func Message(st simulator.State, done, total int) string {
	switch st {
	case simulator.StateCompleted:
		return fmt.Sprintf("Typing completed (%d characters)", done)
	case simulator.StateStopped:
		return fmt.Sprintf("Typing stopped after %d of %d characters", done, total)
	case simulator.StateError:
		return fmt.Sprintf("Typing failed after %d of %d characters", done, total)
	default:
		return "Typing " + st.String()
	}
}

// RunFinished notifies about a terminal state; other states are ignored
func (n *Notifier) RunFinished(st simulator.State, done, total int) {
	if !n.enabled || !st.Terminal() {
		return
	}
	if err := n.send(title, Message(st, done, total)); err != nil {
		n.log.Warn("Notify: desktop notification failed", "error", err)
	}
}
