// Package hotkey provides global keyboard hotkey monitoring.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrUnknownKey is returned when a combo names a key the hook cannot report
var ErrUnknownKey = errors.New("unknown hotkey key")

// Manager handles global hotkey registration and matching
type Manager struct {
	mu           sync.RWMutex
	log          *slog.Logger
	hotkeys      []*registeredHotkey
	currentState map[string]bool // keys currently held
	stop         func()
}

type registeredHotkey struct {
	parts    []string // e.g. ["CTRL", "F10"]
	original string
	callback func()
}

// NewManager creates a new hotkey manager
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		log:          logger.With("component", "hotkey"),
		currentState: make(map[string]bool),
	}
}

// ParseCombo splits a combo like "Ctrl+F10" into upper-case key names
func ParseCombo(combo string) ([]string, error) {
	if strings.TrimSpace(combo) == "" {
		return nil, fmt.Errorf("%w: empty combo", ErrUnknownKey)
	}
	parts := strings.Split(strings.ToUpper(combo), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !knownKeys[p] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, p)
		}
		parts[i] = p
	}
	return parts, nil
}

// Register registers a hotkey string (e.g. "F10", "Ctrl+Alt+P") and a callback.
func (m *Manager) Register(hotkeyStr string, callback func()) (int, error) {
	parts, err := ParseCombo(hotkeyStr)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.hotkeys = append(m.hotkeys, &registeredHotkey{
		parts:    parts,
		original: hotkeyStr,
		callback: callback,
	})

	return len(m.hotkeys) - 1, nil
}

// Clear removes all registered hotkeys
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeys = nil
}

// UpdateState records a key transition and fires every hotkey completed by
// this press. Auto-repeat downs of a held key do not fire again.
func (m *Manager) UpdateState(key string, isDown bool) {
	key = strings.ToUpper(key)

	m.mu.Lock()
	wasDown := m.currentState[key]
	if isDown {
		m.currentState[key] = true
	} else {
		delete(m.currentState, key)
	}
	m.mu.Unlock()

	if isDown && !wasDown {
		m.checkMatches(key)
	}
}

func (m *Manager) checkMatches(pressed string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, hk := range m.hotkeys {
		match := false
		for _, part := range hk.parts {
			if !m.currentState[part] {
				match = false
				break
			}
			if part == pressed {
				match = true
			}
		}

		if match {
			m.log.Info("Hotkey triggered", "hotkey", hk.original)
			go hk.callback()
		}
	}
}

// Start installs the platform-specific global hook.
func (m *Manager) Start() error {
	stop, err := m.startPlatform()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.stop = stop
	m.mu.Unlock()
	return nil
}

// Stop removes the global hook. It is safe to call more than once.
func (m *Manager) Stop() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}
