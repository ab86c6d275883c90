package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"keysim/internal/simulator"
)

func TestRunFinishedOnlyOnTerminalStates(t *testing.T) {
	var sent []string
	n := New(true, nil)
	n.send = func(title, message string) error {
		assert.Equal(t, "keysim", title)
		sent = append(sent, message)
		return nil
	}

	n.RunFinished(simulator.StateRunning, 1, 5)
	n.RunFinished(simulator.StateAborting, 1, 5)
	n.RunFinished(simulator.StateStopped, 2, 5)
	n.RunFinished(simulator.StateCompleted, 5, 5)

	assert.Equal(t, []string{
		"Typing stopped after 2 of 5 characters",
		"Typing completed (5 characters)",
	}, sent)
}

func TestDisabledNotifierSendsNothing(t *testing.T) {
	n := New(false, nil)
	n.send = func(string, string) error {
		t.Fatal("disabled notifier sent a notification")
		return nil
	}
	n.RunFinished(simulator.StateCompleted, 1, 1)
}

func TestSendFailureIsLogged(t *testing.T) {
	n := New(true, nil)
	n.send = func(string, string) error { return errors.New("no dbus") }
	n.RunFinished(simulator.StateError, 0, 3)
	assert.Equal(t, "Typing failed after 0 of 3 characters", Message(simulator.StateError, 0, 3))
}
