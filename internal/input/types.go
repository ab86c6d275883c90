// Package input provides synthetic keyboard injection backends.
//
// Two mutually exclusive mechanisms are supported: the user-mode SendInput
// API and the Interception kernel driver. Backend logic is portable; the
// operating system calls live behind build tags so non-Windows builds
// compile and report ErrUnsupportedPlatform when started.
package input

import (
	"errors"
	"fmt"
	"log/slog"
	"syscall"
	"time"
)

// Backend defines the interface for sending keystrokes to the OS.
// Stop must be called after a successful Start on every exit path.
type Backend interface {
	Start() error
	Stop() error
	TypeCharacter(r rune, delay time.Duration) error
	PressReturn(delay time.Duration) error
	Flush() error
}

// Kind names a backend implementation
type Kind string

const (
	KindSendInput    Kind = "sendinput"
	KindInterception Kind = "interception"
)

// Kinds lists the selectable backends
var Kinds = []Kind{KindSendInput, KindInterception}

var (
	// ErrUnsupportedPlatform is returned when the backend cannot run on this OS
	ErrUnsupportedPlatform = errors.New("keyboard injection is only supported on windows")

	// ErrNoKeyboard is returned when the driver exposes no keyboard device
	ErrNoKeyboard = errors.New("no keyboard device found")

	// ErrNotStarted is returned when dispatching before Start
	ErrNotStarted = errors.New("backend not started")
)

// BackendError wraps a failed OS or driver operation
type BackendError struct {
	Op   string
	Code int
	Err  error
}

func (e *BackendError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s failed (code %d): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func newBackendError(op string, err error) *BackendError {
	be := &BackendError{Op: op, Err: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		be.Code = int(errno)
	}
	return be
}

// New creates the backend of the given kind for the current platform
func New(kind Kind, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch kind {
	case KindSendInput:
		return newSendInput(newInputSystem(), logger), nil
	case KindInterception:
		return newInterception(newInterceptionDriver(), logger), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
