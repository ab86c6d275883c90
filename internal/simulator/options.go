package simulator

import (
	"log/slog"
	"time"
)

const (
	DefaultTick         = time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Hooks receive run events. All are optional and are called synchronously
// on the goroutine that caused the event; they must not block for long.
type Hooks struct {
	OnCountdown func(remaining int)
	OnStatus    func(state State)
	OnProgress  func(done, total int)
}

// Option configures a Simulator
type Option func(*Simulator)

// WithLogger sets the logger used for run diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithTick sets the length of one countdown step
func WithTick(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithPollInterval sets how often a paused run checks for resume or stop
func WithPollInterval(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.poll = d
		}
	}
}
