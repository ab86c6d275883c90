// Package simulator drives a typing plan through an input backend.
//
// A Simulator runs one plan at a time: it counts down, starts the backend,
// dispatches every character of every task in order, and stops the backend
// on every exit path. Pause, Resume and Stop are safe to call from any
// goroutine while RunPlan blocks on another.
package simulator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"keysim/internal/input"
	"keysim/internal/payload"
)

var (
	// ErrBusy is returned when RunPlan is called while a run is in progress
	ErrBusy = errors.New("a run is already in progress")

	// ErrNoPlan is returned when RunPlan is called without a plan
	ErrNoPlan = errors.New("no plan to run")
)

// Simulator sequences countdown and dispatch for one backend
type Simulator struct {
	backend input.Backend
	hooks   Hooks
	log     *slog.Logger
	tick    time.Duration
	poll    time.Duration

	state   atomic.Int32
	stopReq atomic.Bool
	paused  atomic.Bool
	busy    atomic.Bool
	done    atomic.Int64
	total   atomic.Int64

	// wake interrupts the countdown sleep on Stop
	wake chan struct{}
}

// New creates a Simulator that types through backend
func New(backend input.Backend, hooks Hooks, opts ...Option) *Simulator {
	s := &Simulator{
		backend: backend,
		hooks:   hooks,
		log:     slog.Default(),
		tick:    DefaultTick,
		poll:    DefaultPollInterval,
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "simulator")
	return s
}

// State returns the current run state
func (s *Simulator) State() State {
	return State(s.state.Load())
}

// Progress returns the number of characters dispatched and the plan total
func (s *Simulator) Progress() (done, total int) {
	return int(s.done.Load()), int(s.total.Load())
}

// RunPlan counts down, then types every task of plan in order. It blocks
// until the plan completes, is stopped, or the backend fails.
func (s *Simulator) RunPlan(plan *payload.Plan) error {
	if plan == nil {
		return ErrNoPlan
	}
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.stopReq.Store(false)
	s.paused.Store(false)
	select {
	case <-s.wake:
	default:
	}
	s.done.Store(0)
	s.total.Store(int64(plan.TotalCharacters()))

	s.setState(StateCountdown)
	s.log.Info("Simulator: run starting", "tasks", len(plan.Tasks), "characters", s.total.Load(), "countdown", plan.Countdown)

	if !s.countdown(plan.Countdown) || !s.state.CompareAndSwap(int32(StateCountdown), int32(StateRunning)) {
		s.log.Info("Simulator: stopped during countdown")
		s.finish(StateStopped)
		return nil
	}
	s.emitStatus(StateRunning)

	if err := s.backend.Start(); err != nil {
		s.log.Error("Simulator: backend start failed", "error", err)
		s.finish(StateError)
		return err
	}

	dispatchErr := func() (err error) {
		defer func() {
			if stopErr := s.backend.Stop(); stopErr != nil {
				s.log.Warn("Simulator: backend stop failed", "error", stopErr)
				if err == nil {
					err = stopErr
				}
			}
		}()
		return s.dispatch(plan)
	}()

	if dispatchErr != nil {
		s.log.Error("Simulator: run failed", "error", dispatchErr)
		s.finish(StateError)
		return dispatchErr
	}

	if s.stopReq.Load() {
		done, total := s.Progress()
		s.log.Info("Simulator: run stopped", "done", done, "total", total)
		s.finish(StateStopped)
		return nil
	}

	s.log.Info("Simulator: run completed", "characters", s.done.Load())
	s.finish(StateCompleted)
	return nil
}

// countdown ticks from n to 1 and reports false if a stop arrived first
func (s *Simulator) countdown(n int) bool {
	if n <= 0 {
		return !s.stopReq.Load()
	}

	timer := time.NewTimer(s.tick)
	defer timer.Stop()

	for remaining := n; remaining > 0; remaining-- {
		if s.stopReq.Load() {
			return false
		}
		if s.hooks.OnCountdown != nil {
			s.hooks.OnCountdown(remaining)
		}

		timer.Reset(s.tick)
		select {
		case <-timer.C:
		case <-s.wake:
			return false
		}
	}
	return !s.stopReq.Load()
}

func (s *Simulator) dispatch(plan *payload.Plan) error {
	total := int(s.total.Load())

	for i, task := range plan.Tasks {
		s.log.Debug("Simulator: dispatching task", "index", i, "description", task.Description)

		for _, r := range task.Payload {
			if s.stopReq.Load() {
				return nil
			}
			if s.paused.Load() {
				s.waitWhilePaused()
				if s.stopReq.Load() {
					return nil
				}
			}

			if err := s.backend.TypeCharacter(r, plan.Delay); err != nil {
				return fmt.Errorf("task %q: %w", task.Description, err)
			}

			done := int(s.done.Add(1))
			if s.hooks.OnProgress != nil {
				s.hooks.OnProgress(done, total)
			}
		}
	}

	return s.backend.Flush()
}

func (s *Simulator) waitWhilePaused() {
	for s.paused.Load() && !s.stopReq.Load() {
		time.Sleep(s.poll)
	}
}

// Stop requests the current run to end. It releases a paused run and
// interrupts the countdown. Calling it repeatedly, or with no run active,
// is harmless.
func (s *Simulator) Stop() {
	s.stopReq.Store(true)
	s.paused.Store(false)
	select {
	case s.wake <- struct{}{}:
	default:
	}

	for {
		cur := s.State()
		if cur != StateCountdown && cur != StateRunning && cur != StatePaused {
			return
		}
		if s.state.CompareAndSwap(int32(cur), int32(StateAborting)) {
			s.log.Info("Simulator: stop requested", "from", cur.String())
			s.emitStatus(StateAborting)
			return
		}
	}
}

// Pause suspends dispatch before the next character. Only a running
// simulation can be paused.
func (s *Simulator) Pause() {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StatePaused)) {
		return
	}
	s.paused.Store(true)
	s.log.Info("Simulator: paused")
	s.emitStatus(StatePaused)
}

// Resume continues a paused simulation
func (s *Simulator) Resume() {
	if !s.state.CompareAndSwap(int32(StatePaused), int32(StateRunning)) {
		return
	}
	s.log.Info("Simulator: resumed")
	s.emitStatus(StateRunning)
	s.paused.Store(false)
}

// TogglePause pauses a running simulation or resumes a paused one
func (s *Simulator) TogglePause() {
	switch s.State() {
	case StateRunning:
		s.Pause()
	case StatePaused:
		s.Resume()
	}
}

func (s *Simulator) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Simulator) finish(st State) {
	s.paused.Store(false)
	s.setState(st)
	s.emitStatus(st)
}

func (s *Simulator) emitStatus(st State) {
	if s.hooks.OnStatus != nil {
		s.hooks.OnStatus(st)
	}
}
