package simulator

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keysim/internal/payload"
)

type fakeBackend struct {
	mu       sync.Mutex
	typed    []rune
	started  int
	stopped  int
	startErr error
	typeErr  error
	failAt   int
	onType   func(n int)
}

func (f *fakeBackend) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return f.startErr
}

func (f *fakeBackend) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func (f *fakeBackend) TypeCharacter(r rune, _ time.Duration) error {
	f.mu.Lock()
	f.typed = append(f.typed, r)
	n := len(f.typed)
	hook := f.onType
	f.mu.Unlock()

	if f.typeErr != nil && n == f.failAt {
		return f.typeErr
	}
	if hook != nil {
		hook(n)
	}
	return nil
}

func (f *fakeBackend) PressReturn(time.Duration) error { return nil }
func (f *fakeBackend) Flush() error { return nil }

func (f *fakeBackend) snapshot() (typed string, started, stopped int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.typed), f.started, f.stopped
}

// eventLog records hook calls in order
type eventLog struct {
	mu         sync.Mutex
	countdowns []int
	statuses   []State
	order      []string
}

func (e *eventLog) hooks() Hooks {
	return Hooks{
		OnCountdown: func(n int) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.countdowns = append(e.countdowns, n)
			e.order = append(e.order, "countdown")
		},
		OnStatus: func(st State) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.statuses = append(e.statuses, st)
			e.order = append(e.order, st.String())
		},
	}
}

func (e *eventLog) lastStatus() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.statuses) == 0 {
		return StateIdle
	}
	return e.statuses[len(e.statuses)-1]
}

func newTestSimulator(b *fakeBackend, hooks Hooks) *Simulator {
	return New(b, hooks,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTick(time.Millisecond),
		WithPollInterval(time.Millisecond),
	)
}

func textPlan(countdown int, payloads ...string) *payload.Plan {
	plan := &payload.Plan{Countdown: countdown}
	for _, p := range payloads {
		plan.Tasks = append(plan.Tasks, payload.Task{Description: "text input", Payload: p})
	}
	return plan
}

func TestRunPlanDispatchesInOrder(t *testing.T) {
	b := &fakeBackend{}
	events := &eventLog{}
	var progress [][2]int
	hooks := events.hooks()
	hooks.OnProgress = func(done, total int) { progress = append(progress, [2]int{done, total}) }

	sim := newTestSimulator(b, hooks)
	require.NoError(t, sim.RunPlan(textPlan(0, "ab", "ç\nd")))

	typed, started, stopped := b.snapshot()
	assert.Equal(t, "abç\nd", typed)
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, stopped)
	assert.Equal(t, []State{StateRunning, StateCompleted}, events.statuses)
	assert.Equal(t, StateCompleted, sim.State())
	require.Len(t, progress, 5)
	assert.Equal(t, [2]int{5, 5}, progress[4])

	done, total := sim.Progress()
	assert.Equal(t, 5, done)
	assert.Equal(t, 5, total)
}

func TestCountdownTicksBeforeRunning(t *testing.T) {
	b := &fakeBackend{}
	events := &eventLog{}
	sim := newTestSimulator(b, events.hooks())

	require.NoError(t, sim.RunPlan(textPlan(3, "x")))
	assert.Equal(t, []int{3, 2, 1}, events.countdowns)
	assert.Equal(t, []string{"countdown", "countdown", "countdown", "running", "completed"}, events.order)
}

func TestStopDuringCountdownPreventsDispatch(t *testing.T) {
	b := &fakeBackend{}
	events := &eventLog{}
	var sim *Simulator
	hooks := events.hooks()
	inner := hooks.OnCountdown
	hooks.OnCountdown = func(n int) {
		inner(n)
		if n == 5 {
			sim.Stop()
		}
	}
	sim = New(b, hooks,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTick(time.Hour),
	)

	finished := make(chan error, 1)
	go func() { finished <- sim.RunPlan(textPlan(5, "never typed")) }()

	select {
	case err := <-finished:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not interrupt the countdown")
	}

	typed, started, stopped := b.snapshot()
	assert.Empty(t, typed)
	assert.Zero(t, started)
	assert.Zero(t, stopped)
	assert.Equal(t, []int{5}, events.countdowns)
	assert.Equal(t, []State{StateAborting, StateStopped}, events.statuses)
	assert.Equal(t, StateStopped, sim.State())
}

func TestStopMidDispatch(t *testing.T) {
	b := &fakeBackend{}
	events := &eventLog{}
	sim := newTestSimulator(b, events.hooks())
	b.onType = func(n int) {
		if n == 3 {
			sim.Stop()
		}
	}

	require.NoError(t, sim.RunPlan(textPlan(0, "abcdef", "ghi")))

	typed, _, stopped := b.snapshot()
	assert.Equal(t, "abc", typed)
	assert.Equal(t, 1, stopped)
	assert.Equal(t, StateStopped, events.lastStatus())
	assert.NotContains(t, events.statuses, StateCompleted)
	assert.Contains(t, events.statuses, StateAborting)
}

func TestPauseBeforeDispatchBlocksUntilResume(t *testing.T) {
	b := &fakeBackend{}
	events := &eventLog{}
	var sim *Simulator
	hooks := events.hooks()
	inner := hooks.OnStatus
	var once sync.Once
	hooks.OnStatus = func(st State) {
		inner(st)
		if st == StateRunning {
			once.Do(sim.Pause)
		}
	}
	sim = newTestSimulator(b, hooks)

	finished := make(chan error, 1)
	go func() { finished <- sim.RunPlan(textPlan(0, "hello")) }()

	require.Eventually(t, func() bool {
		_, started, _ := b.snapshot()
		return started == 1 && sim.State() == StatePaused
	}, 5*time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	typed, _, _ := b.snapshot()
	assert.Empty(t, typed, "no characters while paused")

	sim.Resume()

	select {
	case err := <-finished:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish after resume")
	}

	typed, _, _ = b.snapshot()
	assert.Equal(t, "hello", typed)
	assert.Equal(t, []State{StateRunning, StatePaused, StateRunning, StateCompleted}, events.statuses)
}

func TestStopReleasesPausedRun(t *testing.T) {
	b := &fakeBackend{}
	events := &eventLog{}
	sim := newTestSimulator(b, events.hooks())
	b.onType = func(n int) {
		if n == 2 {
			sim.Pause()
		}
	}

	finished := make(chan error, 1)
	go func() { finished <- sim.RunPlan(textPlan(0, "abcdef")) }()

	require.Eventually(t, func() bool { return sim.State() == StatePaused }, 5*time.Second, time.Millisecond)
	sim.Stop()

	select {
	case err := <-finished:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("paused run did not respond to stop")
	}

	typed, _, stopped := b.snapshot()
	assert.Equal(t, "ab", typed)
	assert.Equal(t, 1, stopped)
	assert.Equal(t, StateStopped, sim.State())
}

func TestBackendErrorPropagatesAfterRelease(t *testing.T) {
	boom := errors.New("boom")
	b := &fakeBackend{typeErr: boom, failAt: 2}
	events := &eventLog{}
	sim := newTestSimulator(b, events.hooks())

	err := sim.RunPlan(textPlan(0, "abcd"))
	require.ErrorIs(t, err, boom)

	typed, _, stopped := b.snapshot()
	assert.Equal(t, "ab", typed)
	assert.Equal(t, 1, stopped, "backend released after failure")
	assert.Equal(t, StateError, sim.State())
	assert.Equal(t, StateError, events.lastStatus())
}

func TestBackendStartFailure(t *testing.T) {
	boom := errors.New("no driver")
	b := &fakeBackend{startErr: boom}
	events := &eventLog{}
	sim := newTestSimulator(b, events.hooks())

	err := sim.RunPlan(textPlan(0, "abc"))
	require.ErrorIs(t, err, boom)

	typed, _, stopped := b.snapshot()
	assert.Empty(t, typed)
	assert.Zero(t, stopped)
	assert.Equal(t, []State{StateRunning, StateError}, events.statuses)
}

func TestControlsOutsideRunAreNoOps(t *testing.T) {
	events := &eventLog{}
	sim := newTestSimulator(&fakeBackend{}, events.hooks())

	sim.Pause()
	sim.Resume()
	sim.Stop()
	sim.Stop()
	assert.Equal(t, StateIdle, sim.State())
	assert.Empty(t, events.statuses)

	// a stop before the run does not leak into it
	require.NoError(t, sim.RunPlan(textPlan(0, "ok")))
	assert.Equal(t, StateCompleted, sim.State())
}

func TestStopIsIdempotentDuringRun(t *testing.T) {
	b := &fakeBackend{}
	events := &eventLog{}
	sim := newTestSimulator(b, events.hooks())
	b.onType = func(n int) {
		if n == 1 {
			sim.Stop()
			sim.Stop()
		}
	}

	require.NoError(t, sim.RunPlan(textPlan(0, "abc")))
	assert.Equal(t, []State{StateRunning, StateAborting, StateStopped}, events.statuses)
}

func TestRunPlanRejectsNilPlan(t *testing.T) {
	sim := newTestSimulator(&fakeBackend{}, Hooks{})
	assert.ErrorIs(t, sim.RunPlan(nil), ErrNoPlan)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "aborting", StateAborting.String())
	assert.Equal(t, "unknown", State(99).String())

	st, ok := ParseState("paused")
	require.True(t, ok)
	assert.Equal(t, StatePaused, st)
	assert.True(t, st.Active())
	assert.True(t, StateStopped.Terminal())
}
