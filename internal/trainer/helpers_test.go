package trainer

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/history"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/interval"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
)

const waitTimeout = 2 * time.Second

// fakeTicker only fires when the test calls tick
type fakeTicker struct {
	ch     chan time.Time
	mu     sync.Mutex
	armed  bool
	resets int
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) C() <-chan time.Time {
	return f.ch
}

func (f *fakeTicker) Reset(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = true
	f.resets++
}

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = false
}

func (f *fakeTicker) isArmed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.armed
}

func (f *fakeTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case f.ch <- time.Now():
	case <-time.After(waitTimeout):
		t.Fatal("Timeout delivering tick")
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memStore is an in-memory history.Store
type memStore struct {
	mu        sync.Mutex
	records   []history.Record
	appendErr error
}

func (s *memStore) Append(ctx context.Context, record history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append([]history.Record{record}, s.records...)
	return nil
}

func (s *memStore) List(ctx context.Context) ([]history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]history.Record, len(s.records))
	copy(result, s.records)
	return result, nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

var errDiskFull = errors.New("disk full")

var twoExercises = []plan.Exercise{
	{Name: "Push-ups", Details: "3 x 12"},
	{Name: "Squats", Details: "3 x 15"},
}

type testEnv struct {
	logger   *log.Logger
	model    *UIModel
	store    *memStore
	recorder *history.Recorder
	ticker   *fakeTicker
	clock    *fakeClock
	wm       *WorkoutManager
}

func newTestLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newTestEnv builds a manager whose custom preset is 2s work, 1s rest, 1 round
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := newTestLogger()
	env := &testEnv{
		logger: logger,
		model:  NewUIModel(logger, make(chan string)),
		store:  &memStore{},
		ticker: newFakeTicker(),
		clock:  &fakeClock{now: time.Date(2025, time.August, 10, 9, 0, 0, 0, time.UTC)},
	}
	env.recorder = history.NewRecorder(env.store, logger)
	env.wm = NewWorkoutManager(WorkoutManagerArgs{
		Model:     env.model,
		Recorder:  env.recorder,
		Presets:   interval.AllPresets.WithCustom(2, 1, 1),
		Preset:    interval.PresetCustom,
		Logger:    logger,
		Now:       env.clock.Now,
		NewTicker: func() Ticker { return env.ticker },
	})
	t.Cleanup(func() {
		env.wm.Shutdown()
		env.model.Shutdown()
	})
	return env
}

func (env *testEnv) loadStrength() {
	env.wm.SelectSession(plan.GetSessionInfo(plan.SessionStrength), twoExercises)
}

func (env *testEnv) waitForStatus(t *testing.T, status WorkoutStatus) WorkoutState {
	t.Helper()
	require.Eventually(t, func() bool {
		return env.wm.GetState().Status == status
	}, waitTimeout, 5*time.Millisecond, "status never became %s", status)
	return env.wm.GetState()
}

func (env *testEnv) waitFor(t *testing.T, cond func(WorkoutState) bool) WorkoutState {
	t.Helper()
	require.Eventually(t, func() bool {
		return cond(env.wm.GetState())
	}, waitTimeout, 5*time.Millisecond)
	return env.wm.GetState()
}

func (env *testEnv) start(t *testing.T) {
	t.Helper()
	env.wm.Start()
	env.waitForStatus(t, WorkoutStatusRunning)
	require.Eventually(t, env.ticker.isArmed, waitTimeout, 5*time.Millisecond)
}
