package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

func newStartedEngine(t *testing.T, config Config) (*Engine, State) {
	t.Helper()
	engine, err := NewEngine(config)
	require.NoError(t, err)
	state, err := engine.Start(engine.NewState(), testStart)
	require.NoError(t, err)
	return engine, state
}

// tickToPhaseEnd ticks until the current phase completes and returns the events of the last tick
func tickToPhaseEnd(engine *Engine, s State) (State, []Event) {
	remaining := s.SecondsRemaining
	var events []Event
	for i := 0; i < remaining; i++ {
		s, events = engine.Tick(s)
	}
	return s, events
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cases := []Config{
		{WorkSeconds: 0, RestSeconds: 0, RoundsPerExercise: 1, ExerciseCount: 1},
		{WorkSeconds: -5, RestSeconds: 0, RoundsPerExercise: 1, ExerciseCount: 1},
		{WorkSeconds: 10, RestSeconds: -1, RoundsPerExercise: 1, ExerciseCount: 1},
		{WorkSeconds: 10, RestSeconds: 0, RoundsPerExercise: 0, ExerciseCount: 1},
		{WorkSeconds: 10, RestSeconds: 0, RoundsPerExercise: 1, ExerciseCount: 0},
	}
	for _, c := range cases {
		engine, err := NewEngine(c)
		assert.Nil(t, engine)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestStart_SetsInitialState(t *testing.T) {
	_, s := newStartedEngine(t, Config{WorkSeconds: 30, RestSeconds: 10, RoundsPerExercise: 2, ExerciseCount: 3})

	assert.True(t, s.Running)
	assert.False(t, s.Paused)
	assert.Equal(t, PhaseWork, s.Phase)
	assert.Equal(t, 1, s.Round)
	assert.Equal(t, 0, s.ExerciseIndex)
	assert.Equal(t, 30, s.SecondsRemaining)
	assert.Equal(t, testStart, s.StartedAt)
}

func TestStart_RejectedWhenAlreadyStarted(t *testing.T) {
	engine, s := newStartedEngine(t, Config{WorkSeconds: 30, RoundsPerExercise: 1, ExerciseCount: 1})
	s, _ = engine.Tick(s)

	next, err := engine.Start(s, testStart.Add(time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.Equal(t, s, next)
}

func TestPauseResume(t *testing.T) {
	engine, s := newStartedEngine(t, Config{WorkSeconds: 30, RoundsPerExercise: 1, ExerciseCount: 1})

	s = engine.Pause(s)
	assert.True(t, s.Paused)
	assert.True(t, s.Running)

	next, events := engine.Tick(s)
	assert.Nil(t, events)
	assert.Equal(t, 30, next.SecondsRemaining)

	s = engine.Resume(s)
	assert.False(t, s.Paused)
	s, events = engine.Tick(s)
	assert.Equal(t, 29, s.SecondsRemaining)
	require.Len(t, events, 1)
	assert.Equal(t, EventTick, events[0].Kind)
	assert.Equal(t, 29, events[0].SecondsRemaining)
}

func TestPause_NoEffectWhenNotRunning(t *testing.T) {
	engine, err := NewEngine(Config{WorkSeconds: 30, RoundsPerExercise: 1, ExerciseCount: 1})
	require.NoError(t, err)

	s := engine.Pause(engine.NewState())
	assert.False(t, s.Paused)
	assert.False(t, s.Running)

	s, events := engine.Tick(s)
	assert.Nil(t, events)
	assert.Equal(t, 30, s.SecondsRemaining)
}

func TestTick_WorkToRest(t *testing.T) {
	configs := []Config{
		{WorkSeconds: 20, RestSeconds: 10, RoundsPerExercise: 2, ExerciseCount: 1},
		{WorkSeconds: 1, RestSeconds: 1, RoundsPerExercise: 1, ExerciseCount: 1},
		{WorkSeconds: 45, RestSeconds: 15, RoundsPerExercise: 3, ExerciseCount: 8},
	}
	for _, config := range configs {
		engine, s := newStartedEngine(t, config)
		for i := 0; i < config.WorkSeconds; i++ {
			s, _ = engine.Tick(s)
		}
		assert.Equal(t, PhaseRest, s.Phase)
		assert.Equal(t, config.RestSeconds, s.SecondsRemaining)
		assert.Equal(t, 1, s.Round)
		assert.Equal(t, 0, s.ExerciseIndex)
	}
}

func TestTick_ZeroRestNeverObservesRest(t *testing.T) {
	config := Config{WorkSeconds: 3, RestSeconds: 0, RoundsPerExercise: 3, ExerciseCount: 2}
	engine, s := newStartedEngine(t, config)

	rounds := []int{s.Round}
	for s.Running {
		s, _ = engine.Tick(s)
		assert.Equal(t, PhaseWork, s.Phase)
		if s.Running && s.Round != rounds[len(rounds)-1] {
			rounds = append(rounds, s.Round)
		}
	}
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, rounds)
	assert.True(t, s.Completed)
}

func TestSkip_EquivalentToTickingDown(t *testing.T) {
	config := Config{WorkSeconds: 5, RestSeconds: 2, RoundsPerExercise: 2, ExerciseCount: 2}
	engine, s := newStartedEngine(t, config)

	// Move somewhere mid-phase first
	s, _ = engine.Tick(s)
	s, _ = engine.Tick(s)

	for s.Running {
		skipped, skipEvents := engine.Skip(s)
		ticked, tickEvents := tickToPhaseEnd(engine, s)

		assert.Equal(t, ticked.Phase, skipped.Phase)
		assert.Equal(t, ticked.Round, skipped.Round)
		assert.Equal(t, ticked.ExerciseIndex, skipped.ExerciseIndex)
		assert.Equal(t, ticked.SecondsRemaining, skipped.SecondsRemaining)
		assert.Equal(t, ticked.Running, skipped.Running)
		assert.Equal(t, countKind(tickEvents, EventWorkoutComplete), countKind(skipEvents, EventWorkoutComplete))

		s = skipped
	}
}

func TestSkip_NoEffectWhenNotRunning(t *testing.T) {
	engine, err := NewEngine(Config{WorkSeconds: 5, RoundsPerExercise: 1, ExerciseCount: 1})
	require.NoError(t, err)

	s, events := engine.Skip(engine.NewState())
	assert.Nil(t, events)
	assert.Equal(t, engine.NewState(), s)
}

func TestWorkoutComplete_FiresOnceAfterAllPhases(t *testing.T) {
	configs := []Config{
		{WorkSeconds: 20, RestSeconds: 10, RoundsPerExercise: 2, ExerciseCount: 1},
		{WorkSeconds: 60, RestSeconds: 0, RoundsPerExercise: 3, ExerciseCount: 4},
		{WorkSeconds: 45, RestSeconds: 15, RoundsPerExercise: 3, ExerciseCount: 8},
	}
	for _, config := range configs {
		engine, s := newStartedEngine(t, config)

		completions := 0
		phaseCompletions := 0
		for i := 0; i < config.TotalPhases(); i++ {
			require.True(t, s.Running, "workout ended early after %d phases", i)
			var events []Event
			s, events = engine.Skip(s)
			completions += countKind(events, EventWorkoutComplete)
			phaseCompletions += countKind(events, EventPhaseComplete)
		}

		assert.Equal(t, 1, completions)
		assert.Equal(t, config.TotalPhases(), phaseCompletions)
		assert.False(t, s.Running)
		assert.True(t, s.Completed)

		// Nothing more happens once complete
		next, events := engine.Tick(s)
		assert.Nil(t, events)
		assert.Equal(t, s, next)
	}
}

func TestTabataSequence(t *testing.T) {
	engine, s := newStartedEngine(t, Config{WorkSeconds: 20, RestSeconds: 10, RoundsPerExercise: 2, ExerciseCount: 1})

	type step struct {
		phase   Phase
		seconds int
	}
	observed := []step{{s.Phase, s.SecondsRemaining}}
	completeAfter := 0

	for i := 1; s.Running; i++ {
		var events []Event
		s, events = tickToPhaseEnd(engine, s)
		if countKind(events, EventWorkoutComplete) > 0 {
			completeAfter = i
			break
		}
		observed = append(observed, step{s.Phase, s.SecondsRemaining})
	}

	assert.Equal(t, []step{
		{PhaseWork, 20},
		{PhaseRest, 10},
		{PhaseWork, 20},
		{PhaseRest, 10},
	}, observed)
	assert.Equal(t, 4, completeAfter)
}

func TestStop(t *testing.T) {
	engine, err := NewEngine(Config{WorkSeconds: 20, RestSeconds: 10, RoundsPerExercise: 2, ExerciseCount: 1})
	require.NoError(t, err)

	// Never started: nothing to record
	s, recordDue := engine.Stop(engine.NewState())
	assert.False(t, recordDue)
	assert.False(t, s.Running)
	assert.False(t, s.Finished)

	// Started then stopped: record exactly once
	s, err = engine.Start(engine.NewState(), testStart)
	require.NoError(t, err)
	s = engine.Pause(s)
	s, recordDue = engine.Stop(s)
	assert.True(t, recordDue)
	assert.False(t, s.Running)
	assert.False(t, s.Paused)
	assert.True(t, s.Finished)

	_, recordDue = engine.Stop(s)
	assert.False(t, recordDue)
}

func TestStop_AfterCompletionDoesNotRecordAgain(t *testing.T) {
	engine, s := newStartedEngine(t, Config{WorkSeconds: 1, RoundsPerExercise: 1, ExerciseCount: 1})
	s, events := engine.Tick(s)
	require.Equal(t, 1, countKind(events, EventWorkoutComplete))

	_, recordDue := engine.Stop(s)
	assert.False(t, recordDue)
}

func TestReset(t *testing.T) {
	engine, s := newStartedEngine(t, Config{WorkSeconds: 5, RestSeconds: 5, RoundsPerExercise: 2, ExerciseCount: 2})
	s, _ = engine.Skip(s)
	s, _ = engine.Skip(s)
	require.Equal(t, 2, s.Round)

	s = engine.Reset()
	assert.False(t, s.Started())
	assert.Equal(t, engine.NewState(), s)

	_, err := engine.Start(s, testStart)
	assert.NoError(t, err)
}

func TestDurationMinutes(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 1},
		{10 * time.Second, 1},
		{89 * time.Second, 1},
		{90 * time.Second, 2},
		{25 * time.Minute, 25},
		{25*time.Minute + 29*time.Second, 25},
		{25*time.Minute + 30*time.Second, 26},
		{-time.Minute, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DurationMinutes(testStart, testStart.Add(c.elapsed)), "elapsed %v", c.elapsed)
	}
}
