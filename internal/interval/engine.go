package interval

import (
	"time"
)

// Engine applies user intents and clock ticks to a State.
// Every method is pure: it takes the current State by value and returns the
// next one, so the caller owns scheduling and storage.
type Engine struct {
	config Config
}

// NewEngine validates config and returns an Engine for it
func NewEngine(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{config: config}, nil
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() Config {
	return e.config
}

// NewState returns the not-yet-started state, showing the first Work phase
func (e *Engine) NewState() State {
	return State{
		ExerciseIndex:    0,
		Round:            1,
		Phase:            PhaseWork,
		SecondsRemaining: e.config.WorkSeconds,
	}
}

// Start begins the workout. Only valid from the not-yet-started state.
func (e *Engine) Start(s State, now time.Time) (State, error) {
	if s.Started() || s.Running || s.Finished {
		return s, ErrAlreadyStarted
	}
	s = e.NewState()
	s.Running = true
	s.StartedAt = now
	return s, nil
}

// Pause stops the countdown without losing SecondsRemaining
func (e *Engine) Pause(s State) State {
	if !s.Running {
		return s
	}
	s.Paused = true
	return s
}

// Resume continues a paused countdown
func (e *Engine) Resume(s State) State {
	if !s.Running {
		return s
	}
	s.Paused = false
	return s
}

// Tick advances the countdown by one second. When the phase runs out it
// performs the phase-complete transition instead of going negative.
func (e *Engine) Tick(s State) (State, []Event) {
	if !s.Running || s.Paused {
		return s, nil
	}

	if s.SecondsRemaining > 1 {
		s.SecondsRemaining--
		return s, []Event{{Kind: EventTick, SecondsRemaining: s.SecondsRemaining}}
	}

	s.SecondsRemaining = 0
	events := []Event{{Kind: EventTick, SecondsRemaining: 0}}
	s, completeEvents := e.completePhase(s)
	return s, append(events, completeEvents...)
}

// Skip ends the current phase immediately. The result is the same as
// ticking the phase down to zero.
func (e *Engine) Skip(s State) (State, []Event) {
	if !s.Running {
		return s, nil
	}
	return e.completePhase(s)
}

// Stop terminates the session. recordDue is true when the session had
// started and no completion has been reported for it yet.
func (e *Engine) Stop(s State) (next State, recordDue bool) {
	recordDue = s.Started() && !s.Finished
	s.Running = false
	s.Paused = false
	if s.Started() {
		s.Finished = true
	}
	return s, recordDue
}

// Reset returns to the not-yet-started state, discarding StartedAt
func (e *Engine) Reset() State {
	return e.NewState()
}

// completePhase picks the next phase. The order of checks is the policy:
// rest after work (when enabled), then next round, then next exercise,
// then done.
func (e *Engine) completePhase(s State) (State, []Event) {
	ended := Event{
		Kind:          EventPhaseComplete,
		Phase:         s.Phase,
		Round:         s.Round,
		ExerciseIndex: s.ExerciseIndex,
	}

	switch {
	case s.Phase == PhaseWork && e.config.RestSeconds > 0:
		s.Phase = PhaseRest
		s.SecondsRemaining = e.config.RestSeconds

	case s.Round < e.config.RoundsPerExercise:
		s.Round++
		s.Phase = PhaseWork
		s.SecondsRemaining = e.config.WorkSeconds

	case s.ExerciseIndex < e.config.ExerciseCount-1:
		s.ExerciseIndex++
		s.Round = 1
		s.Phase = PhaseWork
		s.SecondsRemaining = e.config.WorkSeconds

	default:
		s.SecondsRemaining = 0
		s.Running = false
		s.Paused = false
		s.Finished = true
		s.Completed = true
		return s, []Event{ended, {Kind: EventWorkoutComplete}}
	}

	return s, []Event{ended}
}
