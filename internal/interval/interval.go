package interval

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidConfig  = errors.New("invalid timer config")
	ErrAlreadyStarted = errors.New("workout already started")
)

// Phase is the Work or Rest sub-state within a round
type Phase int

const (
	PhaseWork Phase = iota
	PhaseRest
)

func (p Phase) String() string {
	switch p {
	case PhaseWork:
		return "WORK"
	case PhaseRest:
		return "REST"
	default:
		return "UNKNOWN"
	}
}

// Config is selected once per session and never changes while it runs
type Config struct {
	WorkSeconds       int // Length of every Work phase, must be > 0
	RestSeconds       int // Length of every Rest phase, 0 disables rest
	RoundsPerExercise int
	ExerciseCount     int
}

// Validate rejects configurations that would never terminate or would complete immediately
func (c Config) Validate() error {
	switch {
	case c.WorkSeconds <= 0:
		return fmt.Errorf("%w: work seconds must be positive, got %d", ErrInvalidConfig, c.WorkSeconds)
	case c.RestSeconds < 0:
		return fmt.Errorf("%w: rest seconds must not be negative, got %d", ErrInvalidConfig, c.RestSeconds)
	case c.RoundsPerExercise <= 0:
		return fmt.Errorf("%w: rounds per exercise must be positive, got %d", ErrInvalidConfig, c.RoundsPerExercise)
	case c.ExerciseCount <= 0:
		return fmt.Errorf("%w: exercise count must be positive, got %d", ErrInvalidConfig, c.ExerciseCount)
	}
	return nil
}

// TotalPhases returns how many phase completions a full workout takes
func (c Config) TotalPhases() int {
	perRound := 1
	if c.RestSeconds > 0 {
		perRound = 2
	}
	return perRound * c.RoundsPerExercise * c.ExerciseCount
}

// State is one snapshot of an active workout.
// Paused implies Running.
type State struct {
	ExerciseIndex    int // 0-based
	Round            int // 1-based
	Phase            Phase
	SecondsRemaining int
	Running          bool
	Paused           bool
	Finished         bool      // Completed naturally or stopped
	Completed        bool      // Last phase of last exercise ran out
	StartedAt        time.Time // Zero until the first Start
}

// Started reports whether Start has ever been applied to this state
func (s State) Started() bool {
	return !s.StartedAt.IsZero()
}

// EventKind identifies what an Engine transition emitted
type EventKind int

const (
	EventTick EventKind = iota
	EventPhaseComplete
	EventWorkoutComplete
)

// Event is emitted by Tick and Skip for the presentation layer
type Event struct {
	Kind             EventKind
	SecondsRemaining int   // For EventTick
	Phase            Phase // The phase that ended, for EventPhaseComplete
	Round            int
	ExerciseIndex    int
}

// DurationMinutes converts a session's wall-clock span into whole minutes,
// never less than one.
func DurationMinutes(startedAt, now time.Time) int {
	ms := now.Sub(startedAt).Milliseconds()
	minutes := int(math.Round(float64(ms) / 60000))
	if minutes < 1 {
		return 1
	}
	return minutes
}
