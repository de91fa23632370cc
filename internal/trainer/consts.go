package trainer

import (
	"time"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/history"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/interval"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
)

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeTraining     UIMode = iota // Yesterday-relative session and its exercises
	UIModePlan                       // 28-day calendar
	UIModeWorkout                    // Interval timer
	UIModeAchievements               // Totals and history
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // The number key to activate this mode
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeTraining, DisplayName: "Training", KeyBinding: '1'},
	{Mode: UIModePlan, DisplayName: "Plan", KeyBinding: '2'},
	{Mode: UIModeWorkout, DisplayName: "Workout", KeyBinding: '3'},
	{Mode: UIModeAchievements, DisplayName: "Achievements", KeyBinding: '4'},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

const (
	tickInterval  = 1 * time.Second
	recordTimeout = 5 * time.Second
	upcomingDays  = plan.CycleDays
)

// WorkoutStatus represents the current status of a workout
type WorkoutStatus int

const (
	WorkoutStatusIdle     WorkoutStatus = iota // No session loaded
	WorkoutStatusReady                         // Session loaded, timer not started
	WorkoutStatusRunning                       // Timer counting down
	WorkoutStatusPaused                        // Timer held
	WorkoutStatusFinished                      // Completed or stopped, Restart to run again
)

func (s WorkoutStatus) String() string {
	switch s {
	case WorkoutStatusIdle:
		return "Idle"
	case WorkoutStatusReady:
		return "Ready"
	case WorkoutStatusRunning:
		return "Running"
	case WorkoutStatusPaused:
		return "Paused"
	case WorkoutStatusFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// WorkoutState holds the current state of a workout execution
type WorkoutState struct {
	Status    WorkoutStatus
	Session   plan.SessionInfo
	Exercises []plan.Exercise
	Preset    interval.Preset
	Config    interval.Config
	Timer     interval.State
	Elapsed   time.Duration // Wall clock since Start, frozen once finished
	Err       error         // Set when the selected config cannot run
}

// CurrentExercise returns the exercise the timer is on, if the session has named exercises
func (s WorkoutState) CurrentExercise() (plan.Exercise, bool) {
	idx := s.Timer.ExerciseIndex
	if idx < 0 || idx >= len(s.Exercises) {
		return plan.Exercise{}, false
	}
	return s.Exercises[idx], true
}

// TrainingState is what the training screen shows for today
type TrainingState struct {
	Today     time.Time
	DayNumber int // Resolved plan day, 1..28
	Session   plan.SessionInfo
	Exercises []plan.Exercise
}

// PlanState is the calendar projection of the plan starting today
type PlanState struct {
	Days        []plan.CalendarDay
	TodayNumber int
}

// AchievementsState is the history screen content
type AchievementsState struct {
	Summary history.Summary
	Records []history.Record
}
