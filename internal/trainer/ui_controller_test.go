package trainer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/history"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/interval"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
)

func newTestController(t *testing.T, env *testEnv, stateFile string) *UIController {
	t.Helper()
	c := NewUIController(UIControllerArgs{
		Model:          env.model,
		WorkoutManager: env.wm,
		Recorder:       env.recorder,
		Plan:           plan.DefaultPlan(),
		PlanStart:      plan.DefaultStartDate,
		Catalog:        plan.DefaultCatalog(),
		StateFile:      stateFile,
		Logger:         env.logger,
		Now:            env.clock.Now,
	})
	t.Cleanup(c.Shutdown)
	return c
}

// waitForSavedMode waits until the state file at path holds mode
func waitForSavedMode(t *testing.T, path string, mode UIMode) {
	t.Helper()
	require.Eventually(t, func() bool {
		saved, ok := newUIModelPersistence(path, newTestLogger()).getLastMode()
		return ok && saved == mode
	}, waitTimeout, 5*time.Millisecond, "mode %d never saved", mode)
}

func TestUIController_ShowsYesterdaysPlanDay(t *testing.T) {
	env := newTestEnv(t) // 2025-08-10, day 10 of the plan
	newTestController(t, env, "")

	training := env.model.GetTrainingState()
	assert.Equal(t, 9, training.DayNumber)
	assert.Equal(t, plan.SessionStrength, training.Session.ID)
	assert.Len(t, training.Exercises, 8)

	planState := env.model.GetPlanState()
	assert.Equal(t, 9, planState.TodayNumber)
	require.Len(t, planState.Days, plan.CycleDays)
	assert.Equal(t, time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC), planState.Days[0].Date)
	assert.Equal(t, 1, planState.Days[0].Day)

	// Today's session is preloaded but the screen does not change
	workout := env.wm.GetState()
	assert.Equal(t, WorkoutStatusReady, workout.Status)
	assert.Equal(t, plan.SessionStrength, workout.Session.ID)
	assert.Equal(t, 8, workout.Config.ExerciseCount)
	assert.Equal(t, UIModeTraining, env.model.GetUIState().Mode)
}

func TestUIController_BeforePlanStartShowsDayOne(t *testing.T) {
	env := newTestEnv(t)
	env.clock.now = time.Date(2025, time.July, 20, 12, 0, 0, 0, time.UTC)
	newTestController(t, env, "")

	training := env.model.GetTrainingState()
	assert.Equal(t, 1, training.DayNumber)
	assert.Equal(t, plan.SessionStrength, training.Session.ID)
}

func TestUIController_RestDay(t *testing.T) {
	env := newTestEnv(t)
	env.clock.now = time.Date(2025, time.August, 5, 7, 30, 0, 0, time.UTC)
	c := newTestController(t, env, "")

	training := env.model.GetTrainingState()
	assert.Equal(t, 4, training.DayNumber)
	assert.True(t, training.Session.ID.IsRest())
	assert.Empty(t, training.Exercises)
	assert.Equal(t, WorkoutStatusIdle, env.wm.GetState().Status)

	c.BeginTodaysWorkout()
	assert.Equal(t, UIModeTraining, env.model.GetUIState().Mode)
	assert.Equal(t, WorkoutStatusIdle, env.wm.GetState().Status)

	// A template can still be picked by hand
	c.OnTemplateSelected(2)
	assert.Equal(t, UIModeWorkout, env.model.GetUIState().Mode)
	assert.Equal(t, plan.SessionTechnique, env.wm.GetState().Session.ID)
}

func TestUIController_BeginTodaysWorkout(t *testing.T) {
	env := newTestEnv(t)
	c := newTestController(t, env, "")

	c.BeginTodaysWorkout()
	assert.Equal(t, UIModeWorkout, env.model.GetUIState().Mode)
	assert.Equal(t, plan.SessionStrength, env.wm.GetState().Session.ID)
}

func TestUIController_OnPlanDaySelected(t *testing.T) {
	env := newTestEnv(t)
	c := newTestController(t, env, "")

	c.OnPlanDaySelected(3) // Day 4 is a rest day
	assert.Equal(t, UIModeTraining, env.model.GetUIState().Mode)

	c.OnPlanDaySelected(99)
	assert.Equal(t, UIModeTraining, env.model.GetUIState().Mode)

	c.OnPlanDaySelected(1)
	assert.Equal(t, UIModeWorkout, env.model.GetUIState().Mode)
	state := env.wm.GetState()
	assert.Equal(t, plan.SessionCardio, state.Session.ID)
	assert.Len(t, state.Exercises, 6)
}

func TestUIController_OnTemplateSelectedInvalidIndex(t *testing.T) {
	env := newTestEnv(t)
	c := newTestController(t, env, "")

	c.OnTemplateSelected(-1)
	c.OnTemplateSelected(3)
	assert.Equal(t, UIModeTraining, env.model.GetUIState().Mode)
	assert.Equal(t, plan.SessionStrength, env.wm.GetState().Session.ID)
}

func TestUIController_SessionLockedWhileWorkoutRuns(t *testing.T) {
	env := newTestEnv(t)
	c := newTestController(t, env, "")

	c.BeginTodaysWorkout()
	c.ToggleWorkout()
	env.waitForStatus(t, WorkoutStatusRunning)

	c.OnModeChange(UIModePlan)
	c.OnTemplateSelected(1)
	assert.Equal(t, UIModeWorkout, env.model.GetUIState().Mode)
	assert.Equal(t, plan.SessionStrength, env.wm.GetState().Session.ID)

	c.StopWorkout()
	env.waitForStatus(t, WorkoutStatusFinished)
	require.Eventually(t, func() bool { return env.store.count() == 1 }, waitTimeout, 5*time.Millisecond)
}

func TestUIController_WorkoutControls(t *testing.T) {
	env := newTestEnv(t)
	c := newTestController(t, env, "")
	c.BeginTodaysWorkout()

	c.ToggleWorkout()
	env.waitForStatus(t, WorkoutStatusRunning)

	c.SkipPhase()
	env.waitFor(t, func(s WorkoutState) bool { return s.Timer.Phase == interval.PhaseRest })

	c.ToggleWorkout()
	env.waitForStatus(t, WorkoutStatusPaused)

	c.RestartWorkout()
	state := env.waitForStatus(t, WorkoutStatusReady)
	assert.Equal(t, interval.PhaseWork, state.Timer.Phase)
	assert.Equal(t, 0, env.store.count())
}

func TestUIController_CompletedWorkoutUpdatesAchievements(t *testing.T) {
	env := newTestEnv(t)
	c := newTestController(t, env, "")
	c.OnTemplateSelected(2) // Technique, 5 exercises

	c.ToggleWorkout()
	env.waitForStatus(t, WorkoutStatusRunning)
	for i := 0; i < 10; i++ {
		c.SkipPhase()
	}

	state := env.waitForStatus(t, WorkoutStatusFinished)
	assert.True(t, state.Timer.Completed)
	require.Eventually(t, func() bool {
		return env.model.GetAchievements().Summary.TotalWorkouts == 1
	}, waitTimeout, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return env.model.GetUIState().Mode == UIModeTraining
	}, waitTimeout, 5*time.Millisecond)

	records := env.model.GetAchievements().Records
	require.Len(t, records, 1)
	assert.Equal(t, plan.SessionTechnique, records[0].Session)
}

func TestUIController_AchievementsLoadedFromStore(t *testing.T) {
	env := newTestEnv(t)
	start := env.clock.Now().Add(-time.Hour)
	require.NoError(t, env.store.Append(t.Context(), history.NewRecord(plan.SessionCardio, start, start.Add(25*time.Minute))))
	require.NoError(t, env.store.Append(t.Context(), history.NewRecord(plan.SessionStrength, start, start.Add(40*time.Minute))))

	c := newTestController(t, env, "")
	achievements := env.model.GetAchievements()
	assert.Equal(t, 2, achievements.Summary.TotalWorkouts)
	assert.Equal(t, 65, achievements.Summary.TotalMinutes)

	require.NoError(t, env.store.Append(t.Context(), history.NewRecord(plan.SessionTechnique, start, start.Add(5*time.Minute))))
	c.OnModeChange(UIModeAchievements)
	assert.Equal(t, UIModeAchievements, env.model.GetUIState().Mode)
	assert.Equal(t, 3, env.model.GetAchievements().Summary.TotalWorkouts)
	assert.Equal(t, plan.SessionTechnique, env.model.GetAchievements().Records[0].Session)
}

func TestUIController_ModeChangeRefreshesDay(t *testing.T) {
	env := newTestEnv(t)
	c := newTestController(t, env, "")
	assert.Equal(t, 9, env.model.GetTrainingState().DayNumber)

	env.clock.Advance(24 * time.Hour)
	c.OnModeChange(UIModePlan)
	assert.Equal(t, UIModePlan, env.model.GetUIState().Mode)
	assert.Equal(t, 10, env.model.GetTrainingState().DayNumber)
	assert.Equal(t, 10, env.model.GetPlanState().TodayNumber)

	c.OnModeChange(UIMode(42))
	assert.Equal(t, UIModePlan, env.model.GetUIState().Mode)
}

func TestUIController_PersistsPresetAndMode(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "state", "ui_state.json")

	env := newTestEnv(t)
	c := newTestController(t, env, stateFile)
	c.CyclePreset()
	assert.Equal(t, interval.PresetEMOM, env.wm.GetState().Preset.ID)
	c.OnModeChange(UIModeAchievements)
	waitForSavedMode(t, stateFile, UIModeAchievements)

	_, err := os.Stat(stateFile)
	require.NoError(t, err)

	restored := newTestEnv(t)
	newTestController(t, restored, stateFile)
	assert.Equal(t, interval.PresetEMOM, restored.wm.GetState().Preset.ID)
	assert.Equal(t, UIModeAchievements, restored.model.GetUIState().Mode)
}

func TestUIController_WorkoutModeNotRestored(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "ui_state.json")

	env := newTestEnv(t)
	c := newTestController(t, env, stateFile)
	c.OnModeChange(UIModeWorkout)
	waitForSavedMode(t, stateFile, UIModeWorkout)

	restored := newTestEnv(t)
	newTestController(t, restored, stateFile)
	assert.Equal(t, UIModeTraining, restored.model.GetUIState().Mode)
}

func TestUIController_SavesModeChangesFromWorkouts(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "ui_state.json")

	env := newTestEnv(t)
	c := newTestController(t, env, stateFile)

	c.OnModeChange(UIModePlan)
	waitForSavedMode(t, stateFile, UIModePlan)

	// Opening the timer and leaving it without starting
	c.OnTemplateSelected(0)
	waitForSavedMode(t, stateFile, UIModeWorkout)
	c.StopWorkout()
	assert.Equal(t, UIModeTraining, env.model.GetUIState().Mode)
	waitForSavedMode(t, stateFile, UIModeTraining)
	assert.Equal(t, 0, env.store.count())

	// The automatic return after a recorded workout
	c.OnModeChange(UIModeAchievements)
	waitForSavedMode(t, stateFile, UIModeAchievements)
	c.BeginTodaysWorkout()
	c.ToggleWorkout()
	env.waitForStatus(t, WorkoutStatusRunning)
	c.StopWorkout()
	waitForSavedMode(t, stateFile, UIModeTraining)
	require.Eventually(t, func() bool { return env.store.count() == 1 }, waitTimeout, 5*time.Millisecond)
}

func TestUIController_ShutdownSavesFinalMode(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "ui_state.json")

	env := newTestEnv(t)
	c := newTestController(t, env, stateFile)
	env.model.SetMode(UIModePlan)
	c.Shutdown()

	saved, ok := newUIModelPersistence(stateFile, newTestLogger()).getLastMode()
	assert.True(t, ok)
	assert.Equal(t, UIModePlan, saved)
}

func TestUIController_EscapeRequestsClose(t *testing.T) {
	env := newTestEnv(t)
	c := newTestController(t, env, "")

	closeChan := make(chan struct{}, 1)
	unregister := env.model.ListenToCloseApplication(closeChan)
	defer unregister()

	c.OnEscapeKey()
	select {
	case <-closeChan:
	case <-time.After(waitTimeout):
		t.Fatal("Timeout waiting for close request")
	}
}

func TestNewUIController_PanicsOnMissingDependencies(t *testing.T) {
	env := newTestEnv(t)
	assert.Panics(t, func() {
		NewUIController(UIControllerArgs{WorkoutManager: env.wm, Recorder: env.recorder, Catalog: plan.DefaultCatalog(), Logger: env.logger})
	})
	assert.Panics(t, func() {
		NewUIController(UIControllerArgs{Model: env.model, WorkoutManager: env.wm, Recorder: env.recorder, Logger: env.logger})
	})
}
