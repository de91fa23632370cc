package trainer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/history"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
)

// UIControllerArgs holds the arguments for creating a new UIController
type UIControllerArgs struct {
	Model          *UIModel
	WorkoutManager *WorkoutManager
	Recorder       *history.Recorder
	Plan           plan.Plan
	PlanStart      time.Time
	Catalog        *plan.Catalog
	StateFile      string // UI choices file, empty disables persistence
	Logger         *log.Logger
	Now            func() time.Time // Defaults to time.Now
}

// UIController handles UI events and coordinates with the UIModel
type UIController struct {
	model          *UIModel
	workoutManager *WorkoutManager
	recorder       *history.Recorder
	plan           plan.Plan
	planStart      time.Time
	catalog        *plan.Catalog
	persistence    *uiModelPersistence
	logger         *log.Logger
	now            func() time.Time

	unregisterComplete func()
	ctx                context.Context
	cancel             context.CancelFunc
	wg                 sync.WaitGroup
}

// NewUIController creates a new UIController, restores the persisted preset
// and fills the model with today's content
func NewUIController(args UIControllerArgs) *UIController {
	if args.Model == nil {
		panic("UIController: model cannot be nil")
	}
	if args.WorkoutManager == nil {
		panic("UIController: workoutManager cannot be nil")
	}
	if args.Recorder == nil {
		panic("UIController: recorder cannot be nil")
	}
	if args.Catalog == nil {
		panic("UIController: catalog cannot be nil")
	}
	if args.Logger == nil {
		panic("UIController: logger cannot be nil")
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &UIController{
		model:          args.Model,
		workoutManager: args.WorkoutManager,
		recorder:       args.Recorder,
		plan:           args.Plan,
		planStart:      args.PlanStart,
		catalog:        args.Catalog,
		persistence:    newUIModelPersistence(args.StateFile, args.Logger),
		logger:         args.Logger,
		now:            args.Now,
		ctx:            ctx,
		cancel:         cancel,
	}

	if id, ok := c.persistence.getPreferredPreset(); ok {
		c.workoutManager.SelectPreset(id)
	}

	c.unregisterComplete = c.workoutManager.ListenToWorkoutComplete(c.onWorkoutComplete)

	c.Refresh()
	c.loadTodaysSession()

	if mode, ok := c.persistence.getLastMode(); ok && mode != UIModeWorkout {
		c.model.SetMode(mode)
	}

	c.persistModeChanges()

	return c
}

// persistModeChanges saves the current screen after every mode change,
// including the ones the workout manager makes
func (c *UIController) persistModeChanges() {
	ch := make(chan UIState, 1)
	unregister := c.model.ListenToUIState(ch)
	go_func_utils.SafeGoWG(c.logger, &c.wg, "UIController mode", func() {
		defer unregister()
		for {
			select {
			case <-c.ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				// Notifications can be dropped, the model has the latest mode
				c.persistence.setLastMode(c.model.GetUIState().Mode)
			}
		}
	})
}

// Refresh recomputes today's plan day, the calendar and the history
func (c *UIController) Refresh() {
	c.refreshTraining()
	c.refreshPlan()
	c.refreshAchievements()
}

func (c *UIController) refreshTraining() {
	today := c.now()
	day := c.plan.Resolve(c.planStart, today)
	c.model.SetTrainingState(TrainingState{
		Today:     today,
		DayNumber: day.Day,
		Session:   plan.GetSessionInfo(day.Session),
		Exercises: c.catalog.Exercises(day.Session),
	})
}

func (c *UIController) refreshPlan() {
	today := c.now()
	c.model.SetPlanState(PlanState{
		Days:        c.plan.Upcoming(today, upcomingDays),
		TodayNumber: plan.TargetDayNumber(c.planStart, today),
	})
}

func (c *UIController) refreshAchievements() {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	records := c.recorder.History(ctx)
	c.model.SetAchievements(AchievementsState{
		Summary: history.Summarize(records),
		Records: records,
	})
}

// loadTodaysSession preloads the resolved session into the timer without
// switching screens. Rest days leave the timer empty.
func (c *UIController) loadTodaysSession() {
	training := c.model.GetTrainingState()
	if training.Session.ID.IsRest() {
		return
	}
	c.workoutManager.SelectSession(training.Session, training.Exercises)
}

// OnEscapeKey handles when the Escape key is pressed
func (c *UIController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	info, ok := GetUIModeInfo(mode)
	if !ok {
		c.logger.Printf("Unknown mode: %d", mode)
		return
	}
	c.logger.Printf("Switching to %s mode", info.DisplayName)

	switch mode {
	case UIModeTraining, UIModePlan:
		// The day may have rolled over since the last visit
		c.refreshTraining()
		c.refreshPlan()
	case UIModeAchievements:
		c.refreshAchievements()
	}

	c.model.SetMode(mode)
}

// --- Session Selection Methods ---

// BeginTodaysWorkout loads the resolved session and opens the timer
func (c *UIController) BeginTodaysWorkout() {
	training := c.model.GetTrainingState()
	if training.Session.ID.IsRest() {
		c.logger.Printf("Day %d is a rest day - pick a session on the Plan screen (press 2) to train anyway", training.DayNumber)
		return
	}
	c.selectSession(training.Session.ID)
}

// OnPlanDaySelected loads the session of a calendar entry and opens the timer
func (c *UIController) OnPlanDaySelected(index int) {
	days := c.model.GetPlanState().Days
	if index < 0 || index >= len(days) {
		c.logger.Printf("Invalid plan day index: %d", index)
		return
	}
	day := days[index]
	if day.Session.IsRest() {
		c.logger.Printf("Day %d is a rest day", day.Day)
		return
	}
	c.selectSession(day.Session)
}

// OnTemplateSelected loads one of the session templates and opens the timer
func (c *UIController) OnTemplateSelected(index int) {
	templates := c.catalog.Templates()
	if index < 0 || index >= len(templates) {
		c.logger.Printf("Invalid template index: %d", index)
		return
	}
	c.selectSession(templates[index])
}

func (c *UIController) selectSession(id plan.SessionID) {
	state := c.workoutManager.GetState()
	if state.Status == WorkoutStatusRunning || state.Status == WorkoutStatusPaused {
		c.logger.Printf("Finish or stop the current workout first (press x)")
		c.model.SetMode(UIModeWorkout)
		return
	}

	info := plan.GetSessionInfo(id)
	c.logger.Printf("Session selected: %s", info.Name)
	c.workoutManager.SelectSession(info, c.catalog.Exercises(id))
	c.model.SetMode(UIModeWorkout)
}

// --- Workout Methods ---

// ToggleWorkout starts, pauses, or resumes the workout based on current state
func (c *UIController) ToggleWorkout() {
	c.workoutManager.Toggle()
}

// SkipPhase ends the current work or rest phase
func (c *UIController) SkipPhase() {
	c.workoutManager.Skip()
}

// StopWorkout ends the workout, recording it if it had started.
// An unstarted workout goes back to the training screen.
func (c *UIController) StopWorkout() {
	c.workoutManager.Stop()
}

// RestartWorkout discards the current run
func (c *UIController) RestartWorkout() {
	c.workoutManager.Restart()
}

// CyclePreset switches to the next timer preset and remembers it
func (c *UIController) CyclePreset() {
	preset, ok := c.workoutManager.CyclePreset()
	if !ok {
		return
	}
	c.logger.Printf("Timer preset: %s", preset.Description)
	c.persistence.setPreferredPreset(preset.ID)
}

func (c *UIController) onWorkoutComplete(record history.Record) {
	c.logger.Printf("Well done! %s finished in %d min", plan.GetSessionInfo(record.Session).Name, record.DurationMinutes)
	c.refreshTraining()
}

// Shutdown stops the workout manager and saves the final screen
func (c *UIController) Shutdown() {
	c.unregisterComplete()
	c.workoutManager.Shutdown()
	c.cancel()
	c.wg.Wait()
	c.persistence.setLastMode(c.model.GetUIState().Mode)
}
