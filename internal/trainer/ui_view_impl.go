package trainer

import "github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"

// UIViewImpl defines the interface for framework-specific UI implementations
type UIViewImpl interface {
	// Initialize is called after construction to set up framework-specific widgets
	// controller is used to handle UI events
	Initialize(controller *UIController)

	// SetupKeyboardHandlers sets up keyboard event handlers
	SetupKeyboardHandlers(controller *UIController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// QueueUpdateDraw runs f on the UI event loop and redraws.
	// It blocks until f has run, which never happens once the UI has stopped.
	QueueUpdateDraw(f func())

	// --- Mode Management ---

	SetMode(mode UIMode)
	GetCurrentMode() UIMode

	// --- Log View (shared across modes) ---

	GetLogViewHeight() int
	ClearLogView()
	WriteLogLine(line string) error

	// --- Training Mode ---

	// UpdateTraining shows the resolved plan day and its exercises
	UpdateTraining(state TrainingState)

	// SetTemplateList populates the session templates list
	SetTemplateList(sessions []plan.SessionInfo)

	// --- Plan Mode ---

	UpdatePlan(state PlanState)

	// --- Workout Mode ---

	UpdateWorkoutState(state WorkoutState)

	// --- Achievements Mode ---

	UpdateAchievements(state AchievementsState)
}
