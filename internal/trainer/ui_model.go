package trainer

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/events"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/go_func_utils"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode UIMode
}

type UIModel struct {
	logEvent               *events.ChannelEvent[string]
	closeApplicationEvent  *events.ChannelEvent[struct{}]
	uiStateEvent           *events.ChannelEvent[UIState]
	uiState                UIState
	trainingStateEvent     *events.ChannelEvent[TrainingState]
	trainingState          TrainingState
	planStateEvent         *events.ChannelEvent[PlanState]
	planState              PlanState
	workoutStateEvent      *events.ChannelEvent[WorkoutState]
	workoutState           WorkoutState
	achievementsStateEvent *events.ChannelEvent[AchievementsState]
	achievementsState      AchievementsState
	logLines               []string
	logMu                  sync.RWMutex
	mu                     sync.RWMutex
	ctx                    context.Context
	cancel                 context.CancelFunc
	wg                     sync.WaitGroup
	logger                 *log.Logger
}

const maxLogLines = 1000

func NewUIModel(logger *log.Logger, uiLogChan <-chan string) *UIModel {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:               events.NewChannelEvent[string](false),
		closeApplicationEvent:  events.NewChannelEvent[struct{}](true),
		uiStateEvent:           events.NewChannelEvent[UIState](true),
		uiState:                UIState{Mode: UIModeTraining},
		trainingStateEvent:     events.NewChannelEvent[TrainingState](true),
		planStateEvent:         events.NewChannelEvent[PlanState](true),
		workoutStateEvent:      events.NewChannelEvent[WorkoutState](true),
		workoutState:           WorkoutState{Status: WorkoutStatusIdle},
		achievementsStateEvent: events.NewChannelEvent[AchievementsState](true),
		logLines:               make([]string, 0, maxLogLines),
		ctx:                    ctx,
		cancel:                 cancel,
		logger:                 logger,
	}

	// Read from the UI log channel and populate logLines
	go_func_utils.SafeGoWG(model.logger, &model.wg, "UIModel log reader", func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
func (m *UIModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
func (m *UIModel) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

func (m *UIModel) ListenToTrainingState(ch chan<- TrainingState) func() {
	return m.trainingStateEvent.Listen(ch)
}

func (m *UIModel) GetTrainingState() TrainingState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trainingState
}

func (m *UIModel) SetTrainingState(state TrainingState) {
	m.mu.Lock()
	m.trainingState = state
	m.mu.Unlock()

	m.trainingStateEvent.Notify(state)
}

func (m *UIModel) ListenToPlanState(ch chan<- PlanState) func() {
	return m.planStateEvent.Listen(ch)
}

func (m *UIModel) GetPlanState() PlanState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.planState
}

func (m *UIModel) SetPlanState(state PlanState) {
	m.mu.Lock()
	m.planState = state
	m.mu.Unlock()

	m.planStateEvent.Notify(state)
}

// ListenToWorkoutState registers a channel to receive workout state updates
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToWorkoutState(ch chan<- WorkoutState) func() {
	return m.workoutStateEvent.Listen(ch)
}

// GetWorkoutState returns the current workout state
func (m *UIModel) GetWorkoutState() WorkoutState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workoutState
}

// SetWorkoutState updates the workout state and notifies listeners
func (m *UIModel) SetWorkoutState(state WorkoutState) {
	m.mu.Lock()
	m.workoutState = state
	m.mu.Unlock()

	m.workoutStateEvent.Notify(state)
}

func (m *UIModel) ListenToAchievements(ch chan<- AchievementsState) func() {
	return m.achievementsStateEvent.Listen(ch)
}

func (m *UIModel) GetAchievements() AchievementsState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.achievementsState
}

// SetAchievements replaces the history snapshot and notifies listeners
func (m *UIModel) SetAchievements(state AchievementsState) {
	m.mu.Lock()
	m.achievementsState = state
	m.mu.Unlock()

	m.achievementsStateEvent.Notify(state)
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n > len(m.logLines) {
		n = len(m.logLines)
	}
	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
