package trainer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/events"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/history"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/interval"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
)

// workoutCommand represents commands sent to the workout goroutine
type workoutCommand int

const (
	cmdStart workoutCommand = iota
	cmdPause
	cmdResume
	cmdSkip
	cmdStop
	cmdRestart
)

func (c workoutCommand) String() string {
	switch c {
	case cmdStart:
		return "start"
	case cmdPause:
		return "pause"
	case cmdResume:
		return "resume"
	case cmdSkip:
		return "skip"
	case cmdStop:
		return "stop"
	case cmdRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// Ticker is the one-second clock driving the timer. It starts stopped.
type Ticker interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// NewTimeTicker returns a stopped Ticker backed by time.Ticker
func NewTimeTicker() Ticker {
	t := time.NewTicker(tickInterval)
	t.Stop()
	return timeTicker{t}
}

// WorkoutManagerArgs holds the arguments for creating a new WorkoutManager
type WorkoutManagerArgs struct {
	Model     *UIModel
	Recorder  *history.Recorder
	Presets   interval.Presets
	Preset    interval.PresetID // Initially selected preset
	Exercises int               // Fixed exercise count, 0 uses the session's list
	Logger    *log.Logger
	Now       func() time.Time // Defaults to time.Now
	NewTicker func() Ticker    // Defaults to NewTimeTicker
}

// WorkoutManager runs the interval timer for the selected session and
// records finished workouts. All timer transitions happen on one goroutine.
type WorkoutManager struct {
	model    *UIModel
	recorder *history.Recorder
	presets  interval.Presets
	logger   *log.Logger
	now      func() time.Time

	// Current workout state (protected by mu)
	mu               sync.RWMutex
	session          plan.SessionInfo
	exercises        []plan.Exercise
	exerciseOverride int
	sessionLoaded    bool
	preset           interval.Preset
	engine           *interval.Engine
	configErr        error
	timer            interval.State
	finishedAt       time.Time

	tickEvent     *events.CallbackEvent[int]
	completeEvent *events.CallbackEvent[history.Record]

	// Goroutine management
	ticker       Ticker
	cmdChan      chan workoutCommand
	doneChan     chan struct{} // Closed to signal shutdown
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewWorkoutManager creates a new WorkoutManager and starts its goroutine
func NewWorkoutManager(args WorkoutManagerArgs) *WorkoutManager {
	if args.Model == nil {
		panic("WorkoutManager: model cannot be nil")
	}
	if args.Recorder == nil {
		panic("WorkoutManager: recorder cannot be nil")
	}
	if args.Logger == nil {
		panic("WorkoutManager: logger cannot be nil")
	}
	if len(args.Presets) == 0 {
		args.Presets = interval.AllPresets
	}
	if args.Now == nil {
		args.Now = time.Now
	}
	if args.NewTicker == nil {
		args.NewTicker = NewTimeTicker
	}

	preset, ok := args.Presets.ByID(args.Preset)
	if !ok {
		args.Logger.Printf("WorkoutManager: Unknown preset %q, using %s", args.Preset, preset.Name)
	}

	wm := &WorkoutManager{
		model:            args.Model,
		recorder:         args.Recorder,
		presets:          args.Presets,
		logger:           args.Logger,
		now:              args.Now,
		exerciseOverride: args.Exercises,
		preset:           preset,
		tickEvent:        events.NewCallbackEvent[int](false),
		completeEvent:    events.NewCallbackEvent[history.Record](false),
		ticker:           args.NewTicker(),
		cmdChan:          make(chan workoutCommand, 1),
		doneChan:         make(chan struct{}),
	}

	go_func_utils.SafeGoWG(wm.logger, &wm.wg, "WorkoutManager", wm.runWorkoutLoop)

	return wm
}

// ListenToTick registers a callback receiving the seconds remaining after every tick
func (wm *WorkoutManager) ListenToTick(callback func(secondsRemaining int)) func() {
	return wm.tickEvent.Listen(callback)
}

// ListenToWorkoutComplete registers a callback receiving the record of every
// workout that ran to completion
func (wm *WorkoutManager) ListenToWorkoutComplete(callback func(record history.Record)) func() {
	return wm.completeEvent.Listen(callback)
}

// Presets returns the selectable presets
func (wm *WorkoutManager) Presets() interval.Presets {
	return wm.presets
}

// SelectSession loads a session's exercises into the timer.
// Ignored while a workout is running or paused.
func (wm *WorkoutManager) SelectSession(session plan.SessionInfo, exercises []plan.Exercise) {
	wm.mu.Lock()
	if wm.timer.Running {
		wm.mu.Unlock()
		wm.logger.Printf("WorkoutManager: Cannot change session while a workout is in progress")
		return
	}

	wm.session = session
	wm.exercises = append([]plan.Exercise(nil), exercises...)
	wm.sessionLoaded = true
	wm.rebuildEngine()
	state := wm.buildState()
	wm.mu.Unlock()

	wm.logger.Printf("WorkoutManager: Session '%s' loaded (%d exercises)", session.Name, len(exercises))
	wm.model.SetWorkoutState(state)
}

// SelectPreset changes the timer preset. Only allowed before the timer starts.
func (wm *WorkoutManager) SelectPreset(id interval.PresetID) bool {
	wm.mu.Lock()
	if wm.timer.Started() || wm.timer.Running {
		wm.mu.Unlock()
		wm.logger.Printf("WorkoutManager: Cannot change preset after the workout has started")
		return false
	}

	preset, ok := wm.presets.ByID(id)
	if !ok {
		wm.logger.Printf("WorkoutManager: Unknown preset %q, using %s", id, preset.Name)
	}
	wm.preset = preset
	if wm.sessionLoaded {
		wm.rebuildEngine()
	}
	state := wm.buildState()
	wm.mu.Unlock()

	wm.logger.Printf("WorkoutManager: Preset set to %s", preset.Name)
	wm.model.SetWorkoutState(state)
	return true
}

// CyclePreset selects the preset after the current one and returns it
func (wm *WorkoutManager) CyclePreset() (interval.Preset, bool) {
	wm.mu.RLock()
	next := wm.presets.Next(wm.preset.ID)
	wm.mu.RUnlock()

	if !wm.SelectPreset(next.ID) {
		return interval.Preset{}, false
	}
	return next, true
}

// GetState returns a snapshot of the current workout
func (wm *WorkoutManager) GetState() WorkoutState {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.buildState()
}

// Start begins the loaded workout
func (wm *WorkoutManager) Start() {
	wm.mu.RLock()
	loaded := wm.sessionLoaded
	configErr := wm.configErr
	started := wm.timer.Started()
	wm.mu.RUnlock()

	switch {
	case !loaded:
		wm.logger.Printf("WorkoutManager: No session loaded")
		return
	case configErr != nil:
		wm.logger.Printf("WorkoutManager: Cannot start: %v", configErr)
		return
	case started:
		wm.logger.Printf("WorkoutManager: Workout already started")
		return
	}
	wm.send(cmdStart)
}

// Pause holds the countdown
func (wm *WorkoutManager) Pause() {
	wm.sendIf(cmdPause, func(s interval.State) bool { return s.Running && !s.Paused })
}

// Resume continues a paused countdown
func (wm *WorkoutManager) Resume() {
	wm.sendIf(cmdResume, func(s interval.State) bool { return s.Running && s.Paused })
}

// Skip ends the current phase immediately
func (wm *WorkoutManager) Skip() {
	wm.sendIf(cmdSkip, func(s interval.State) bool { return s.Running })
}

// Stop ends the workout. A started workout is recorded; an unstarted one is
// left loaded and the UI goes back to the training screen.
func (wm *WorkoutManager) Stop() {
	wm.mu.RLock()
	timer := wm.timer
	wm.mu.RUnlock()

	switch {
	case timer.Running:
		wm.send(cmdStop)
	case !timer.Started():
		wm.logger.Printf("WorkoutManager: Workout not started, nothing to record")
		wm.model.SetMode(UIModeTraining)
	default:
		wm.logger.Printf("WorkoutManager: Cannot %s in current state", cmdStop)
	}
}

// Restart discards the current run and goes back to the not-started state
func (wm *WorkoutManager) Restart() {
	wm.sendIf(cmdRestart, func(s interval.State) bool { return s.Started() })
}

// Toggle starts, pauses or resumes depending on the current status
func (wm *WorkoutManager) Toggle() {
	switch wm.GetState().Status {
	case WorkoutStatusReady:
		wm.Start()
	case WorkoutStatusRunning:
		wm.Pause()
	case WorkoutStatusPaused:
		wm.Resume()
	case WorkoutStatusFinished:
		wm.logger.Printf("WorkoutManager: Workout finished - press r to restart")
	default:
		wm.logger.Printf("WorkoutManager: No session loaded - pick one on the Training screen (press 1)")
	}
}

// Shutdown stops the workout goroutine. A workout in progress is not recorded.
// Safe to call multiple times - only the first call has effect
func (wm *WorkoutManager) Shutdown() {
	wm.shutdownOnce.Do(func() {
		wm.logger.Printf("WorkoutManager: Shutting down")
		close(wm.doneChan)
		wm.wg.Wait()
		wm.logger.Printf("WorkoutManager: Shutdown complete")
	})
}

func (wm *WorkoutManager) sendIf(cmd workoutCommand, allowed func(interval.State) bool) {
	wm.mu.RLock()
	ok := allowed(wm.timer)
	wm.mu.RUnlock()

	if !ok {
		wm.logger.Printf("WorkoutManager: Cannot %s in current state", cmd)
		return
	}
	wm.send(cmd)
}

func (wm *WorkoutManager) send(cmd workoutCommand) {
	select {
	case wm.cmdChan <- cmd:
	case <-wm.doneChan:
	}
}

// --- Private Methods (no locks - caller must handle locking or only external calls) ---

// rebuildEngine creates the engine for the current session and preset.
// MUST be called with mu held.
func (wm *WorkoutManager) rebuildEngine() {
	count := len(wm.exercises)
	if wm.exerciseOverride > 0 {
		count = wm.exerciseOverride
	}

	engine, err := interval.NewEngine(wm.preset.Config(count))
	wm.finishedAt = time.Time{}
	if err != nil {
		wm.engine = nil
		wm.configErr = err
		wm.timer = interval.State{}
		wm.logger.Printf("WorkoutManager: %v", err)
		return
	}
	wm.engine = engine
	wm.configErr = nil
	wm.timer = engine.NewState()
}

// buildState computes the current workout state.
// MUST be called with mu held (at least read lock).
func (wm *WorkoutManager) buildState() WorkoutState {
	state := WorkoutState{
		Status:    WorkoutStatusIdle,
		Session:   wm.session,
		Exercises: append([]plan.Exercise(nil), wm.exercises...),
		Preset:    wm.preset,
		Timer:     wm.timer,
		Err:       wm.configErr,
	}
	if wm.engine != nil {
		state.Config = wm.engine.Config()
	}
	if !wm.sessionLoaded || wm.engine == nil {
		return state
	}

	switch {
	case wm.timer.Finished:
		state.Status = WorkoutStatusFinished
	case wm.timer.Running && wm.timer.Paused:
		state.Status = WorkoutStatusPaused
	case wm.timer.Running:
		state.Status = WorkoutStatusRunning
	default:
		state.Status = WorkoutStatusReady
	}

	if wm.timer.Started() {
		end := wm.now()
		if !wm.finishedAt.IsZero() {
			end = wm.finishedAt
		}
		state.Elapsed = end.Sub(wm.timer.StartedAt)
	}
	return state
}

// commandResult holds what a command did, for the work done after releasing the lock
type commandResult struct {
	state   WorkoutState
	events  []interval.Event
	record  *history.Record
	armTick bool
	stopped bool // Ticker must stop
	ignored bool
}

// handleCommand applies cmd to the timer under lock
func (wm *WorkoutManager) handleCommand(cmd workoutCommand) commandResult {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if wm.engine == nil {
		return commandResult{ignored: true}
	}

	var result commandResult
	switch cmd {
	case cmdStart:
		timer, err := wm.engine.Start(wm.timer, wm.now())
		if err != nil {
			wm.logger.Printf("WorkoutManager: %v", err)
			return commandResult{ignored: true}
		}
		wm.timer = timer
		wm.finishedAt = time.Time{}
		result.armTick = true

	case cmdPause:
		wm.timer = wm.engine.Pause(wm.timer)
		result.stopped = true

	case cmdResume:
		wm.timer = wm.engine.Resume(wm.timer)
		result.armTick = wm.timer.Running && !wm.timer.Paused

	case cmdSkip:
		wm.timer, result.events = wm.engine.Skip(wm.timer)
		if wm.timer.Running && !wm.timer.Paused {
			result.armTick = true
		}
		result.record = wm.finishIfCompleted()

	case cmdStop:
		timer, recordDue := wm.engine.Stop(wm.timer)
		wm.timer = timer
		result.stopped = true
		if recordDue {
			wm.finishedAt = wm.now()
			record := history.NewRecord(wm.session.ID, wm.timer.StartedAt, wm.finishedAt)
			result.record = &record
		}

	case cmdRestart:
		wm.timer = wm.engine.Reset()
		wm.finishedAt = time.Time{}
		result.stopped = true
	}

	if wm.timer.Finished {
		result.stopped = true
		result.armTick = false
	}
	result.state = wm.buildState()
	return result
}

// finishIfCompleted builds the completion record the first time the timer completes.
// MUST be called with mu held.
func (wm *WorkoutManager) finishIfCompleted() *history.Record {
	if !wm.timer.Completed || !wm.finishedAt.IsZero() {
		return nil
	}
	wm.finishedAt = wm.now()
	record := history.NewRecord(wm.session.ID, wm.timer.StartedAt, wm.finishedAt)
	return &record
}

// handleTick processes a timer tick under lock
func (wm *WorkoutManager) handleTick() commandResult {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if wm.engine == nil || !wm.timer.Running || wm.timer.Paused {
		return commandResult{ignored: true}
	}

	var result commandResult
	wm.timer, result.events = wm.engine.Tick(wm.timer)
	result.record = wm.finishIfCompleted()
	result.stopped = wm.timer.Finished
	result.state = wm.buildState()
	return result
}

// apply performs the side effects of a command or tick outside the lock
func (wm *WorkoutManager) apply(result commandResult) {
	if result.ignored {
		return
	}

	if result.stopped {
		wm.ticker.Stop()
	} else if result.armTick {
		wm.ticker.Reset(tickInterval)
	}

	for _, ev := range result.events {
		switch ev.Kind {
		case interval.EventTick:
			wm.tickEvent.Notify(ev.SecondsRemaining)
		case interval.EventPhaseComplete:
			wm.logger.Printf("WorkoutManager: %s phase done (exercise %d, round %d)", ev.Phase, ev.ExerciseIndex+1, ev.Round)
		case interval.EventWorkoutComplete:
			wm.logger.Printf("WorkoutManager: Workout complete!")
		}
	}

	wm.model.SetWorkoutState(result.state)

	if result.record == nil {
		return
	}
	wm.saveRecord(*result.record)
	if result.state.Timer.Completed {
		wm.completeEvent.Notify(*result.record)
	}
	wm.model.SetMode(UIModeTraining)
}

// saveRecord appends the record and refreshes the history shown in the model.
// Failures are logged by the recorder.
func (wm *WorkoutManager) saveRecord(record history.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	wm.recorder.Record(ctx, record)
	records := wm.recorder.History(ctx)
	wm.model.SetAchievements(AchievementsState{Summary: history.Summarize(records), Records: records})
}

// runWorkoutLoop is the main goroutine that manages workout execution.
func (wm *WorkoutManager) runWorkoutLoop() {
	defer wm.ticker.Stop()

	for {
		select {
		case <-wm.doneChan:
			wm.logger.Printf("WorkoutManager: Goroutine exiting")
			return

		case cmd := <-wm.cmdChan:
			wm.logger.Printf("WorkoutManager: %s", cmd)
			wm.apply(wm.handleCommand(cmd))

		case <-wm.ticker.C():
			wm.apply(wm.handleTick())
		}
	}
}
