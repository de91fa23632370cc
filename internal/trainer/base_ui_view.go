package trainer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/go_func_utils"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
)

// BaseUIView contains the base logic shared by all UI implementations
type BaseUIView struct {
	uiViewImpl   UIViewImpl
	uiModel      *UIModel
	uiController *UIController
	context      context.Context
	cancelFunc   context.CancelFunc
	waitGroup    sync.WaitGroup
	logger       *log.Logger
}

// NewBaseUIViewArg holds the arguments for creating a new BaseUIView
type NewBaseUIViewArg struct {
	UIViewImpl   UIViewImpl
	UIModel      *UIModel
	UIController *UIController
	Catalog      *plan.Catalog
	Logger       *log.Logger
}

// NewBaseUIView creates a new BaseUIView with the given implementation
func NewBaseUIView(args NewBaseUIViewArg) *BaseUIView {
	if args.Logger == nil {
		panic("BaseUIView: logger cannot be nil")
	}
	if args.UIViewImpl == nil {
		panic("BaseUIView: UIViewImpl cannot be nil")
	}
	if args.UIModel == nil {
		panic("BaseUIView: UIModel cannot be nil")
	}
	if args.UIController == nil {
		panic("BaseUIView: UIController cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseUIView{
		uiViewImpl:   args.UIViewImpl,
		uiModel:      args.UIModel,
		uiController: args.UIController,
		context:      ctx,
		cancelFunc:   cancel,
		logger:       args.Logger,
	}

	args.UIViewImpl.Initialize(args.UIController)
	args.UIViewImpl.SetupKeyboardHandlers(args.UIController)
	args.UIViewImpl.SetMode(args.UIModel.GetUIState().Mode)

	if args.Catalog != nil {
		templates := make([]plan.SessionInfo, 0)
		for _, id := range args.Catalog.Templates() {
			templates = append(templates, plan.GetSessionInfo(id))
		}
		args.UIViewImpl.SetTemplateList(templates)
	}

	go_func_utils.SafeGoWG(base.logger, &base.waitGroup, "BaseUIView log resize", base.monitorLogResize)
	base.updateLogDisplay()

	base.setupEventListeners()

	return base
}

// listenAndDraw redraws on every value of one model event. Values can be
// dropped when the channel is full, so update always gets the model's current value.
func listenAndDraw[T any](base *BaseUIView, name string, listen func(chan<- T) func(), current func() T, update func(T)) {
	ch := make(chan T, 1)
	unregister := listen(ch)
	go_func_utils.SafeGoWG(base.logger, &base.waitGroup, "BaseUIView "+name, func() {
		defer unregister()
		for {
			select {
			case <-base.context.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				base.onUIThread(func() { update(current()) })
			}
		}
	})
}

// onUIThread runs f on the UI event loop and waits for it, or for shutdown.
// A stopped event loop never runs f, so the queued call is left behind then.
func (base *BaseUIView) onUIThread(f func()) {
	done := make(chan struct{})
	go_func_utils.SafeGo(base.logger, "BaseUIView update", func() {
		base.uiViewImpl.QueueUpdateDraw(func() {
			f()
			close(done)
		})
	})
	select {
	case <-done:
	case <-base.context.Done():
	}
}

func (base *BaseUIView) setupEventListeners() {
	view := base.uiViewImpl
	model := base.uiModel

	// Only the tail that fits is shown, so the log is re-read rather than appended
	listenAndDraw(base, "log", model.ListenToLog, func() string { return "" }, func(string) {
		base.updateLogDisplay()
	})
	listenAndDraw(base, "ui state", model.ListenToUIState, model.GetUIState, func(state UIState) {
		view.SetMode(state.Mode)
	})
	listenAndDraw(base, "training", model.ListenToTrainingState, model.GetTrainingState, view.UpdateTraining)
	listenAndDraw(base, "plan", model.ListenToPlanState, model.GetPlanState, view.UpdatePlan)
	listenAndDraw(base, "workout", model.ListenToWorkoutState, model.GetWorkoutState, view.UpdateWorkoutState)
	listenAndDraw(base, "achievements", model.ListenToAchievements, model.GetAchievements, view.UpdateAchievements)

	// Listen to close application event from model
	closeChan := make(chan struct{}, 1)
	closeUnregister := base.uiModel.ListenToCloseApplication(closeChan)
	go_func_utils.SafeGoWG(base.logger, &base.waitGroup, "BaseUIView close", func() {
		defer closeUnregister()
		select {
		case <-base.context.Done():
			return
		case _, ok := <-closeChan:
			if !ok {
				return
			}
			base.uiViewImpl.Stop()
		}
	})
}

func (base *BaseUIView) updateLogDisplay() {
	height := base.uiViewImpl.GetLogViewHeight()
	if height <= 0 {
		return
	}

	logLines := base.uiModel.GetLogTail(height)

	base.uiViewImpl.ClearLogView()
	for _, line := range logLines {
		if err := base.uiViewImpl.WriteLogLine(line); err != nil {
			base.logger.Printf("BaseUIView: Error writing to log view: %v", err)
		}
	}
}

func (base *BaseUIView) monitorLogResize() {
	var lastHeight int
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-base.context.Done():
			return
		case <-ticker.C:
			height := base.uiViewImpl.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.onUIThread(base.updateLogDisplay)
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseUIView) Shutdown() {
	base.logger.Println("BaseUIView: Shutting down")
	base.cancelFunc()
	base.waitGroup.Wait()
	base.logger.Println("BaseUIView: Shutdown complete")
}

// Run starts the UI and blocks until it exits
func (base *BaseUIView) Run() error {
	return base.uiViewImpl.Run()
}
