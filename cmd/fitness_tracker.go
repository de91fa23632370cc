package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rivo/tview"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/config"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/history"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/trainer"
)

// uiLogWriter forwards each log message to the UI log pane.
// Messages are dropped while the pane is behind.
type uiLogWriter struct {
	ch chan<- string
}

func (w uiLogWriter) Write(p []byte) (int, error) {
	select {
	case w.ch <- string(p):
	default:
	}
	return len(p), nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitness-tracker: %v\n", err)
		return 2
	}

	fileLog := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
	}
	defer fileLog.Close()

	uiLogChan := make(chan string, 256)
	logger := log.New(io.MultiWriter(fileLog, uiLogWriter{ch: uiLogChan}), "", log.Ltime)
	if cfg.ConfigFile != "" {
		logger.Printf("Config: %s", cfg.ConfigFile)
	}

	trainingPlan := plan.DefaultPlan()
	if cfg.Plan.File != "" {
		loaded, err := plan.LoadPlan(cfg.Plan.File)
		if err != nil {
			logger.Printf("Plan: %v - using the built-in plan", err)
		} else {
			trainingPlan = loaded
		}
	}
	catalog := plan.DefaultCatalog()

	store, err := history.Open(context.Background(), cfg.History.Backend, cfg.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitness-tracker: open history: %v\n", err)
		return 1
	}
	defer store.Close()
	logger.Printf("History: %s store at %s", cfg.History.Backend, cfg.History.Path)
	recorder := history.NewRecorder(store, logger)

	app := tview.NewApplication()
	model := trainer.NewUIModel(logger, uiLogChan)
	workoutManager := trainer.NewWorkoutManager(trainer.WorkoutManagerArgs{
		Model:     model,
		Recorder:  recorder,
		Presets:   cfg.Timer.Presets(),
		Preset:    cfg.Timer.Preset,
		Exercises: cfg.Timer.Exercises,
		Logger:    logger,
	})
	controller := trainer.NewUIController(trainer.UIControllerArgs{
		Model:          model,
		WorkoutManager: workoutManager,
		Recorder:       recorder,
		Plan:           trainingPlan,
		PlanStart:      cfg.Plan.StartDate,
		Catalog:        catalog,
		StateFile:      cfg.UIStateFile,
		Logger:         logger,
	})
	view := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   trainer.NewCursesUIView(logger, app),
		UIModel:      model,
		UIController: controller,
		Catalog:      catalog,
		Logger:       logger,
	})

	runErr := view.Run()

	view.Shutdown()
	controller.Shutdown()
	model.Shutdown()

	if runErr != nil {
		logger.Printf("UI exited with error: %v", runErr)
		fmt.Fprintf(os.Stderr, "fitness-tracker: %v\n", runErr)
		return 1
	}
	return 0
}
