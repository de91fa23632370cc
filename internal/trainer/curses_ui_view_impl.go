package trainer

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/history"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/interval"
	"github.com/lowaak/smart-trainer/fitness-tracker-app/internal/plan"
)

// Page names for tview.Pages
const (
	pageTraining     = "training"
	pagePlan         = "plan"
	pageWorkout      = "workout"
	pageAchievements = "achievements"
)

const modeKeysHint = "[yellow]1[white] Training  |  [yellow]2[white] Plan  |  [yellow]3[white] Workout  |  [yellow]4[white] Achievements  |  [yellow]Esc[white] Quit"

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	currentMode UIMode

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on left, logs on right

	// Training mode components
	trainingFlex       *tview.Flex
	trainingTabWidgets []*tview.Box
	todayPanel         *tview.TextView
	templateList       *tview.List

	// Plan mode components
	planFlex       *tview.Flex
	planTabWidgets []*tview.Box
	planList       *tview.List

	// Workout mode components
	workoutFlex       *tview.Flex
	workoutTabWidgets []*tview.Box
	timerPanel        *tview.TextView
	exercisesPanel    *tview.TextView

	// Achievements mode components
	achievementsFlex       *tview.Flex
	achievementsTabWidgets []*tview.Box
	summaryPanel           *tview.TextView
	historyTable           *tview.Table
}

func NewCursesUIView(logger *log.Logger, app *tview.Application) *CursesUIViewImpl {
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		currentMode: UIModeTraining,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// No SetChangedFunc with app.Draw() here: it can hang during shutdown
	// while log lines are still arriving. BaseUIView draws after each update.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.pages = tview.NewPages()

	ui.initTrainingMode(controller)
	ui.initPlanMode(controller)
	ui.initWorkoutMode()
	ui.initAchievementsMode()

	ui.pages.AddPage(pageTraining, ui.trainingFlex, true, true)
	ui.pages.AddPage(pagePlan, ui.planFlex, true, false)
	ui.pages.AddPage(pageWorkout, ui.workoutFlex, true, false)
	ui.pages.AddPage(pageAchievements, ui.achievementsFlex, true, false)

	ui.mainFlex = tview.NewFlex().
		AddItem(ui.pages, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)

	ui.setFocusForCurrentMode()
}

func newInstructions(text string) *tview.TextView {
	instructions := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructions.SetText(text + "\n" + modeKeysHint)
	return instructions
}

func newPanel(title string) *tview.TextView {
	panel := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	panel.SetBorder(true).SetTitle(title)
	return panel
}

// initTrainingMode sets up the Training mode UI
func (ui *CursesUIViewImpl) initTrainingMode(controller *UIController) {
	ui.todayPanel = newPanel(" Today ")
	ui.UpdateTraining(TrainingState{})

	ui.templateList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Printf("UI: Template selected: index=%d, name=%s", index, mainText)
			controller.OnTemplateSelected(index)
		})
	ui.templateList.SetBorder(true).SetTitle(" Session Templates ")

	ui.trainingTabWidgets = append(ui.trainingTabWidgets, ui.todayPanel.Box, ui.templateList.Box)

	content := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.todayPanel, 0, 3, true).
		AddItem(ui.templateList, 0, 2, false)

	ui.trainingFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(newInstructions("[yellow]W[white] Start today's workout  |  [yellow]Tab[white] Templates  |  [yellow]Enter[white] Start template"), 2, 0, false).
		AddItem(content, 0, 1, true)
}

// SetTemplateList populates the session templates list
func (ui *CursesUIViewImpl) SetTemplateList(sessions []plan.SessionInfo) {
	ui.templateList.Clear()
	for _, session := range sessions {
		ui.templateList.AddItem(session.Name, fmt.Sprintf("  %s", session.ShortName), 0, nil)
	}
}

// UpdateTraining shows the resolved plan day
func (ui *CursesUIViewImpl) UpdateTraining(state TrainingState) {
	if ui.todayPanel == nil {
		return
	}

	if state.DayNumber == 0 {
		ui.todayPanel.SetText("\n  [gray]Loading plan...[white]")
		return
	}

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "  [gray]%s[white]\n\n", state.Today.Format("Monday, January 2 2006"))
	fmt.Fprintf(&b, "  [yellow]Day %d of %d[white]  %s\n\n", state.DayNumber, plan.CycleDays, formatSession(state.Session))

	switch {
	case state.Session.ID.IsRest():
		b.WriteString("  Rest day. Recover and come back tomorrow.\n")
	case len(state.Exercises) == 0:
		b.WriteString("  [gray]No exercises for this session[white]\n")
	default:
		b.WriteString("  [gray]Exercises:[white]\n")
		for i, exercise := range state.Exercises {
			fmt.Fprintf(&b, "    %d. %s [gray]%s[white]\n", i+1, exercise.Name, exercise.Details)
		}
		b.WriteString("\n  [green]Press W to start this workout[white]\n")
	}

	ui.todayPanel.SetText(b.String())
}

// initPlanMode sets up the Plan mode UI
func (ui *CursesUIViewImpl) initPlanMode(controller *UIController) {
	ui.planList = tview.NewList().
		ShowSecondaryText(false).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Printf("UI: Plan day selected: index=%d", index)
			controller.OnPlanDaySelected(index)
		})
	ui.planList.SetBorder(true).SetTitle(" 28-Day Plan ")

	legend := newPanel(" Sessions ")
	var b strings.Builder
	b.WriteString("\n")
	for _, info := range plan.AllSessions {
		fmt.Fprintf(&b, "  [%s]%-2s[white] %s\n", sessionColor(info.ID), info.ShortName, info.Name)
	}
	legend.SetText(b.String())

	ui.planTabWidgets = append(ui.planTabWidgets, ui.planList.Box)

	content := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.planList, 0, 2, true).
		AddItem(legend, 0, 1, false)

	ui.planFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(newInstructions("[yellow]Enter[white] Train the selected day"), 2, 0, false).
		AddItem(content, 0, 1, true)
}

// UpdatePlan shows the plan projected onto the coming days
func (ui *CursesUIViewImpl) UpdatePlan(state PlanState) {
	if ui.planList == nil {
		return
	}

	current := ui.planList.GetCurrentItem()
	ui.planList.Clear()
	for _, day := range state.Days {
		marker := "  "
		if day.Day == state.TodayNumber {
			marker = "[green]>[white] "
		}
		info := plan.GetSessionInfo(day.Session)
		text := fmt.Sprintf("%s%s  Day %2d  [%s]%-2s[white] %s", marker, day.Date.Format("Mon Jan 02"), day.Day, sessionColor(info.ID), info.ShortName, info.Name)
		ui.planList.AddItem(text, "", 0, nil)
	}
	if current < ui.planList.GetItemCount() {
		ui.planList.SetCurrentItem(current)
	}
}

// initWorkoutMode sets up the Workout mode UI
func (ui *CursesUIViewImpl) initWorkoutMode() {
	ui.timerPanel = newPanel(" Timer ")
	ui.exercisesPanel = newPanel(" Exercises ")
	ui.UpdateWorkoutState(WorkoutState{Status: WorkoutStatusIdle})

	ui.workoutTabWidgets = append(ui.workoutTabWidgets, ui.timerPanel.Box, ui.exercisesPanel.Box)

	content := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.timerPanel, 0, 1, true).
		AddItem(ui.exercisesPanel, 0, 1, false)

	ui.workoutFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(newInstructions("[yellow]Space[white] Start/Pause  |  [yellow]N[white] Skip  |  [yellow]R[white] Restart  |  [yellow]X[white] Stop  |  [yellow]P[white] Preset"), 2, 0, false).
		AddItem(content, 0, 1, true)
}

// UpdateWorkoutState updates the timer display
func (ui *CursesUIViewImpl) UpdateWorkoutState(state WorkoutState) {
	if ui.timerPanel == nil {
		return
	}
	ui.timerPanel.SetText(formatTimer(state))
	ui.exercisesPanel.SetText(formatExercises(state))
}

func formatTimer(state WorkoutState) string {
	var b strings.Builder
	b.WriteString("\n")

	if state.Status == WorkoutStatusIdle {
		b.WriteString("  [gray]No session loaded[white]\n\n")
		b.WriteString("  Pick a session on the Training (press 1) or Plan (press 2) screen.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  [yellow]%s[white]\n", state.Session.Name)
	fmt.Fprintf(&b, "  [gray]%s[white]\n\n", state.Preset.Description)

	if state.Err != nil {
		fmt.Fprintf(&b, "  [red]%v[white]\n", state.Err)
		return b.String()
	}

	timer := state.Timer
	switch state.Status {
	case WorkoutStatusReady:
		b.WriteString("  [green]Ready[white]  [gray](press P to change preset)[white]\n\n")
	case WorkoutStatusPaused:
		b.WriteString("  [yellow]PAUSED[white]\n\n")
	case WorkoutStatusFinished:
		if timer.Completed {
			b.WriteString("  [green]Workout complete![white]\n\n")
		} else {
			b.WriteString("  [gray]Workout stopped[white]\n\n")
		}
	default:
		b.WriteString("\n\n")
	}

	phaseColor := "green"
	if timer.Phase == interval.PhaseRest {
		phaseColor = "blue"
	}
	fmt.Fprintf(&b, "  [%s]%s[white]   [::b]%s[::-]\n\n", phaseColor, timer.Phase, formatSeconds(timer.SecondsRemaining))

	fmt.Fprintf(&b, "  [gray]Exercise:[white] %d/%d", timer.ExerciseIndex+1, state.Config.ExerciseCount)
	if exercise, ok := state.CurrentExercise(); ok {
		fmt.Fprintf(&b, "  %s", exercise.Name)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  [gray]Round:[white]    %d/%d\n", timer.Round, state.Config.RoundsPerExercise)
	fmt.Fprintf(&b, "  [gray]Elapsed:[white]  %s\n", formatDurationMMSS(state.Elapsed))

	b.WriteString("\n  [gray]─────────────────────────[white]\n")
	switch state.Status {
	case WorkoutStatusReady:
		b.WriteString("  [yellow]Space[white] Start  |  [yellow]P[white] Preset\n")
	case WorkoutStatusRunning:
		b.WriteString("  [yellow]Space[white] Pause  |  [yellow]N[white] Skip  |  [yellow]X[white] Stop\n")
	case WorkoutStatusPaused:
		b.WriteString("  [yellow]Space[white] Resume  |  [yellow]N[white] Skip  |  [yellow]X[white] Stop\n")
	case WorkoutStatusFinished:
		b.WriteString("  [yellow]R[white] Restart\n")
	}
	return b.String()
}

func formatExercises(state WorkoutState) string {
	if len(state.Exercises) == 0 {
		return "\n  [gray]No exercises[white]\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, exercise := range state.Exercises {
		switch {
		case state.Timer.Started() && i == state.Timer.ExerciseIndex && !state.Timer.Finished:
			fmt.Fprintf(&b, "  [green]> %s[white]\n", exercise.Name)
		case state.Timer.Started() && (i < state.Timer.ExerciseIndex || state.Timer.Completed):
			fmt.Fprintf(&b, "  [gray]  %s[white]\n", exercise.Name)
		default:
			fmt.Fprintf(&b, "    %s\n", exercise.Name)
		}
		if exercise.Details != "" {
			fmt.Fprintf(&b, "    [gray]%s[white]\n", exercise.Details)
		}
	}
	return b.String()
}

// initAchievementsMode sets up the Achievements mode UI
func (ui *CursesUIViewImpl) initAchievementsMode() {
	ui.summaryPanel = newPanel(" Achievements ")

	ui.historyTable = tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0).
		SetSelectable(true, false)
	ui.historyTable.SetBorder(true).SetTitle(" History ")

	ui.UpdateAchievements(AchievementsState{})

	ui.achievementsTabWidgets = append(ui.achievementsTabWidgets, ui.historyTable.Box)

	ui.achievementsFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(newInstructions("[yellow]Up/Down[white] Scroll history"), 2, 0, false).
		AddItem(ui.summaryPanel, 7, 0, false).
		AddItem(ui.historyTable, 0, 1, true)
}

// UpdateAchievements shows totals and the newest-first history
func (ui *CursesUIViewImpl) UpdateAchievements(state AchievementsState) {
	if ui.summaryPanel == nil {
		return
	}

	ui.summaryPanel.SetText(fmt.Sprintf("\n  [gray]Workouts:[white]       [yellow]%d[white]\n  [gray]Total minutes:[white]  [yellow]%d[white]\n  [gray]Personal bests:[white] [yellow]%d[white]\n",
		state.Summary.TotalWorkouts, state.Summary.TotalMinutes, state.Summary.PersonalBests))

	ui.historyTable.Clear()
	for col, header := range []string{"Date", "Session", "Minutes", "PB"} {
		ui.historyTable.SetCell(0, col, tview.NewTableCell(header).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
	if len(state.Records) == 0 {
		ui.historyTable.SetCell(1, 0, tview.NewTableCell("No workouts yet").SetTextColor(tcell.ColorGray))
		return
	}
	for i, record := range state.Records {
		row := i + 1
		ui.historyTable.SetCell(row, 0, tview.NewTableCell(record.Date.Local().Format("2006-01-02 15:04")))
		ui.historyTable.SetCell(row, 1, tview.NewTableCell(plan.GetSessionInfo(record.Session).Name).SetExpansion(1))
		ui.historyTable.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%d", record.DurationMinutes)).SetAlign(tview.AlignRight))
		ui.historyTable.SetCell(row, 3, tview.NewTableCell(formatPersonalBest(record)))
	}
}

func formatPersonalBest(record history.Record) string {
	if record.PersonalBest {
		return "*"
	}
	return ""
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModeTraining:
		ui.pages.SwitchToPage(pageTraining)
	case UIModePlan:
		ui.pages.SwitchToPage(pagePlan)
	case UIModeWorkout:
		ui.pages.SwitchToPage(pageWorkout)
	case UIModeAchievements:
		ui.pages.SwitchToPage(pageAchievements)
	}

	ui.setFocusForCurrentMode()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// setFocusForCurrentMode sets focus to the first widget in the current mode
func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	if widgets := ui.getTabWidgetsForCurrentMode(); len(widgets) > 0 {
		ui.app.SetFocus(widgets[0])
	}
}

// getTabWidgetsForCurrentMode returns the tab widgets for the current mode
func (ui *CursesUIViewImpl) getTabWidgetsForCurrentMode() []*tview.Box {
	switch ui.currentMode {
	case UIModeTraining:
		return ui.trainingTabWidgets
	case UIModePlan:
		return ui.planTabWidgets
	case UIModeWorkout:
		return ui.workoutTabWidgets
	case UIModeAchievements:
		return ui.achievementsTabWidgets
	default:
		return nil
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune {
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				// Delegate to controller - it will update the model, which will notify us
				controller.OnModeChange(mode)
				return nil
			}
		}

		if event.Key() == tcell.KeyTab {
			widgets := ui.getTabWidgetsForCurrentMode()
			for i, widget := range widgets {
				if widget.HasFocus() {
					ui.app.SetFocus(widgets[(i+1)%len(widgets)])
					break
				}
			}
			return nil
		}

		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		if event.Key() != tcell.KeyRune {
			return event
		}

		switch ui.currentMode {
		case UIModeTraining:
			if event.Rune() == 'w' {
				controller.BeginTodaysWorkout()
				return nil
			}
		case UIModeWorkout:
			switch event.Rune() {
			case ' ':
				controller.ToggleWorkout()
				return nil
			case 'n':
				controller.SkipPhase()
				return nil
			case 'r':
				controller.RestartWorkout()
				return nil
			case 'x':
				controller.StopWorkout()
				return nil
			case 'p':
				controller.CyclePreset()
				return nil
			}
		}

		return event
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// QueueUpdateDraw changes widgets from the tview event loop
func (ui *CursesUIViewImpl) QueueUpdateDraw(f func()) {
	ui.app.QueueUpdateDraw(f)
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}

func formatSession(info plan.SessionInfo) string {
	return fmt.Sprintf("[%s]%s[white]", sessionColor(info.ID), info.Name)
}

func sessionColor(id plan.SessionID) string {
	switch id {
	case plan.SessionStrength:
		return "red"
	case plan.SessionCardio:
		return "orange"
	case plan.SessionTechnique:
		return "aqua"
	case plan.SessionRest:
		return "gray"
	default:
		return "white"
	}
}

// formatSeconds formats a second count as MM:SS
func formatSeconds(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// formatDurationMMSS formats a duration as MM:SS
func formatDurationMMSS(d time.Duration) string {
	return formatSeconds(int(d.Seconds()))
}
