package timerview

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dharmatimer/internal/core/model"
	"dharmatimer/internal/core/timekeeper"
	"dharmatimer/internal/ui/animation"
)

// Controller is the timer surface the window drives.
type Controller interface {
	Status() timekeeper.Status
	SelectDuration(durationSeconds int) error
	SetCustomMinutes(input string) error
	SetPracticeType(practiceType string) error
	SetIntervalBell(periodSeconds int) error
	SetNotes(notes string)
	Start() error
	CancelPreparation() error
	Pause() error
	Resume() error
	End() error
	Discard() error
	Save(ctx context.Context) error
}

const saveTimeout = 15 * time.Second

var (
	accentColor = color.NRGBA{R: 233, G: 162, B: 59, A: 255}
	pulseColor  = color.NRGBA{R: 233, G: 162, B: 59, A: 90}
	textColor   = color.NRGBA{R: 245, G: 240, B: 230, A: 255}
)

// Window is the main timer window. It renders whichever view matches the
// timer state and forwards user actions to the controller.
type Window struct {
	window     fyne.Window
	controller Controller
	engine     *animation.Engine
	custom     []model.CustomPracticeType
	logger     *slog.Logger

	setupView     fyne.CanvasObject
	prepView      fyne.CanvasObject
	sessionView   fyne.CanvasObject
	completedView fyne.CanvasObject

	presets        *widget.RadioGroup
	customEntry    *widget.Entry
	setupError     *widget.Label
	practiceSelect *widget.Select
	practiceHint   *widget.Label
	practiceKeys   []string
	intervalSelect *widget.Select

	countdownText *canvas.Text

	practiceText  *canvas.Text
	remainingText *canvas.Text
	phaseLabel    *widget.Label
	progress      *widget.ProgressBar
	pulse         *pulseLayout
	pulseBox      *fyne.Container
	pauseButton   *widget.Button

	summaryLabel  *widget.Label
	notesEntry    *widget.Entry
	saveButton    *widget.Button
	discardButton *widget.Button

	lastState timekeeper.State
}

// New builds the timer window. Closing it hides it; the tray keeps the
// session reachable.
func New(app fyne.App, controller Controller, custom []model.CustomPracticeType, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	window := app.NewWindow("Dharma Timer")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	view := &Window{
		window:     window,
		controller: controller,
		custom:     custom,
		logger:     logger.With("component", "timerview"),
	}
	view.pulse = &pulseLayout{scale: animation.DefaultConfig().Breath.MinScale}
	view.engine = animation.New(animation.DefaultConfig(), view.setPulseScale)
	view.engine.SetOnPhaseChange(func(phase animation.Phase) {
		fyne.Do(func() {
			view.phaseLabel.SetText(phase.String())
		})
	})

	view.setupView = view.buildSetup()
	view.prepView = view.buildPrep()
	view.sessionView = view.buildSession()
	view.completedView = view.buildCompleted()

	window.SetContent(container.NewPadded(container.NewStack(
		view.setupView,
		view.prepView,
		view.sessionView,
		view.completedView,
	)))
	window.Resize(fyne.NewSize(420, 520))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	view.render(controller.Status())
	return view
}

// Show displays the window.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// Window exposes the underlying fyne window for dialogs.
func (view *Window) Window() fyne.Window {
	return view.window
}

// SetCustomPracticeTypes refreshes the practice choices.
func (view *Window) SetCustomPracticeTypes(custom []model.CustomPracticeType) {
	view.custom = custom
	view.refreshPracticeOptions(view.controller.Status().PracticeType)
}

// HandleEvent re-renders from a timekeeper event. Safe from any goroutine.
func (view *Window) HandleEvent(event timekeeper.Event) {
	fyne.Do(func() {
		if event.Type == timekeeper.EventWakeLockError {
			view.phaseLabel.SetText("Screen may dim: " + event.Message)
		}
		view.render(view.controller.Status())
	})
}

// Close stops the pulse animation.
func (view *Window) Close() {
	view.engine.Stop()
}

func (view *Window) buildSetup() fyne.CanvasObject {
	labels := make([]string, 0, len(model.DurationPresets))
	for _, preset := range model.DurationPresets {
		labels = append(labels, preset.Label)
	}
	view.presets = widget.NewRadioGroup(labels, func(label string) {
		for _, preset := range model.DurationPresets {
			if preset.Label == label {
				view.reportSetup(view.controller.SelectDuration(preset.Seconds))
				view.customEntry.SetText("")
			}
		}
	})
	view.presets.Horizontal = true

	view.customEntry = widget.NewEntry()
	view.customEntry.SetPlaceHolder(fmt.Sprintf("Custom minutes (%d-%d)", model.MinCustomMinutes, model.MaxCustomMinutes))
	applyCustom := func() {
		if err := view.controller.SetCustomMinutes(view.customEntry.Text); err != nil {
			view.reportSetup(err)
			return
		}
		view.presets.SetSelected("")
		view.reportSetup(nil)
	}
	view.customEntry.OnSubmitted = func(string) { applyCustom() }
	customRow := container.NewBorder(nil, nil, nil, widget.NewButton("Set", applyCustom), view.customEntry)

	view.setupError = widget.NewLabel("")
	view.setupError.Importance = widget.DangerImportance

	view.practiceHint = widget.NewLabel("")
	view.practiceHint.Wrapping = fyne.TextWrapWord
	view.practiceSelect = widget.NewSelect(nil, func(label string) {
		for index, option := range view.practiceSelect.Options {
			if option == label && index < len(view.practiceKeys) {
				key := view.practiceKeys[index]
				view.reportSetup(view.controller.SetPracticeType(key))
				view.practiceHint.SetText(model.PracticeDescription(key, view.custom))
			}
		}
	})

	intervalOptions := make([]string, 0, len(model.IntervalBellMinutes))
	for _, minutes := range model.IntervalBellMinutes {
		intervalOptions = append(intervalOptions, IntervalLabel(minutes))
	}
	view.intervalSelect = widget.NewSelect(intervalOptions, func(label string) {
		view.reportSetup(view.controller.SetIntervalBell(IntervalFromLabel(label) * 60))
	})

	start := widget.NewButtonWithIcon("Begin", theme.MediaPlayIcon(), func() {
		view.reportSetup(view.controller.Start())
	})
	start.Importance = widget.HighImportance

	return container.NewVBox(
		heading("Duration"),
		view.presets,
		customRow,
		view.setupError,
		heading("Practice"),
		view.practiceSelect,
		view.practiceHint,
		heading("Interval bell"),
		view.intervalSelect,
		layout.NewSpacer(),
		start,
	)
}

func (view *Window) buildPrep() fyne.CanvasObject {
	view.countdownText = canvas.NewText("5", accentColor)
	view.countdownText.TextSize = 72
	view.countdownText.TextStyle = fyne.TextStyle{Bold: true}
	view.countdownText.Alignment = fyne.TextAlignCenter

	title := canvas.NewText("Settle into your posture", textColor)
	title.Alignment = fyne.TextAlignCenter
	title.TextSize = 18

	cancel := widget.NewButton("Cancel", func() {
		view.reportAction(view.controller.CancelPreparation())
	})

	return container.NewBorder(nil, cancel, nil, nil,
		container.NewCenter(container.NewVBox(title, view.countdownText)))
}

func (view *Window) buildSession() fyne.CanvasObject {
	view.practiceText = canvas.NewText("", textColor)
	view.practiceText.Alignment = fyne.TextAlignCenter
	view.practiceText.TextSize = 18

	view.remainingText = canvas.NewText("--:--", accentColor)
	view.remainingText.Alignment = fyne.TextAlignCenter
	view.remainingText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	view.remainingText.TextSize = 48

	circle := canvas.NewCircle(pulseColor)
	circle.StrokeColor = accentColor
	circle.StrokeWidth = 2
	view.pulseBox = container.New(view.pulse, circle)

	view.phaseLabel = widget.NewLabel("")
	view.phaseLabel.Alignment = fyne.TextAlignCenter
	view.progress = widget.NewProgressBar()
	view.progress.TextFormatter = func() string { return "" }

	view.pauseButton = widget.NewButtonWithIcon("Pause", theme.MediaPauseIcon(), func() {
		if view.controller.Status().State == timekeeper.StatePaused {
			view.reportAction(view.controller.Resume())
			return
		}
		view.reportAction(view.controller.Pause())
	})
	end := widget.NewButtonWithIcon("End session", theme.MediaStopIcon(), func() {
		dialog.ShowConfirm("End session", "End the session now and keep the time practiced so far?", func(confirmed bool) {
			if confirmed {
				view.reportAction(view.controller.End())
			}
		}, view.window)
	})

	header := container.NewVBox(view.practiceText, view.phaseLabel)
	footer := container.NewVBox(view.remainingText, view.progress, container.NewGridWithColumns(2, view.pauseButton, end))
	return container.NewBorder(header, footer, nil, nil, view.pulseBox)
}

func (view *Window) buildCompleted() fyne.CanvasObject {
	title := canvas.NewText("Session complete", accentColor)
	title.Alignment = fyne.TextAlignCenter
	title.TextSize = 24
	title.TextStyle = fyne.TextStyle{Bold: true}

	view.summaryLabel = widget.NewLabel("")
	view.summaryLabel.Alignment = fyne.TextAlignCenter

	view.notesEntry = widget.NewMultiLineEntry()
	view.notesEntry.SetPlaceHolder("Notes on this session (saved to your journal)")
	view.notesEntry.Wrapping = fyne.TextWrapWord
	view.notesEntry.OnChanged = func(text string) {
		view.controller.SetNotes(text)
	}

	view.saveButton = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), view.save)
	view.saveButton.Importance = widget.HighImportance
	view.discardButton = widget.NewButtonWithIcon("Discard", theme.DeleteIcon(), func() {
		view.reportAction(view.controller.Discard())
	})

	return container.NewBorder(
		container.NewVBox(title, view.summaryLabel),
		container.NewGridWithColumns(2, view.discardButton, view.saveButton),
		nil, nil,
		view.notesEntry,
	)
}

func (view *Window) save() {
	view.controller.SetNotes(view.notesEntry.Text)
	view.saveButton.Disable()
	view.discardButton.Disable()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		err := view.controller.Save(ctx)
		fyne.Do(func() {
			view.saveButton.Enable()
			view.discardButton.Enable()
			if err != nil {
				dialog.ShowError(fmt.Errorf("could not save session: %w", err), view.window)
			}
			view.render(view.controller.Status())
		})
	}()
}

func (view *Window) render(status timekeeper.Status) {
	entering := status.State != view.lastState
	view.lastState = status.State

	view.setupView.Hide()
	view.prepView.Hide()
	view.sessionView.Hide()
	view.completedView.Hide()

	switch status.State {
	case timekeeper.StateSetup:
		if entering {
			view.engine.Stop()
			view.syncSetup(status)
		}
		view.setupView.Show()
	case timekeeper.StatePreparing:
		view.countdownText.Text = strconv.Itoa(status.Countdown)
		view.countdownText.Refresh()
		view.prepView.Show()
	case timekeeper.StateRunning, timekeeper.StatePaused:
		view.renderSession(status, entering)
		view.sessionView.Show()
	case timekeeper.StateCompleted:
		if entering {
			view.engine.Stop()
			view.notesEntry.SetText(status.Notes)
		}
		view.summaryLabel.SetText(PracticedSummary(status.Practiced, status.PracticeType, view.custom))
		if status.Saving {
			view.saveButton.Disable()
			view.discardButton.Disable()
		}
		view.completedView.Show()
	}
}

func (view *Window) renderSession(status timekeeper.Status, entering bool) {
	view.practiceText.Text = model.PracticeLabel(status.PracticeType, view.custom)
	view.practiceText.Refresh()
	view.remainingText.Text = FormatRemaining(status.Remaining)
	view.remainingText.Refresh()
	view.progress.SetValue(status.Progress)

	if status.State == timekeeper.StatePaused {
		view.pauseButton.SetText("Resume")
		view.pauseButton.SetIcon(theme.MediaPlayIcon())
		if entering {
			view.engine.Rest()
			view.phaseLabel.SetText("Paused")
		}
		return
	}
	view.pauseButton.SetText("Pause")
	view.pauseButton.SetIcon(theme.MediaPauseIcon())
	if entering {
		view.engine.StartBreathing(context.Background())
	}
}

func (view *Window) syncSetup(status timekeeper.Status) {
	view.setupError.SetText("")
	selected := int(status.Selected / time.Second)
	matched := false
	for _, preset := range model.DurationPresets {
		if preset.Seconds == selected {
			view.presets.SetSelected(preset.Label)
			matched = true
		}
	}
	if !matched {
		view.presets.SetSelected("")
		view.customEntry.SetText(strconv.Itoa(selected / 60))
	}
	view.refreshPracticeOptions(status.PracticeType)
	view.intervalSelect.SetSelected(IntervalLabel(int(status.IntervalBell / time.Minute)))
}

func (view *Window) refreshPracticeOptions(current string) {
	view.practiceKeys = model.PracticeTypes(view.custom)
	options := make([]string, 0, len(view.practiceKeys))
	selected := ""
	for _, key := range view.practiceKeys {
		label := model.PracticeLabel(key, view.custom)
		options = append(options, label)
		if key == current {
			selected = label
		}
	}
	view.practiceSelect.Options = options
	if selected != "" {
		view.practiceSelect.SetSelected(selected)
	}
	view.practiceSelect.Refresh()
	view.practiceHint.SetText(model.PracticeDescription(current, view.custom))
}

func (view *Window) setPulseScale(scale float64) {
	fyne.Do(func() {
		view.pulse.scale = scale
		view.pulseBox.Refresh()
	})
}

func (view *Window) reportSetup(err error) {
	if err != nil {
		view.setupError.SetText(err.Error())
		return
	}
	view.setupError.SetText("")
}

func (view *Window) reportAction(err error) {
	if err != nil {
		view.logger.Warn("timer action rejected", "error", err)
	}
	view.render(view.controller.Status())
}

func heading(text string) *widget.Label {
	return widget.NewLabelWithStyle(text, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
}

// pulseLayout centres a single object scaled to a fraction of the
// available square.
type pulseLayout struct {
	scale float64
}

func (pulse *pulseLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) == 0 {
		return
	}
	side := size.Width
	if size.Height < side {
		side = size.Height
	}
	side *= float32(pulse.scale) * 0.9
	if side < 0 {
		side = 0
	}
	objects[0].Resize(fyne.NewSize(side, side))
	objects[0].Move(fyne.NewPos((size.Width-side)/2, (size.Height-side)/2))
}

func (pulse *pulseLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(160, 160)
}
