package preferences

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dharmatimer/internal/core/model"
	"dharmatimer/internal/ui/timerview"
)

// Window handles the preferences UI.
type Window struct {
	window    fyne.Window
	settings  model.TimerSettings
	bells     []BellChoice
	onSave    func(model.TimerSettings) error
	onPreview func(bellID string)

	duration    *widget.Entry
	practice    *widget.Select
	practiceIDs []string
	bell        *widget.Select
	interval    *widget.Select
	customTypes *widget.Entry
	errorLabel  *widget.Label
}

// New creates a preferences window. onSave may reject the settings, in
// which case the window stays open.
func New(app fyne.App, settings model.TimerSettings, bells []BellChoice, onSave func(model.TimerSettings) error, onPreview func(string)) *Window {
	window := app.NewWindow("Dharma Timer Settings")

	prefs := &Window{
		window:    window,
		bells:     bells,
		onSave:    onSave,
		onPreview: onPreview,
	}

	prefs.duration = widget.NewEntry()
	prefs.practice = widget.NewSelect(nil, nil)

	bellNames := make([]string, 0, len(bells))
	for _, bell := range bells {
		bellNames = append(bellNames, bell.Name)
	}
	prefs.bell = widget.NewSelect(bellNames, nil)
	preview := widget.NewButtonWithIcon("", theme.VolumeUpIcon(), func() {
		if prefs.onPreview != nil {
			prefs.onPreview(prefs.selectedBell())
		}
	})

	intervals := make([]string, 0, len(model.IntervalBellMinutes))
	for _, minutes := range model.IntervalBellMinutes {
		intervals = append(intervals, timerview.IntervalLabel(minutes))
	}
	prefs.interval = widget.NewSelect(intervals, nil)

	prefs.customTypes = widget.NewMultiLineEntry()
	prefs.customTypes.SetPlaceHolder("One per line, e.g. Tonglen: sending and taking")
	prefs.customTypes.SetMinRowsVisible(4)
	prefs.customTypes.OnChanged = func(string) {
		prefs.refreshPractices(prefs.selectedPractice())
	}

	prefs.errorLabel = widget.NewLabel("")
	prefs.errorLabel.Importance = widget.DangerImportance

	form := container.NewVBox(
		widget.NewLabelWithStyle("Defaults", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Session length"), widget.NewLabel("min"), prefs.duration),
		container.NewBorder(nil, nil, widget.NewLabel("Practice"), nil, prefs.practice),
		container.NewBorder(nil, nil, widget.NewLabel("Bell"), preview, prefs.bell),
		container.NewBorder(nil, nil, widget.NewLabel("Interval bell"), nil, prefs.interval),
		widget.NewLabelWithStyle("Custom practices", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.customTypes,
		prefs.errorLabel,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	saveButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(460, 480))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings model.TimerSettings) {
	prefs.settings = settings
	form := FormFromSettings(settings)

	prefs.duration.SetText(form.DurationMinutes)
	prefs.customTypes.SetText(form.CustomTypes)
	prefs.refreshPractices(form.PracticeType)
	prefs.interval.SetSelected(timerview.IntervalLabel(form.IntervalBellMinutes))
	for _, bell := range prefs.bells {
		if bell.ID == form.BellSoundID {
			prefs.bell.SetSelected(bell.Name)
		}
	}
	prefs.errorLabel.SetText("")
}

func (prefs *Window) form() Form {
	return Form{
		DurationMinutes:     prefs.duration.Text,
		PracticeType:        prefs.selectedPractice(),
		BellSoundID:         prefs.selectedBell(),
		IntervalBellMinutes: timerview.IntervalFromLabel(prefs.interval.Selected),
		CustomTypes:         prefs.customTypes.Text,
	}
}

func (prefs *Window) handleSave() {
	settings, err := prefs.form().Settings()
	if err != nil {
		prefs.errorLabel.SetText(err.Error())
		return
	}
	if prefs.onSave != nil {
		if err := prefs.onSave(settings); err != nil {
			dialog.ShowError(err, prefs.window)
			return
		}
	}
	prefs.settings = settings
	prefs.errorLabel.SetText("")
	prefs.window.Hide()
}

// refreshPractices rebuilds the practice options from the custom list as
// currently typed, keeping current selected when it still exists.
func (prefs *Window) refreshPractices(current string) {
	custom, err := ParseCustomTypes(prefs.customTypes.Text)
	if err != nil {
		custom = prefs.settings.CustomPracticeTypes
	}
	prefs.practiceIDs = model.PracticeTypes(custom)
	options := make([]string, 0, len(prefs.practiceIDs))
	selected := ""
	for _, key := range prefs.practiceIDs {
		label := model.PracticeLabel(key, custom)
		options = append(options, label)
		if key == current {
			selected = label
		}
	}
	prefs.practice.Options = options
	prefs.practice.Selected = selected
	prefs.practice.Refresh()
}

func (prefs *Window) selectedPractice() string {
	for index, option := range prefs.practice.Options {
		if option == prefs.practice.Selected && index < len(prefs.practiceIDs) {
			return prefs.practiceIDs[index]
		}
	}
	return ""
}

func (prefs *Window) selectedBell() string {
	for _, bell := range prefs.bells {
		if bell.Name == prefs.bell.Selected {
			return bell.ID
		}
	}
	return model.DefaultBellSoundID
}
