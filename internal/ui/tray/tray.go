package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"dharmatimer/internal/core/model"
	"dharmatimer/internal/core/timekeeper"
	"dharmatimer/internal/ui/timerview"
	"dharmatimer/resources"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnTogglePause func()
	OnEnd         func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	statusItem *fyne.MenuItem
	showItem   *fyne.MenuItem
	pauseItem  *fyne.MenuItem
	endItem    *fyne.MenuItem
	prefsItem  *fyne.MenuItem
	quitItem   *fyne.MenuItem
	callbacks  Callbacks
	custom     []model.CustomPracticeType
	icon       string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Ready", nil)
	manager.statusItem.Disabled = true
	manager.showItem = fyne.NewMenuItem("Show timer", func() {
		if manager.callbacks.OnShow != nil {
			manager.callbacks.OnShow()
		}
	})
	manager.pauseItem = fyne.NewMenuItem("Pause", func() {
		if manager.callbacks.OnTogglePause != nil {
			manager.callbacks.OnTogglePause()
		}
	})
	manager.pauseItem.Disabled = true
	manager.endItem = fyne.NewMenuItem("End session", func() {
		if manager.callbacks.OnEnd != nil {
			manager.callbacks.OnEnd()
		}
	})
	manager.endItem.Disabled = true
	manager.prefsItem = fyne.NewMenuItem("Preferences", func() {
		if manager.callbacks.OnPreferences != nil {
			manager.callbacks.OnPreferences()
		}
	})
	manager.quitItem = fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	manager.quitItem.IsQuit = true

	manager.setIcon(resources.LogoApp)
	manager.refreshMenu()
	return manager
}

// SetCustomPracticeTypes updates labels used in the status line.
func (manager *Manager) SetCustomPracticeTypes(custom []model.CustomPracticeType) {
	manager.custom = custom
}

// Update mirrors the timer status into the menu and icon.
func (manager *Manager) Update(status timekeeper.Status) {
	manager.statusItem.Label = StatusLine(status, manager.custom)

	active := status.State == timekeeper.StateRunning || status.State == timekeeper.StatePaused
	manager.pauseItem.Disabled = !active
	manager.endItem.Disabled = !active
	if status.State == timekeeper.StatePaused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}

	switch status.State {
	case timekeeper.StateRunning, timekeeper.StatePreparing:
		manager.setIcon(resources.LogoActive)
	case timekeeper.StatePaused:
		manager.setIcon(resources.LogoPaused)
	default:
		manager.setIcon(resources.LogoApp)
	}
	manager.refreshMenu()
}

// StatusLine summarises the timer for the tray menu.
func StatusLine(status timekeeper.Status, custom []model.CustomPracticeType) string {
	practice := model.PracticeShortName(status.PracticeType, custom)
	switch status.State {
	case timekeeper.StatePreparing:
		return fmt.Sprintf("Starting in %d", status.Countdown)
	case timekeeper.StateRunning:
		return fmt.Sprintf("%s: %s left", practice, timerview.FormatRemaining(status.Remaining))
	case timekeeper.StatePaused:
		return fmt.Sprintf("%s: paused at %s", practice, timerview.FormatRemaining(status.Remaining))
	case timekeeper.StateCompleted:
		return "Session complete"
	default:
		return "Ready"
	}
}

func (manager *Manager) setIcon(name string) {
	if manager.icon == name || manager.app == nil {
		return
	}
	icon, err := resources.Logo(name)
	if err != nil {
		return
	}
	manager.icon = name
	manager.app.SetSystemTrayIcon(icon)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(fyne.NewMenu("Dharma Timer",
			manager.statusItem,
			fyne.NewMenuItemSeparator(),
			manager.showItem,
			manager.pauseItem,
			manager.endItem,
			fyne.NewMenuItemSeparator(),
			manager.prefsItem,
			manager.quitItem,
		))
	}
}
