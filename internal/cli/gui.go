package cli

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"

	"dharmatimer/internal/audio"
	"dharmatimer/internal/core/model"
	"dharmatimer/internal/core/timekeeper"
	"dharmatimer/internal/platform"
	"dharmatimer/internal/ui/preferences"
	"dharmatimer/internal/ui/timerview"
	"dharmatimer/internal/ui/tray"
	"dharmatimer/resources"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop timer (default)",
	RunE:  runGUI,
}

func runGUI(cmd *cobra.Command, args []string) error {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			fmt.Println("Dharma Timer is already running; its window has been raised.")
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	app, err := openEnv()
	if err != nil {
		return err
	}
	defer app.Close()

	settings := app.loadSettings()
	engine, err := app.newAudio(settings)
	if err != nil {
		app.logger.Warn("bells unavailable", "error", err)
	}
	keeper := app.newKeeper(settings, cuePlayer(engine), app.newWakeLock())
	defer keeper.Stop()

	fyneApp := fyneapp.NewWithID("com.dharmatimer.app")
	fyneApp.SetIcon(resources.MustLogo(resources.LogoApp))

	timerWindow := timerview.New(fyneApp, keeper, settings.CustomPracticeTypes, app.logger)
	defer timerWindow.Close()

	bells := []preferences.BellChoice{}
	if engine != nil {
		bells = bellChoices()
	}
	prefsWindow := preferences.New(fyneApp, settings, bells, func(updated model.TimerSettings) error {
		if err := app.settings.SaveTimerSettings(updated); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		settings = updated
		app.sessions.SetCustomPracticeTypes(updated.CustomPracticeTypes)
		if engine != nil {
			engine.SetBellSound(updated.BellSoundID)
		}
		timerWindow.SetCustomPracticeTypes(updated.CustomPracticeTypes)
		keeper.ApplySettings(updated)
		return nil
	}, func(bellID string) {
		if engine == nil {
			return
		}
		go func() {
			if err := engine.Preview(bellID); err != nil {
				app.logger.Warn("bell preview failed", "bell", bellID, "error", err)
			}
		}()
	})

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShow:        timerWindow.Show,
			OnPreferences: prefsWindow.Show,
			OnTogglePause: func() {
				if keeper.Status().State == timekeeper.StatePaused {
					_ = keeper.Resume()
					return
				}
				_ = keeper.Pause()
			},
			OnEnd: func() {
				_ = keeper.End()
				timerWindow.Show()
			},
			OnQuit: fyneApp.Quit,
		})
		trayManager.SetCustomPracticeTypes(settings.CustomPracticeTypes)
	} else {
		app.logger.Info("system tray unsupported on this platform")
	}

	guard.OnShow(func() {
		fyne.Do(timerWindow.Show)
	})

	// Returning from sleep or a hidden window may have skipped ticks.
	fyneApp.Lifecycle().SetOnEnteredForeground(reconcileAsync(keeper))
	fyneApp.Lifecycle().SetOnExitedForeground(func() {
		app.logger.Debug("timer window in background", "state", keeper.Status().State)
	})

	events := keeper.Subscribe(16)
	go func() {
		for event := range events {
			timerWindow.HandleEvent(event)
			if trayManager != nil {
				status := keeper.Status()
				fyne.Do(func() {
					trayManager.Update(status)
				})
			}
			if event.Type == timekeeper.EventStateChange && event.State == timekeeper.StateCompleted {
				fyne.Do(timerWindow.Show)
			}
		}
	}()

	if keeper.Restore() {
		app.logger.Info("resumed interrupted session", "state", keeper.Status().State)
	}

	timerWindow.Show()
	fyneApp.Run()
	return nil
}

func bellChoices() []preferences.BellChoice {
	catalog, err := audio.LoadCatalog()
	if err != nil {
		return nil
	}
	choices := make([]preferences.BellChoice, 0, len(catalog.Bells()))
	for _, bell := range catalog.Bells() {
		choices = append(choices, preferences.BellChoice{ID: bell.ID, Name: bell.Name})
	}
	return choices
}

type reconciler interface {
	Reconcile()
}

// reconcileAsync keeps wake-lock D-Bus calls off the fyne main goroutine.
func reconcileAsync(keeper reconciler) func() {
	return func() {
		go keeper.Reconcile()
	}
}
