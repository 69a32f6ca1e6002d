package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"dharmatimer/internal/audio"
	"dharmatimer/internal/core/model"
	"dharmatimer/internal/core/timekeeper"
)

const (
	// bellDrainTimeout caps how long a finished run keeps the process alive
	// for the completion bell to ring out.
	bellDrainTimeout = 20 * time.Second
	// cueDrainSlack is added to a single strike when waiting for a preview.
	cueDrainSlack = 2 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a session in the terminal",
	Long: `Run a meditation session without the desktop window.

Ctrl-C pauses the session and exits; "dharmatimer run --resume" picks it up
again. When the session completes it is saved to the history unless
--no-save is given.`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().String("duration", "", "Session length in minutes (default: settings)")
	runCmd.Flags().String("practice", "", "Practice type (default: settings)")
	runCmd.Flags().Int("interval", -1, "Interval bell in minutes, 0 to disable (default: settings)")
	runCmd.Flags().String("notes", "", "Notes saved with the session")
	runCmd.Flags().Bool("no-save", false, "Do not record the session")
	runCmd.Flags().Bool("resume", false, "Resume the interrupted session instead of starting a new one")
}

func runSession(cmd *cobra.Command, args []string) error {
	duration, _ := cmd.Flags().GetString("duration")
	practice, _ := cmd.Flags().GetString("practice")
	interval, _ := cmd.Flags().GetInt("interval")
	notes, _ := cmd.Flags().GetString("notes")
	noSave, _ := cmd.Flags().GetBool("no-save")
	resume, _ := cmd.Flags().GetBool("resume")

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

	events := keeper.Subscribe(16)

	if resume {
		if !keeper.Restore() {
			return errors.New("no interrupted session to resume")
		}
		if keeper.Status().State == timekeeper.StatePaused {
			if err := keeper.Resume(); err != nil {
				return err
			}
		}
	} else {
		if err := configureRun(keeper, duration, practice, interval); err != nil {
			return err
		}
		if err := keeper.Start(); err != nil {
			return err
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, slices.Concat(stopSignals, wakeSignals)...)
	defer signal.Stop(signals)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, panelStyle.Render(titleStyle.Render("Dharma Timer")+"\n"+
		mutedStyle.Render("Ctrl-C pauses and exits")))

	for {
		select {
		case sig := <-signals:
			if slices.Contains(wakeSignals, sig) {
				keeper.Reconcile()
				continue
			}
			return interruptRun(cmd, keeper)
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Type == timekeeper.EventBell {
				fmt.Fprintf(out, "\r%s\n", bellStyle.Render("bell: "+event.Message))
				continue
			}
			status := keeper.Status()
			fmt.Fprintf(out, "\r\033[K%s", statusLine(status, settings.CustomPracticeTypes))
			if status.State == timekeeper.StateCompleted {
				fmt.Fprintln(out)
				err := finishRun(cmd, keeper, status, notes, noSave, settings.CustomPracticeTypes)
				waitForBells(cmd.Context(), keeper, engine, app.logger)
				return err
			}
		}
	}
}

func configureRun(keeper *timekeeper.TimeKeeper, duration, practice string, interval int) error {
	if duration != "" {
		if err := keeper.SetCustomMinutes(duration); err != nil {
			return err
		}
	}
	if practice != "" {
		if err := keeper.SetPracticeType(practice); err != nil {
			return err
		}
	}
	if interval >= 0 {
		if err := keeper.SetIntervalBell(interval * 60); err != nil {
			return err
		}
	}
	return nil
}

func interruptRun(cmd *cobra.Command, keeper *timekeeper.TimeKeeper) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	switch keeper.Status().State {
	case timekeeper.StatePreparing:
		_ = keeper.CancelPreparation()
		fmt.Fprintln(out, mutedStyle.Render("Cancelled before the session began."))
	case timekeeper.StateRunning:
		if err := keeper.Pause(); err != nil {
			return err
		}
		status := keeper.Status()
		if status.State == timekeeper.StatePaused {
			fmt.Fprintf(out, "Paused with %s left. Resume with %s\n",
				clockStyle.Render(formatMinutes(status.Remaining)),
				titleStyle.Render("dharmatimer run --resume"))
		}
	}
	return nil
}

// waitForBells holds the process until queued bells have played, so a
// headless run does not cut off its own completion bell.
func waitForBells(ctx context.Context, keeper *timekeeper.TimeKeeper, engine *audio.Engine, logger *slog.Logger) {
	keeper.WaitCues()
	if engine == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, bellDrainTimeout)
	defer cancel()
	if err := engine.Wait(ctx); err != nil {
		logger.Debug("bells cut short", "error", err)
	}
}

func finishRun(cmd *cobra.Command, keeper *timekeeper.TimeKeeper, status timekeeper.Status, notes string, noSave bool, custom []model.CustomPracticeType) error {
	out := cmd.OutOrStdout()
	practice := model.PracticeShortName(status.PracticeType, custom)
	fmt.Fprintf(out, "%s of %s\n", clockStyle.Render(formatMinutes(status.Practiced)), practice)

	if noSave {
		return keeper.Discard()
	}
	keeper.SetNotes(notes)
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	if err := keeper.Save(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(err.Error()))
		return err
	}
	fmt.Fprintln(out, mutedStyle.Render("Saved to history."))
	return nil
}
