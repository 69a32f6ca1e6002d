package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dharmatimer/internal/core/model"
	"dharmatimer/internal/core/timekeeper"
	"dharmatimer/internal/ui/timerview"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the interrupted or in-flight session, if any",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := openEnv()
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	snapshot, err := app.snapshots.Load()
	if err != nil {
		return fmt.Errorf("read timer state: %w", err)
	}
	if snapshot == nil {
		fmt.Fprintln(out, mutedStyle.Render("No session in progress."))
		return nil
	}
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("timer state is damaged: %w", err)
	}

	settings := app.loadSettings()
	fmt.Fprintln(out, describeSnapshot(*snapshot, time.Now(), settings.CustomPracticeTypes))
	return nil
}

// describeSnapshot renders the stored state the way a restore would see it.
func describeSnapshot(snapshot timekeeper.Snapshot, now time.Time, custom []model.CustomPracticeType) string {
	practice := model.PracticeShortName(snapshot.PracticeType, custom)
	selected := time.Duration(snapshot.SelectedDurationSeconds) * time.Second

	var remaining int
	state := "paused"
	if snapshot.State == timekeeper.StateRunning {
		remaining = timekeeper.ComputeRemaining(now, *snapshot.StartEpochMillis, snapshot.BaseSeconds)
		state = "running"
		if remaining == 0 {
			state = "finished (will complete on next launch)"
		}
	} else {
		remaining = *snapshot.RemainingAtPauseSeconds
	}

	lines := []string{
		titleStyle.Render(practice) + "  " + mutedStyle.Render(state),
		fmt.Sprintf("%s left of %s", clockStyle.Render(timerview.FormatRemaining(time.Duration(remaining)*time.Second)), formatMinutes(selected)),
	}
	if snapshot.IntervalBellPeriodSeconds > 0 {
		lines = append(lines, mutedStyle.Render(timerview.IntervalLabel(snapshot.IntervalBellPeriodSeconds/60)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
