package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"dharmatimer/internal/core/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions and practice totals",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "Max sessions to list")
	historyCmd.Flags().Bool("journal", false, "List journal entries instead of sessions")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	journal, _ := cmd.Flags().GetBool("journal")

	app, err := openEnv()
	if err != nil {
		return err
	}
	defer app.Close()

	settings := app.loadSettings()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if journal {
		entries, err := app.sessions.JournalEntries(ctx, limit)
		if err != nil {
			return fmt.Errorf("list journal: %w", err)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("No journal entries yet."))
			return nil
		}
		for _, entry := range entries {
			fmt.Fprintln(out, titleStyle.Render(entry.Title))
			fmt.Fprintln(out, lipgloss.NewStyle().PaddingLeft(2).Render(entry.Content))
			fmt.Fprintln(out)
		}
		return nil
	}

	totals, err := app.sessions.Totals(ctx)
	if err != nil {
		return fmt.Errorf("read totals: %w", err)
	}
	sessions, err := app.sessions.RecentSessions(ctx, limit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	fmt.Fprintln(out, panelStyle.Render(fmt.Sprintf("%s  %d sessions, %s practiced, %d journal entries",
		titleStyle.Render("Practice"),
		totals.Sessions,
		formatMinutes(time.Duration(totals.TotalSeconds)*time.Second),
		totals.JournalEntries)))

	if len(sessions) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No sessions recorded yet."))
		return nil
	}
	fmt.Fprintln(out, headerStyle.Render("Recent sessions"))
	for _, session := range sessions {
		fmt.Fprintln(out, sessionRow(session, settings.CustomPracticeTypes))
	}
	return nil
}

func sessionRow(session model.SessionRecord, custom []model.CustomPracticeType) string {
	row := fmt.Sprintf("%s  %-8s %s",
		mutedStyle.Render(session.EndedAt.Local().Format("Jan 2 15:04")),
		formatMinutes(time.Duration(session.DurationSeconds)*time.Second),
		model.PracticeShortName(session.PracticeType, custom))
	if session.Notes != "" {
		row += "  " + mutedStyle.Render("*")
	}
	return row
}
