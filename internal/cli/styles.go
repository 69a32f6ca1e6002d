package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"dharmatimer/internal/core/model"
	"dharmatimer/internal/core/timekeeper"
	"dharmatimer/internal/ui/timerview"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#B3701A", Dark: "#E9A23B"}
	muted  = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#9A9A9A"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	clockStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	bellStyle   = lipgloss.NewStyle().Foreground(accent).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
)

const progressWidth = 30

// progressBar draws a fixed-width bar for fraction in [0, 1].
func progressBar(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * progressWidth)
	bar := lipgloss.NewStyle().Foreground(accent).Render(strings.Repeat("█", filled))
	return bar + mutedStyle.Render(strings.Repeat("░", progressWidth-filled))
}

// statusLine renders a single-line view of the timer for the terminal.
func statusLine(status timekeeper.Status, custom []model.CustomPracticeType) string {
	practice := model.PracticeShortName(status.PracticeType, custom)
	switch status.State {
	case timekeeper.StatePreparing:
		return fmt.Sprintf("%s  %s", titleStyle.Render("Settle in"), clockStyle.Render(fmt.Sprintf("%d", status.Countdown)))
	case timekeeper.StateRunning, timekeeper.StatePaused:
		line := fmt.Sprintf("%s  %s  %s",
			titleStyle.Render(practice),
			clockStyle.Render(timerview.FormatRemaining(status.Remaining)),
			progressBar(status.Progress))
		if status.State == timekeeper.StatePaused {
			line += "  " + mutedStyle.Render("paused")
		}
		return line
	case timekeeper.StateCompleted:
		return titleStyle.Render("Session complete")
	default:
		return mutedStyle.Render("Ready")
	}
}

func formatMinutes(value time.Duration) string {
	minutes := int(value / time.Minute)
	if minutes == 1 {
		return "1 min"
	}
	return fmt.Sprintf("%d min", minutes)
}
