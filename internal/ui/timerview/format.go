package timerview

import (
	"fmt"
	"time"

	"dharmatimer/internal/core/model"
)

// FormatRemaining renders a countdown as MM:SS, or H:MM:SS from an hour up.
func FormatRemaining(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(value / time.Second)
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	seconds = seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// IntervalLabel describes an interval bell option.
func IntervalLabel(minutes int) string {
	if minutes <= 0 {
		return "No interval bell"
	}
	return fmt.Sprintf("Every %d min", minutes)
}

// IntervalFromLabel reverses IntervalLabel over the offered options.
func IntervalFromLabel(label string) int {
	for _, minutes := range model.IntervalBellMinutes {
		if IntervalLabel(minutes) == label {
			return minutes
		}
	}
	return 0
}

// PracticedSummary describes a finished session.
func PracticedSummary(practiced time.Duration, practiceType string, custom []model.CustomPracticeType) string {
	minutes := int(practiced / time.Minute)
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("%d %s of %s", minutes, unit, model.PracticeShortName(practiceType, custom))
}
