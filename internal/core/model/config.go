package model

import "time"

// CustomPracticeType is a user-defined practice label.
type CustomPracticeType struct {
	Name        string
	Description string
}

// TimerSettings seeds the timer setup screen.
type TimerSettings struct {
	DurationSeconds     int
	PracticeType        string
	BellSoundID         string
	IntervalBellMinutes int
	CustomPracticeTypes []CustomPracticeType
}

// DefaultTimerSettings returns the settings used when nothing is stored.
func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		DurationSeconds:     1200,
		PracticeType:        PracticeShamatha,
		BellSoundID:         DefaultBellSoundID,
		IntervalBellMinutes: 0,
	}
}

// Duration returns the configured session length.
func (settings TimerSettings) Duration() time.Duration {
	return time.Duration(settings.DurationSeconds) * time.Second
}

// IntervalBellSeconds converts the interval bell cadence to seconds.
func (settings TimerSettings) IntervalBellSeconds() int {
	if settings.IntervalBellMinutes <= 0 {
		return 0
	}
	return settings.IntervalBellMinutes * 60
}

// DefaultBellSoundID is used when the stored bell is unknown.
const DefaultBellSoundID = "singing_bowl"
