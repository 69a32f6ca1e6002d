package model

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned for custom durations outside 1..180 minutes.
var ErrInvalidDuration = errors.New("duration must be between 1 and 180 minutes")

// Custom duration bounds in minutes.
const (
	MinCustomMinutes = 1
	MaxCustomMinutes = 180
)

// DurationPreset is a selectable session length.
type DurationPreset struct {
	Label   string
	Seconds int
}

// DurationPresets are offered on the setup screen.
var DurationPresets = []DurationPreset{
	{Label: "10 min", Seconds: 600},
	{Label: "20 min", Seconds: 1200},
	{Label: "30 min", Seconds: 1800},
	{Label: "45 min", Seconds: 2700},
	{Label: "60 min", Seconds: 3600},
}

// IntervalBellMinutes are the interval bell choices; 0 disables.
var IntervalBellMinutes = []int{0, 5, 10, 15}

// ParseCustomMinutes validates free-form minute input and returns seconds.
func ParseCustomMinutes(input string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, ErrInvalidDuration
	}
	return MinutesToSeconds(minutes)
}

// MinutesToSeconds applies the custom duration bounds.
func MinutesToSeconds(minutes int) (int, error) {
	if minutes < MinCustomMinutes || minutes > MaxCustomMinutes {
		return 0, ErrInvalidDuration
	}
	return minutes * 60, nil
}

// ValidDurationSeconds reports whether seconds is a usable session length.
func ValidDurationSeconds(seconds int) bool {
	return seconds > 0 && seconds <= MaxCustomMinutes*60
}
