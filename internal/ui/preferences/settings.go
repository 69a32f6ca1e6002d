package preferences

import (
	"errors"
	"fmt"
	"strings"

	"dharmatimer/internal/core/model"
)

// ErrDuplicatePractice is returned when a custom practice reuses a name.
var ErrDuplicatePractice = errors.New("practice type listed twice")

// BellChoice is a bell offered in the bell picker.
type BellChoice struct {
	ID   string
	Name string
}

// Form holds the raw editor values before validation.
type Form struct {
	DurationMinutes     string
	PracticeType        string
	BellSoundID         string
	IntervalBellMinutes int
	CustomTypes         string
}

// FormFromSettings renders stored settings into editor values.
func FormFromSettings(settings model.TimerSettings) Form {
	return Form{
		DurationMinutes:     fmt.Sprintf("%d", settings.DurationSeconds/60),
		PracticeType:        settings.PracticeType,
		BellSoundID:         settings.BellSoundID,
		IntervalBellMinutes: settings.IntervalBellMinutes,
		CustomTypes:         FormatCustomTypes(settings.CustomPracticeTypes),
	}
}

// Settings validates the form and converts it to timer settings.
func (form Form) Settings() (model.TimerSettings, error) {
	seconds, err := model.ParseCustomMinutes(form.DurationMinutes)
	if err != nil {
		return model.TimerSettings{}, err
	}
	custom, err := ParseCustomTypes(form.CustomTypes)
	if err != nil {
		return model.TimerSettings{}, err
	}

	practiceType := form.PracticeType
	known := false
	for _, key := range model.PracticeTypes(custom) {
		if key == practiceType {
			known = true
		}
	}
	if !known {
		practiceType = model.DefaultTimerSettings().PracticeType
	}

	interval := form.IntervalBellMinutes
	if interval < 0 {
		interval = 0
	}

	return model.TimerSettings{
		DurationSeconds:     seconds,
		PracticeType:        practiceType,
		BellSoundID:         form.BellSoundID,
		IntervalBellMinutes: interval,
		CustomPracticeTypes: custom,
	}, nil
}

// ParseCustomTypes reads one practice per line as "Name" or
// "Name: description". Blank lines are skipped.
func ParseCustomTypes(text string) ([]model.CustomPracticeType, error) {
	var custom []model.CustomPracticeType
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, description, _ := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] || model.IsBuiltInPractice(key) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePractice, name)
		}
		seen[key] = true
		custom = append(custom, model.CustomPracticeType{
			Name:        name,
			Description: strings.TrimSpace(description),
		})
	}
	return custom, nil
}

// FormatCustomTypes is the inverse of ParseCustomTypes.
func FormatCustomTypes(custom []model.CustomPracticeType) string {
	lines := make([]string, 0, len(custom))
	for _, practice := range custom {
		if practice.Description == "" {
			lines = append(lines, practice.Name)
			continue
		}
		lines = append(lines, practice.Name+": "+practice.Description)
	}
	return strings.Join(lines, "\n")
}
