package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"dharmatimer/internal/core/model"
)

const settingsFileName = "settings.yaml"

type yamlPracticeType struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

type yamlSettings struct {
	DefaultDurationSeconds int                `yaml:"default_duration_seconds"`
	DefaultPracticeType    string             `yaml:"default_practice_type"`
	BellSound              string             `yaml:"bell_sound"`
	IntervalBellMinutes    int                `yaml:"interval_bell_minutes"`
	CustomPracticeTypes    []yamlPracticeType `yaml:"custom_practice_types,omitempty"`
}

// SettingsFile is the YAML-backed store for timer defaults.
type SettingsFile struct {
	Dir string
}

// LoadTimerSettings reads the defaults from Dir.
func (file SettingsFile) LoadTimerSettings() (model.TimerSettings, error) {
	return LoadSettings(file.Dir)
}

// SaveTimerSettings writes the defaults to Dir.
func (file SettingsFile) SaveTimerSettings(settings model.TimerSettings) error {
	return SaveSettings(file.Dir, settings)
}

// LoadSettings reads timer defaults from YAML under configDir.
// If the file does not exist, default settings are returned.
func LoadSettings(configDir string) (model.TimerSettings, error) {
	settings := model.DefaultTimerSettings()

	rawData, err := os.ReadFile(settingsPath(configDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes timer defaults to YAML under configDir.
func SaveSettings(configDir string, settings model.TimerSettings) error {
	fileData := yamlSettings{
		DefaultDurationSeconds: settings.DurationSeconds,
		DefaultPracticeType:    settings.PracticeType,
		BellSound:              settings.BellSoundID,
		IntervalBellMinutes:    settings.IntervalBellMinutes,
	}
	for _, custom := range settings.CustomPracticeTypes {
		fileData.CustomPracticeTypes = append(fileData.CustomPracticeTypes, yamlPracticeType{
			Name:        custom.Name,
			Description: custom.Description,
		})
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := AtomicWriteFile(settingsPath(configDir), serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

func settingsPath(configDir string) string {
	return filepath.Join(configDir, settingsFileName)
}

func applyYamlSettings(settings *model.TimerSettings, fileData yamlSettings) {
	if model.ValidDurationSeconds(fileData.DefaultDurationSeconds) {
		settings.DurationSeconds = fileData.DefaultDurationSeconds
	}
	if practiceType := strings.TrimSpace(fileData.DefaultPracticeType); practiceType != "" {
		settings.PracticeType = practiceType
	}
	if bell := strings.TrimSpace(fileData.BellSound); bell != "" {
		settings.BellSoundID = bell
	}
	if slices.Contains(model.IntervalBellMinutes, fileData.IntervalBellMinutes) {
		settings.IntervalBellMinutes = fileData.IntervalBellMinutes
	}

	for _, custom := range fileData.CustomPracticeTypes {
		name := strings.TrimSpace(custom.Name)
		if name == "" {
			continue
		}
		settings.CustomPracticeTypes = append(settings.CustomPracticeTypes, model.CustomPracticeType{
			Name:        name,
			Description: strings.TrimSpace(custom.Description),
		})
	}
}
