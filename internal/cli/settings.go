package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"dharmatimer/internal/audio"
	"dharmatimer/internal/core/model"
	"dharmatimer/internal/ui/preferences"
	"dharmatimer/internal/ui/timerview"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the timer defaults",
	Long: `Show the timer defaults. Any flag given changes that default and
writes settings.yaml.`,
	RunE: runSettings,
}

func init() {
	addSettingsFlags(settingsCmd)
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("duration", "", "Default session length in minutes")
	cmd.Flags().String("practice", "", "Default practice type")
	cmd.Flags().String("bell", "", "Bell preset id (see: dharmatimer bells)")
	cmd.Flags().Int("interval", 0, "Default interval bell in minutes, 0 to disable")
	cmd.Flags().StringArray("custom", nil, `Custom practice as "Name" or "Name: description" (repeatable, replaces the list)`)
}

var settingsFlags = []string{"duration", "practice", "bell", "interval", "custom"}

func runSettings(cmd *cobra.Command, args []string) error {
	app, err := openEnv()
	if err != nil {
		return err
	}
	defer app.Close()

	settings := app.loadSettings()
	flags := cmd.Flags()
	if slices.ContainsFunc(settingsFlags, flags.Changed) {
		form := preferences.FormFromSettings(settings)
		if flags.Changed("duration") {
			form.DurationMinutes, _ = flags.GetString("duration")
		}
		if flags.Changed("practice") {
			form.PracticeType, _ = flags.GetString("practice")
		}
		if flags.Changed("interval") {
			form.IntervalBellMinutes, _ = flags.GetInt("interval")
		}
		if flags.Changed("custom") {
			lines, _ := flags.GetStringArray("custom")
			form.CustomTypes = strings.Join(lines, "\n")
		}
		if flags.Changed("bell") {
			bell, _ := flags.GetString("bell")
			catalog, err := audio.LoadCatalog()
			if err != nil {
				return err
			}
			if !catalog.Has(bell) {
				return fmt.Errorf("unknown bell %q", bell)
			}
			form.BellSoundID = bell
		}

		updated, err := form.Settings()
		if err != nil {
			return err
		}
		if flags.Changed("practice") && updated.PracticeType != form.PracticeType {
			return fmt.Errorf("unknown practice type %q", form.PracticeType)
		}
		if err := app.settings.SaveTimerSettings(updated); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		settings = updated
	}

	fmt.Fprintln(cmd.OutOrStdout(), describeSettings(settings))
	return nil
}

func describeSettings(settings model.TimerSettings) string {
	rows := [][2]string{
		{"Duration", formatMinutes(settings.Duration())},
		{"Practice", model.PracticeLabel(settings.PracticeType, settings.CustomPracticeTypes)},
		{"Bell", settings.BellSoundID},
		{"Interval", timerview.IntervalLabel(settings.IntervalBellMinutes)},
	}
	body := titleStyle.Render("Timer defaults")
	for _, row := range rows {
		body += fmt.Sprintf("\n%-10s %s", row[0], row[1])
	}
	if len(settings.CustomPracticeTypes) > 0 {
		body += "\n" + headerStyle.Render("Custom practices")
		for _, custom := range settings.CustomPracticeTypes {
			body += "\n" + custom.Name
			if custom.Description != "" {
				body += mutedStyle.Render(" - " + custom.Description)
			}
		}
	}
	return panelStyle.Render(body)
}
