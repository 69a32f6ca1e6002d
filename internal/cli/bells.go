package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dharmatimer/internal/audio"
)

var bellsCmd = &cobra.Command{
	Use:   "bells",
	Short: "List bell presets, play one, or export it as WAV",
	RunE:  runBells,
}

func init() {
	addBellsFlags(bellsCmd)
}

func addBellsFlags(cmd *cobra.Command) {
	cmd.Flags().String("preview", "", "Play one strike of the given bell")
	cmd.Flags().String("export", "", "Export one strike of the given bell as WAV")
	cmd.Flags().StringP("output", "o", "", "WAV path for --export (default: <bell>.wav)")
	cmd.Flags().Int("sample-rate", audio.DefaultSampleRate, "Sample rate for --export")
}

func runBells(cmd *cobra.Command, args []string) error {
	preview, _ := cmd.Flags().GetString("preview")
	export, _ := cmd.Flags().GetString("export")
	output, _ := cmd.Flags().GetString("output")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")

	catalog, err := audio.LoadCatalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch {
	case export != "":
		if !catalog.Has(export) {
			return fmt.Errorf("unknown bell %q", export)
		}
		if output == "" {
			output = export + ".wav"
		}
		return exportBell(catalog.Lookup(export), output, sampleRate)
	case preview != "":
		if !catalog.Has(preview) {
			return fmt.Errorf("unknown bell %q", preview)
		}
		engine := audio.NewEngine(catalog, audio.Config{SampleRate: sampleRate, BellID: preview})
		if err := engine.Preview(preview); err != nil {
			if isAudioUnavailable(err) {
				return fmt.Errorf("no audio output: %w", err)
			}
			return err
		}
		fmt.Fprintln(out, bellStyle.Render("bell: "+catalog.Lookup(preview).Name))
		ctx, cancel := context.WithTimeout(cmd.Context(), catalog.Lookup(preview).Length()+cueDrainSlack)
		defer cancel()
		_ = engine.Wait(ctx)
		return nil
	}

	fmt.Fprintln(out, headerStyle.Render("Bells"))
	for _, bell := range catalog.Bells() {
		fmt.Fprintf(out, "%-14s %s  %s\n", bell.ID, bell.Name,
			mutedStyle.Render(fmt.Sprintf("%.1fs", bell.Length().Seconds())))
	}
	return nil
}

func exportBell(bell audio.Bell, path string, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := audio.ExportWAV(file, bell, sampleRate); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
