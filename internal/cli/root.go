package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const appName = "DharmaTimer"

var (
	verbose   bool
	configDir string
	rootCmd   *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "dharmatimer",
		Short: "Dharma Timer - a meditation session timer",
		Long: `Dharma Timer runs timed meditation sessions with a preparation countdown,
interval bells and a completion bell, then records the session and any notes.

Without a subcommand the desktop timer opens in the system tray.`,
		RunE:          runGUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding config.yaml (default: user config dir)")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(guiCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(bellsCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
