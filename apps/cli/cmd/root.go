package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// Flags shared by every subcommand.
var (
	settingsFlag string
	hostfileFlag string
	verboseFlag  int
	quietFlag    bool
	noColorFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "takesnap",
	Short: "Viewport snapshots for DCC host sessions",
	Long: `takesnap captures off-screen snapshots of model panels in a DCC host
session.

Each capture saves the panel's display state, applies the configured
display mode and object filter, renders one frame, verifies the written
file and restores the panel exactly as it was found.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitUsageError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsFlag, "settings", "s", getEnvString("TAKESNAP_SETTINGS", ""), "Path to settings file (env: TAKESNAP_SETTINGS)")
	rootCmd.PersistentFlags().StringVar(&hostfileFlag, "hostfile", getEnvString("TAKESNAP_HOSTFILE", ""), "Path to the scripted host session (env: TAKESNAP_HOSTFILE)")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Verbose logging (-v for info, -vv for debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("TAKESNAP_QUIET", false), "Suppress all output except errors (env: TAKESNAP_QUIET)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("TAKESNAP_NO_COLOR", false), "Disable colored output (env: TAKESNAP_NO_COLOR)")

	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(panelsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
