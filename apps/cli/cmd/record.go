package cmd

import (
	"fmt"
	"os"

	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/scripthost"
	"github.com/shaurasan/SnapShotTool/packages/settings"
	"github.com/spf13/cobra"
)

var (
	recordOutputFlag string
	recordForceFlag  bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Snapshot the host session into a hostfile",
	Long: `Snapshot the connected host session's display state into a hostfile.

Every panel's toggles, isolation state and camera are captured, along
with the current frame and the scene selection. Toggles a panel cannot
answer for are listed as unsupported. The result is a complete session
you can edit and replay.

Examples:
  takesnap record -o session.json
  takesnap record --hostfile scene.json -o normalized.json --force`,
	Args: cobra.NoArgs,
	RunE: recordCommand,
}

func init() {
	recordCmd.Flags().StringVarP(&recordOutputFlag, "out", "o", "hostfile.json", "Where to write the recorded hostfile")
	recordCmd.Flags().BoolVarP(&recordForceFlag, "force", "f", false, "Overwrite an existing file")
}

func recordCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()

	s, err := settings.Load(settingsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	h, err := connectHost(s, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitHostfileError)
	}

	if !recordForceFlag {
		if _, err := os.Stat(recordOutputFlag); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", recordOutputFlag)
		}
	}

	fix, err := scripthost.FixtureFromHost(h, display.QueryFlags)
	if err != nil {
		return err
	}
	if err := fix.Save(recordOutputFlag); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d panels to %s\n", len(fix.Panels), recordOutputFlag)
	return nil
}
