package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/scripthost"
	"github.com/shaurasan/SnapShotTool/packages/settings"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new takesnap project",
	Long: `Initialize a new takesnap project in the current directory.

This creates:
  - takesnap.yaml  - Settings file with output and capture defaults
  - hostfile.json  - Scripted host session with two example panels

Examples:
  takesnap init
  takesnap init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	settingsFile := filepath.Join(cwd, "takesnap.yaml")
	hostFile := filepath.Join(cwd, "hostfile.json")

	if !forceInit {
		for _, f := range []string{settingsFile, hostFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	s := settings.Default()
	s.Hostfile = "hostfile.json"
	if err := s.Save(settingsFile); err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", settingsFile)

	fix := scripthost.DefaultFixture(display.QueryFlags)
	if err := fix.Save(hostFile); err != nil {
		return fmt.Errorf("failed to create hostfile: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", hostFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\ntakesnap project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'takesnap capture' to snapshot the example session.\n")

	return nil
}
