package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shaurasan/SnapShotTool/packages/scripthost"
	"github.com/shaurasan/SnapShotTool/packages/settings"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file...>",
	Short: "Validate hostfiles and settings files",
	Long: `Validate files without driving a host.

JSON files are checked against the hostfile schema; YAML files are loaded
as settings and checked semantically.

Examples:
  takesnap validate hostfile.json
  takesnap validate takesnap.yaml
  takesnap validate hostfile.json takesnap.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	hostfileErrors := 0
	settingsErrors := 0

	for _, file := range args {
		switch strings.ToLower(filepath.Ext(file)) {
		case ".json":
			if _, err := scripthost.LoadFixture(file); err != nil {
				fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
				hostfileErrors++
				continue
			}
		case ".yaml", ".yml":
			s, err := settings.Load(file)
			if err == nil {
				err = s.Validate()
			}
			if err != nil {
				fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
				settingsErrors++
				continue
			}
		default:
			return fmt.Errorf("unsupported file type: %s (expected a .json hostfile or .yaml settings file)", file)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
	}

	if hostfileErrors > 0 {
		os.Exit(ExitHostfileError)
	}
	if settingsErrors > 0 {
		os.Exit(ExitConfigError)
	}
	return nil
}
