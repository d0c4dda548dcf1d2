package cmd

import (
	"fmt"
	"os"

	"github.com/shaurasan/SnapShotTool/packages/display"
	"github.com/shaurasan/SnapShotTool/packages/inspect"
	"github.com/shaurasan/SnapShotTool/packages/settings"
	"github.com/spf13/cobra"
)

var (
	panelsJSONFlag  bool
	panelsQueryFlag string
)

var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "List model panels in the host session",
	Long: `List the visible model panels and the cameras they look through.

--json dumps the full display state (frame, selection, panels with their
toggles and isolation) as JSON. --query answers a gjson path against that
same document.

Examples:
  takesnap panels
  takesnap panels --json
  takesnap panels --query frame
  takesnap panels --query 'panels.#(name=="modelPanel1").flags.grid'`,
	Args: cobra.NoArgs,
	RunE: panelsCommand,
}

func init() {
	panelsCmd.Flags().BoolVar(&panelsJSONFlag, "json", false, "Dump the full display state as JSON")
	panelsCmd.Flags().StringVar(&panelsQueryFlag, "query", "", "gjson path evaluated against the display state")
}

func panelsCommand(cmd *cobra.Command, args []string) error {
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

	if panelsJSONFlag || panelsQueryFlag != "" {
		state, err := inspect.Collect(h, display.QueryFlags, log)
		if err != nil {
			return err
		}
		data, err := state.JSON()
		if err != nil {
			return err
		}

		if panelsQueryFlag != "" {
			value, err := inspect.Query(data, panelsQueryFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	panels, err := h.Panels()
	if err != nil {
		return err
	}
	if len(panels) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No visible model panels")
		return nil
	}
	for _, p := range panels {
		if p.Camera != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s)\n", p.Name, p.Camera)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p.Name)
		}
	}
	return nil
}
