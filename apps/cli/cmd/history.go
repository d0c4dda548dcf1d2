package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/shaurasan/SnapShotTool/packages/history"
	"github.com/shaurasan/SnapShotTool/packages/settings"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded capture runs",
	Long: `List capture runs recorded in the history database. Runs get there via
'takesnap capture --history' or a history path in takesnap.yaml.

Examples:
  takesnap history
  takesnap history --limit 50
  takesnap history --run 12
  takesnap history --prune 100`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

var (
	historyDBFlag    string
	historyLimitFlag int
	historyRunFlag   int64
	historyPruneFlag int
)

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", "", "History database path (default: settings or "+history.DefaultPath+")")
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "l", 10, "Runs to list")
	historyCmd.Flags().Int64Var(&historyRunFlag, "run", 0, "Show the captures of one run")
	historyCmd.Flags().IntVar(&historyPruneFlag, "prune", 0, "Delete all but the newest N runs")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()
	out := cmd.OutOrStdout()

	s, err := settings.Load(settingsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	path := historyDBFlag
	if path == "" {
		path = s.History
	}
	if path == "" {
		path = history.DefaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(out, "No capture history recorded yet.")
		return nil
	}

	store, err := history.Open(path, history.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}
	defer store.Close()

	if historyPruneFlag > 0 {
		removed, err := store.Prune(historyPruneFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitConfigError)
		}
		fmt.Fprintf(out, "Pruned %d runs, kept the newest %d.\n", removed, historyPruneFlag)
		return nil
	}

	if historyRunFlag > 0 {
		captures, err := store.Captures(historyRunFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitConfigError)
		}
		if len(captures) == 0 {
			fmt.Fprintf(out, "No captures recorded for run %d.\n", historyRunFlag)
			return nil
		}

		fmt.Fprintf(out, "Run %d:\n", historyRunFlag)
		for _, c := range captures {
			if c.Passed {
				fmt.Fprintf(out, "  ok    %s (%s) -> %s [frame %d, %s]\n",
					c.Panel, c.Camera, c.Path, c.Frame, c.Duration.Round(time.Millisecond))
			} else {
				fmt.Fprintf(out, "  FAIL  %s (%s): %s\n", c.Panel, c.Camera, c.Failure)
			}
		}
		return nil
	}

	runs, err := store.Runs(historyLimitFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(out, "#%-4d %s  %d panels, %d passed, %d failed  %dx%d %s/%s  %s\n",
			r.ID, r.RecordedAt.Local().Format("2006-01-02 15:04"),
			r.Panels, r.Passed, r.Failed,
			r.Width, r.Height, r.Filter, r.Mode,
			r.Duration.Round(time.Millisecond))
	}
	return nil
}
